package domain

import "errors"

var (
	// ErrCatalogTooSmall is returned when the catalog cannot back a four-choice question.
	ErrCatalogTooSmall = errors.New("catalog has too few items")
	// ErrCatalogNotFound indicates the catalog source has no content.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrInvalidCatalog indicates duplicate or non-contiguous keys or duplicate formulas.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnknownModule is returned for a module id that is not in the module table.
	ErrUnknownModule = errors.New("unknown module")
	// ErrLocksEnabled is returned by operations that require level locks to be off.
	ErrLocksEnabled = errors.New("level locks are enabled")
	// ErrLevelLocked is returned when locks are on and an earlier badge is missing.
	ErrLevelLocked = errors.New("level is locked")
	// ErrAttemptRunning is returned by operations that cannot run during an attempt.
	ErrAttemptRunning = errors.New("a level attempt is running")
	// ErrEngineClosed is returned after the engine has been closed.
	ErrEngineClosed = errors.New("engine closed")
)
