package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, path, profile string) *KVStore {
	t.Helper()
	s, err := Open(path, profile)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")
	s := openTestStore(t, path, "ada")

	if _, ok, err := s.Get(ctx, "quizLevel"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "quizLevel", "2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "quizLevel", "3"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, ok, err := s.Get(ctx, "quizLevel"); err != nil || !ok || v != "3" {
		t.Fatalf("expected 3, got %q ok=%v err=%v", v, ok, err)
	}

	other := openTestStore(t, path, "grace")
	if _, ok, _ := other.Get(ctx, "quizLevel"); ok {
		t.Fatalf("profiles must not share rows")
	}

	_ = s.Set(ctx, "quizAsked", "[1,2]")
	if err := s.Delete(ctx, "quizLevel", "quizAsked"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "quizAsked"); ok {
		t.Fatalf("expected quizAsked removed")
	}
}

func TestKVStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")

	s, err := Open(path, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "quizBadges", "[true]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	reopened := openTestStore(t, path, "")
	if v, ok, _ := reopened.Get(ctx, "quizBadges"); !ok || v != "[true]" {
		t.Fatalf("expected value after reopen, got %q ok=%v", v, ok)
	}
}

func TestDefaultDBPathHonorsEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "quiz.db")
	t.Setenv("QUIZ_DB", want)
	got, err := DefaultDBPath()
	if err != nil || got != want {
		t.Fatalf("expected %s, got %s (%v)", want, got, err)
	}
}
