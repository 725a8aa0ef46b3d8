package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/sync/errgroup"

	"periodic-quiz/internal/domain"
)

// CatalogLoader loads items and compounds from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

// LoadCatalog queries both tables concurrently. An empty item table is
// reported as domain.ErrCatalogNotFound so callers can point at `seed`.
func (l *CatalogLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	var (
		items     []domain.KnowledgeItem
		compounds []domain.Compound
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = l.loadItems(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		compounds, err = l.loadCompounds(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Catalog{}, err
	}
	if len(items) == 0 {
		return domain.Catalog{}, domain.ErrCatalogNotFound
	}
	return domain.Catalog{Items: items, Compounds: compounds}, nil
}

func (l *CatalogLoader) loadItems(ctx context.Context) ([]domain.KnowledgeItem, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT key, code, name, category, mass, configuration, oxidation, uses, period, group_number
		FROM catalog_items
		ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	var items []domain.KnowledgeItem
	for rows.Next() {
		var it domain.KnowledgeItem
		if err := rows.Scan(&it.Key, &it.Code, &it.Name, &it.Category, &it.Mass, &it.Configuration,
			&it.Oxidation, &it.Uses, &it.Period, &it.Group); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return items, nil
}

func (l *CatalogLoader) loadCompounds(ctx context.Context) ([]domain.Compound, error) {
	rows, err := l.pool.Query(ctx, `SELECT formula, name, parts FROM catalog_compounds ORDER BY formula`)
	if err != nil {
		return nil, fmt.Errorf("load compounds: %w", err)
	}
	defer rows.Close()

	var compounds []domain.Compound
	for rows.Next() {
		var (
			c   domain.Compound
			raw []byte
		)
		if err := rows.Scan(&c.Formula, &c.Name, &raw); err != nil {
			return nil, fmt.Errorf("scan compound: %w", err)
		}
		if err := json.Unmarshal(raw, &c.Parts); err != nil {
			return nil, fmt.Errorf("unmarshal parts of %s: %w", c.Formula, err)
		}
		compounds = append(compounds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load compounds: %w", err)
	}
	return compounds, nil
}
