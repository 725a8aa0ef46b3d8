package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"periodic-quiz/internal/domain"
)

type itemRow struct {
	bun.BaseModel `bun:"table:catalog_items"`

	Key           int      `bun:"key,pk"`
	Code          string   `bun:"code"`
	Name          string   `bun:"name"`
	Category      string   `bun:"category"`
	Mass          float64  `bun:"mass"`
	Configuration string   `bun:"configuration"`
	Oxidation     []string `bun:"oxidation,array"`
	Uses          []string `bun:"uses,array"`
	Period        int      `bun:"period"`
	Group         int      `bun:"group_number"`
}

type compoundRow struct {
	bun.BaseModel `bun:"table:catalog_compounds"`

	Formula string                `bun:"formula,pk"`
	Name    string                `bun:"name"`
	Parts   []domain.CompoundPart `bun:"parts,type:jsonb"`
}

// Seed replaces the stored catalog with c inside one transaction.
func Seed(ctx context.Context, db *bun.DB, c domain.Catalog) error {
	items := make([]itemRow, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, itemRow{
			Key:           it.Key,
			Code:          it.Code,
			Name:          it.Name,
			Category:      it.Category,
			Mass:          it.Mass,
			Configuration: it.Configuration,
			Oxidation:     orEmpty(it.Oxidation),
			Uses:          orEmpty(it.Uses),
			Period:        it.Period,
			Group:         it.Group,
		})
	}
	compounds := make([]compoundRow, 0, len(c.Compounds))
	for _, cmp := range c.Compounds {
		compounds = append(compounds, compoundRow{Formula: cmp.Formula, Name: cmp.Name, Parts: cmp.Parts})
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewTruncateTable().Model((*compoundRow)(nil)).Exec(ctx); err != nil {
			return fmt.Errorf("truncate compounds: %w", err)
		}
		if _, err := tx.NewTruncateTable().Model((*itemRow)(nil)).Exec(ctx); err != nil {
			return fmt.Errorf("truncate items: %w", err)
		}
		if len(items) > 0 {
			if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
				return fmt.Errorf("insert items: %w", err)
			}
		}
		if len(compounds) > 0 {
			if _, err := tx.NewInsert().Model(&compounds).Exec(ctx); err != nil {
				return fmt.Errorf("insert compounds: %w", err)
			}
		}
		return nil
	})
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
