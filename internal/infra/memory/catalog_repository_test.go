package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"periodic-quiz/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetCatalog(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetCatalog(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryRejectsSmallCatalog(t *testing.T) {
	small := sampleCatalog()
	small.Items = small.Items[:3]
	repo := NewCatalogRepository(NewStaticCatalogLoader(small), 0)

	if _, err := repo.GetCatalog(context.Background()); !errors.Is(err, domain.ErrCatalogTooSmall) {
		t.Fatalf("expected ErrCatalogTooSmall, got %v", err)
	}
}

func TestEmbeddedCatalogLoader(t *testing.T) {
	repo := NewCatalogRepository(EmbeddedCatalogLoader{}, 0)
	c, err := repo.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("embedded catalog: %v", err)
	}
	if len(c.Items) == 0 || len(c.Compounds) == 0 {
		t.Fatalf("expected embedded items and compounds")
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx)
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Items: []domain.KnowledgeItem{
			{Key: 1, Code: "H", Name: "Hydrogen"},
			{Key: 2, Code: "He", Name: "Helium", Category: domain.CategoryNobleGas},
			{Key: 3, Code: "Li", Name: "Lithium"},
			{Key: 4, Code: "Be", Name: "Beryllium"},
		},
		Compounds: []domain.Compound{
			{Formula: "LiH", Name: "Lithium hydride", Parts: []domain.CompoundPart{{Code: "Li", Count: 1}, {Code: "H", Count: 1}}},
		},
	}
}
