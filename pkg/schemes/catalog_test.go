package schemes

import (
	"path/filepath"
	"testing"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog(filepath.Join(t.TempDir(), "schemes.db"))
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalogUpsertAndActive(t *testing.T) {
	t.Parallel()
	c := openTestCatalog(t)

	s := farmerScheme()
	s.Description = "Income support for farmers"
	if err := c.Upsert(s); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	active, err := c.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active = %d, want 1", len(active))
	}
	got := active[0]
	if got.ID != "pm_kisan" || got.Description != "Income support for farmers" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if got.Rules.IncomeMax != 200000 || len(got.Rules.Categories) != 1 {
		t.Fatalf("rules not preserved: %+v", got.Rules)
	}
}

func TestCatalogUpsertReplaces(t *testing.T) {
	t.Parallel()
	c := openTestCatalog(t)

	s := farmerScheme()
	if err := c.Upsert(s); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	s.Name = "PM-KISAN (revised)"
	if err := c.Upsert(s); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	active, err := c.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 1 || active[0].Name != "PM-KISAN (revised)" {
		t.Fatalf("replace failed: %+v", active)
	}
}

func TestActiveOrFallbackEmptyStore(t *testing.T) {
	t.Parallel()
	c := openTestCatalog(t)

	got := c.ActiveOrFallback()
	if len(got) != len(FallbackSchemes()) {
		t.Fatalf("empty store should serve the fallback set, got %d", len(got))
	}
}

func TestActiveOrFallbackNilCatalog(t *testing.T) {
	t.Parallel()
	var c *Catalog
	if len(c.ActiveOrFallback()) == 0 {
		t.Fatal("nil catalog should serve the fallback set")
	}
}

func TestSeedIfEmpty(t *testing.T) {
	t.Parallel()
	c := openTestCatalog(t)

	if err := c.SeedIfEmpty(FallbackSchemes()); err != nil {
		t.Fatalf("SeedIfEmpty: %v", err)
	}
	active, err := c.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 12 {
		t.Fatalf("seeded %d schemes, want 12", len(active))
	}

	// A second seed must not duplicate or overwrite.
	custom := active[0]
	custom.Name = "edited"
	if err := c.Upsert(custom); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := c.SeedIfEmpty(FallbackSchemes()); err != nil {
		t.Fatalf("SeedIfEmpty (2nd): %v", err)
	}
	active, _ = c.Active()
	if len(active) != 12 || active[0].Name != "edited" {
		t.Fatalf("second seed modified store: %d schemes, first=%s", len(active), active[0].Name)
	}
}
