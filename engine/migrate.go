package engine

import (
	"context"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/store"
)

// SubcategoryOf files a legacy entry: brand codes by keyword, everything
// else by the concept its code normalizes to
func (e *Engine) SubcategoryOf(code string, r attribute.Reduced) attribute.Subcategory {
	if r.Category == attribute.Brand {
		return e.normalizer.BrandSubcategory(code)
	}
	return e.normalizer.Normalize(code).Subcategory
}

// Migrate converts a flat legacy library into the hierarchical layout
func (e *Engine) Migrate(ctx context.Context) (*store.MigrateResult, error) {
	return e.store.Migrate(ctx, e.SubcategoryOf, e.now())
}
