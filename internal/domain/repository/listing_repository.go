package repository

import (
	"context"
	"strings"

	"thriftmart/internal/domain/entity"
)

// AllCategories is the selector value meaning "no category restriction".
const AllCategories = "all"

type ListingFilter struct {
	Search     string `json:"query" query:"q"`
	CategoryID string `json:"category_id" query:"category"`
}

// Normalize folds the "all" sentinel into the empty category so both
// spellings produce the same query. The search term is matched as typed.
func (f ListingFilter) Normalize() ListingFilter {
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	if f.CategoryID == AllCategories {
		f.CategoryID = ""
	}
	return f
}

func (f ListingFilter) HasSearch() bool {
	return f.Search != ""
}

// ListingRepository reads and mutates listings. List returns only available
// listings, newest first, with the category name embedded.
type ListingRepository interface {
	List(ctx context.Context, filter ListingFilter) ([]*entity.Listing, error)
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	// IncrementViews adds one to the view counter in a single storage
	// operation and returns the new value.
	IncrementViews(ctx context.Context, id string) (int64, error)
	SetViews(ctx context.Context, id string, views int64) error
	Create(ctx context.Context, listing *entity.Listing) error
	Update(ctx context.Context, listing *entity.Listing) error
	Delete(ctx context.Context, id string) error
}
