package web

import (
	"fmt"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/internal/usecase"
)

const SkeletonCount = 8

const (
	headingLatest       = "Latest Products"
	emptySearchMessage  = "No products found matching your search."
	emptyDefaultMessage = "No products available yet."
	allCategoriesLabel  = "All Categories"
)

type CategoryOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// PageView is everything the listing page renders. Exactly one of Loading,
// Empty or a non-empty Cards holds.
type PageView struct {
	Query            string           `json:"query"`
	SelectedCategory string           `json:"category_id"`
	Heading          string           `json:"heading"`
	CountLabel       string           `json:"count_label"`
	Loading          bool             `json:"loading"`
	Skeletons        []int            `json:"-"`
	Empty            bool             `json:"empty"`
	EmptyMessage     string           `json:"empty_message,omitempty"`
	Cards            []Card           `json:"cards"`
	Categories       []CategoryOption `json:"categories"`

	// Notifications are toasts shown on first render.
	Notifications []usecase.Notification `json:"-"`
}

func Heading(search string) string {
	if search == "" {
		return headingLatest
	}
	return `Search results for "` + search + `"`
}

func CountLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

func EmptyMessage(search string) string {
	if search == "" {
		return emptyDefaultMessage
	}
	return emptySearchMessage
}

// CategoryOptions prepends the "All Categories" choice to the fetched set.
// An empty selection selects "all".
func CategoryOptions(categories []*entity.Category, selected string) []CategoryOption {
	if selected == "" {
		selected = repository.AllCategories
	}
	opts := make([]CategoryOption, 0, len(categories)+1)
	opts = append(opts, CategoryOption{
		ID:       repository.AllCategories,
		Name:     allCategoriesLabel,
		Selected: selected == repository.AllCategories,
	})
	for _, c := range categories {
		opts = append(opts, CategoryOption{ID: c.ID, Name: c.Name, Selected: c.ID == selected})
	}
	return opts
}

func NewPageView(state usecase.FeedState, images ImageResolver) PageView {
	filter := state.Filter.Normalize()
	pv := PageView{
		Query:            filter.Search,
		SelectedCategory: filter.CategoryID,
		Heading:          Heading(filter.Search),
		CountLabel:       CountLabel(len(state.Listings)),
		Loading:          state.Loading,
		Categories:       CategoryOptions(state.Categories, filter.CategoryID),
		Cards:            []Card{},
	}
	if pv.SelectedCategory == "" {
		pv.SelectedCategory = repository.AllCategories
	}

	switch {
	case state.Loading:
		pv.Skeletons = make([]int, SkeletonCount)
	case len(state.Listings) == 0:
		pv.Empty = true
		pv.EmptyMessage = EmptyMessage(filter.Search)
	default:
		pv.Cards = NewCards(state.Listings, images)
	}
	return pv
}
