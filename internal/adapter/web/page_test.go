package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/internal/usecase"
)

var testCategories = []*entity.Category{
	{ID: "c-audio", Name: "Audio"},
	{ID: "c-home", Name: "Home"},
}

func TestHeadingAndCountLabel(t *testing.T) {
	assert.Equal(t, "Latest Products", Heading(""))
	assert.Equal(t, `Search results for "lamp"`, Heading("lamp"))

	assert.Equal(t, "0 items", CountLabel(0))
	assert.Equal(t, "1 item", CountLabel(1))
	assert.Equal(t, "2 items", CountLabel(2))
}

func TestCategoryOptions(t *testing.T) {
	opts := CategoryOptions(testCategories, "")
	require.Len(t, opts, 3)
	assert.Equal(t, CategoryOption{ID: "all", Name: "All Categories", Selected: true}, opts[0])
	assert.False(t, opts[1].Selected)

	opts = CategoryOptions(testCategories, "c-home")
	assert.False(t, opts[0].Selected)
	assert.True(t, opts[2].Selected)

	opts = CategoryOptions(nil, "all")
	assert.Len(t, opts, 1)
}

func TestNewPageViewShowsExactlyOneSection(t *testing.T) {
	images := ImageResolver{}

	t.Run("loading", func(t *testing.T) {
		pv := NewPageView(usecase.FeedState{
			Loading:  true,
			Listings: []*entity.Listing{{ID: "old"}},
		}, images)
		assert.True(t, pv.Loading)
		assert.Len(t, pv.Skeletons, SkeletonCount)
		assert.False(t, pv.Empty)
		assert.Empty(t, pv.Cards)
	})

	t.Run("empty without search", func(t *testing.T) {
		pv := NewPageView(usecase.FeedState{}, images)
		assert.True(t, pv.Empty)
		assert.Equal(t, "No products available yet.", pv.EmptyMessage)
		assert.Equal(t, "Latest Products", pv.Heading)
		assert.Equal(t, "0 items", pv.CountLabel)
		assert.Equal(t, "all", pv.SelectedCategory)
	})

	t.Run("empty with search", func(t *testing.T) {
		pv := NewPageView(usecase.FeedState{
			Filter: repository.ListingFilter{Search: "zeppelin "},
		}, images)
		assert.Equal(t, "No products found matching your search.", pv.EmptyMessage)
		assert.Equal(t, `Search results for "zeppelin "`, pv.Heading)
	})

	t.Run("results", func(t *testing.T) {
		pv := NewPageView(usecase.FeedState{
			Filter:     repository.ListingFilter{CategoryID: "c-audio"},
			Listings:   []*entity.Listing{{ID: "a", Price: 5}},
			Categories: testCategories,
		}, images)
		assert.False(t, pv.Loading)
		assert.False(t, pv.Empty)
		require.Len(t, pv.Cards, 1)
		assert.Equal(t, "1 item", pv.CountLabel)
		assert.True(t, pv.Categories[1].Selected)
	})
}

func TestRendererResults(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	t.Run("skeletons", func(t *testing.T) {
		html, err := r.RenderResults(NewPageView(usecase.FeedState{Loading: true}, ImageResolver{}))
		require.NoError(t, err)
		assert.Equal(t, SkeletonCount, strings.Count(html, `data-testid="listing-skeleton"`))
		assert.NotContains(t, html, `data-testid="listing-card"`)
		assert.NotContains(t, html, `data-testid="results-empty"`)
	})

	t.Run("cards", func(t *testing.T) {
		html, err := r.RenderResults(NewPageView(usecase.FeedState{
			Filter: repository.ListingFilter{Search: "chair"},
			Listings: []*entity.Listing{
				{ID: "1", Title: "Oak <chair>", Price: 40, Condition: entity.ConditionGood, Images: []string{"a.jpg"}},
				{ID: "2", Title: "Pine chair", Price: 12.5, Condition: entity.ConditionPoor},
			},
			Categories: testCategories,
		}, ImageResolver{BaseURL: "https://cdn/"}))
		require.NoError(t, err)

		assert.Equal(t, 2, strings.Count(html, `data-testid="listing-card"`))
		assert.Contains(t, html, `href="/product/1"`)
		assert.Contains(t, html, `src="https://cdn/a.jpg"`)
		assert.Contains(t, html, `src="/placeholder.svg"`)
		assert.Contains(t, html, "Oak &lt;chair&gt;")
		assert.Contains(t, html, "$12.50")
		assert.Contains(t, html, "bg-red-500")
		assert.Contains(t, html, "2 items")
		assert.Contains(t, html, "Search results for &#34;chair&#34;")
		assert.Contains(t, html, "All Categories")
		assert.Contains(t, html, "Audio")
	})

	t.Run("empty", func(t *testing.T) {
		html, err := r.RenderResults(NewPageView(usecase.FeedState{}, ImageResolver{}))
		require.NoError(t, err)
		assert.Contains(t, html, "No products available yet.")
		assert.NotContains(t, html, `data-testid="listing-skeleton"`)
	})
}
