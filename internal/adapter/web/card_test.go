package web

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"thriftmart/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func TestConditionColor(t *testing.T) {
	cases := map[entity.Condition]string{
		entity.ConditionNew:     "bg-green-500",
		entity.ConditionLikeNew: "bg-green-400",
		entity.ConditionGood:    "bg-yellow-500",
		entity.ConditionFair:    "bg-orange-500",
		entity.ConditionPoor:    "bg-red-500",
		"refurbished":           "bg-gray-500",
		"":                      "bg-gray-500",
	}
	for cond, want := range cases {
		assert.Equal(t, want, ConditionColor(cond), "condition %q", cond)
	}
}

func TestNewCard(t *testing.T) {
	images := ImageResolver{BaseURL: "https://cdn.example.com/product-images/"}

	t.Run("full listing", func(t *testing.T) {
		card := NewCard(&entity.Listing{
			ID:         "abc",
			Title:      "Oak chair",
			Price:      1234.5,
			Condition:  entity.ConditionLikeNew,
			Location:   strPtr("Portland"),
			Images:     []string{"chairs/oak.jpg", "chairs/oak-2.jpg"},
			ViewsCount: 12,
			Category:   &entity.CategoryRef{Name: "Furniture"},
		}, images)

		assert.Equal(t, "/product/abc", card.Href)
		assert.Equal(t, "https://cdn.example.com/product-images/chairs/oak.jpg", card.ImageURL)
		assert.Equal(t, DefaultPlaceholder, card.Placeholder)
		assert.Equal(t, "$1,234.50", card.Price)
		assert.Equal(t, "like new", card.ConditionLabel)
		assert.Equal(t, "bg-green-400", card.ConditionColor)
		assert.Equal(t, "Portland", card.Location)
		assert.Equal(t, "12", card.Views)
		assert.Equal(t, "Furniture", card.CategoryName)
	})

	t.Run("sparse listing", func(t *testing.T) {
		card := NewCard(&entity.Listing{
			ID:        "x1",
			Title:     "Mystery box",
			Price:     0,
			Condition: "mint",
			Location:  strPtr(""),
		}, images)

		assert.Equal(t, DefaultPlaceholder, card.ImageURL)
		assert.Equal(t, "$0.00", card.Price)
		assert.Equal(t, "mint", card.ConditionLabel)
		assert.Equal(t, "bg-gray-500", card.ConditionColor)
		assert.Equal(t, LocationFallback, card.Location)
		assert.Equal(t, "0", card.Views)
		assert.Empty(t, card.CategoryName)
	})

	t.Run("custom placeholder", func(t *testing.T) {
		card := NewCard(&entity.Listing{ID: "p", Images: []string{""}},
			ImageResolver{BaseURL: "https://cdn/", Placeholder: "/static/none.png"})
		assert.Equal(t, "/static/none.png", card.ImageURL)
		assert.Equal(t, "/static/none.png", card.Placeholder)
	})
}
