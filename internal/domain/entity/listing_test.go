package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionLabel(t *testing.T) {
	assert.Equal(t, "like new", ConditionLikeNew.Label())
	assert.Equal(t, "new", ConditionNew.Label())
	assert.True(t, ConditionPoor.Valid())
	assert.False(t, Condition("mint").Valid())
}

func TestListingMatchesSearch(t *testing.T) {
	l := &Listing{Title: "Vintage Leather Jacket", Description: "Barely worn, size M"}

	assert.True(t, l.MatchesSearch(""))
	assert.True(t, l.MatchesSearch("leather"))
	assert.True(t, l.MatchesSearch("BARELY"))
	assert.False(t, l.MatchesSearch("bicycle"))
}

func TestListingClone(t *testing.T) {
	brand := "Levi's"
	l := &Listing{ID: "1", Images: []string{"a.jpg"}, Brand: &brand, Category: &CategoryRef{Name: "Clothing"}}

	c := l.Clone()
	c.Images[0] = "b.jpg"
	*c.Brand = "Wrangler"
	c.Category.Name = "Other"

	assert.Equal(t, "a.jpg", l.Images[0])
	assert.Equal(t, "Levi's", *l.Brand)
	assert.Equal(t, "Clothing", l.CategoryName())
	assert.Nil(t, (*Listing)(nil).Clone())
}
