package entity

import (
	"strings"
	"time"
)

type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Label is the display text: the first underscore becomes a space.
func (c Condition) Label() string {
	return strings.Replace(string(c), "_", " ", 1)
}

// CategoryRef is the category name embedded in a listing row by the join.
type CategoryRef struct {
	Name string `json:"name"`
}

type Listing struct {
	ID          string    `json:"id" firestore:"id"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Price       float64   `json:"price" firestore:"price"`
	Condition   Condition `json:"condition" firestore:"condition"`
	Brand       *string   `json:"brand" firestore:"brand,omitempty"`
	Location    *string   `json:"location" firestore:"location,omitempty"`
	IsAvailable bool      `json:"is_available" firestore:"isAvailable"`
	Images      []string  `json:"images" firestore:"images"`
	ViewsCount  int64     `json:"views_count" firestore:"viewsCount"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	SellerID    string    `json:"seller_id" firestore:"sellerId"`
	CategoryID  string    `json:"category_id" firestore:"categoryId"`

	Category *CategoryRef `json:"categories,omitempty" firestore:"-"`
}

// CategoryName returns the embedded category name or "".
func (l *Listing) CategoryName() string {
	if l.Category == nil {
		return ""
	}
	return l.Category.Name
}

// MatchesSearch reports whether term occurs case-insensitively in the title
// or description. An empty term matches everything.
func (l *Listing) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(l.Title), term) ||
		strings.Contains(strings.ToLower(l.Description), term)
}

func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	if l.Images != nil {
		c.Images = append([]string(nil), l.Images...)
	}
	if l.Brand != nil {
		b := *l.Brand
		c.Brand = &b
	}
	if l.Location != nil {
		loc := *l.Location
		c.Location = &loc
	}
	if l.Category != nil {
		ref := *l.Category
		c.Category = &ref
	}
	return &c
}
