package web

import (
	"strconv"

	"thriftmart/internal/domain/entity"
	"thriftmart/pkg/utils"
)

const (
	DefaultPlaceholder = "/placeholder.svg"
	LocationFallback   = "Location not specified"
)

var conditionColors = map[entity.Condition]string{
	entity.ConditionNew:     "bg-green-500",
	entity.ConditionLikeNew: "bg-green-400",
	entity.ConditionGood:    "bg-yellow-500",
	entity.ConditionFair:    "bg-orange-500",
	entity.ConditionPoor:    "bg-red-500",
}

// ConditionColor maps a condition to its badge class. Unknown values get gray.
func ConditionColor(c entity.Condition) string {
	if color, ok := conditionColors[c]; ok {
		return color
	}
	return "bg-gray-500"
}

// ImageResolver turns stored object keys into browser URLs.
type ImageResolver struct {
	BaseURL     string
	Placeholder string
}

func (r ImageResolver) placeholder() string {
	if r.Placeholder == "" {
		return DefaultPlaceholder
	}
	return r.Placeholder
}

// Resolve returns the public URL of the first image, or the placeholder when
// the listing has none.
func (r ImageResolver) Resolve(images []string) string {
	if len(images) == 0 || images[0] == "" {
		return r.placeholder()
	}
	return r.BaseURL + images[0]
}

// Card is the view model of one listing tile.
type Card struct {
	ID             string `json:"id"`
	Href           string `json:"href"`
	Title          string `json:"title"`
	ImageURL       string `json:"image_url"`
	Placeholder    string `json:"placeholder"`
	Price          string `json:"price"`
	ConditionLabel string `json:"condition_label"`
	ConditionColor string `json:"condition_color"`
	Location       string `json:"location"`
	Views          string `json:"views"`
	CategoryName   string `json:"category_name,omitempty"`
}

func NewCard(l *entity.Listing, images ImageResolver) Card {
	location := LocationFallback
	if l.Location != nil && *l.Location != "" {
		location = *l.Location
	}

	return Card{
		ID:             l.ID,
		Href:           "/product/" + l.ID,
		Title:          l.Title,
		ImageURL:       images.Resolve(l.Images),
		Placeholder:    images.placeholder(),
		Price:          utils.FormatUSD(l.Price),
		ConditionLabel: l.Condition.Label(),
		ConditionColor: ConditionColor(l.Condition),
		Location:       location,
		Views:          strconv.FormatInt(l.ViewsCount, 10),
		CategoryName:   l.CategoryName(),
	}
}

func NewCards(listings []*entity.Listing, images ImageResolver) []Card {
	cards := make([]Card, 0, len(listings))
	for _, l := range listings {
		cards = append(cards, NewCard(l, images))
	}
	return cards
}
