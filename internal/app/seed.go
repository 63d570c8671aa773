package app

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"time"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/pkg/logger"
)

// ImageUploader stores a sample image and returns its object key.
type ImageUploader interface {
	Upload(ctx context.Context, folder string, file io.Reader, size int64, contentType string) (string, error)
}

type sampleListing struct {
	title       string
	description string
	price       float64
	condition   entity.Condition
	brand       string
	location    string
	category    string
	color       string
}

var sampleCategories = []entity.Category{
	{Name: "Electronics", Description: "Phones, audio, cameras and gadgets"},
	{Name: "Furniture", Description: "Chairs, tables and storage"},
	{Name: "Clothing", Description: "Jackets, shoes and accessories"},
	{Name: "Books", Description: "Novels, textbooks and comics"},
	{Name: "Sports", Description: "Bikes, boards and outdoor gear"},
}

var sampleListings = []sampleListing{
	{"Vintage film camera", "35mm rangefinder, light seals replaced.", 120, entity.ConditionGood, "Canon", "Portland, OR", "Electronics", "#1f2937"},
	{"Noise cancelling headphones", "Over-ear, includes case and cable.", 85.5, entity.ConditionLikeNew, "Sony", "Austin, TX", "Electronics", "#0f766e"},
	{"Mid-century armchair", "Walnut frame, reupholstered last year.", 240, entity.ConditionGood, "", "Chicago, IL", "Furniture", "#92400e"},
	{"Oak bookshelf", "Five shelves, a few scratches on the side.", 60, entity.ConditionFair, "", "", "Furniture", "#a16207"},
	{"Leather jacket", "Size M, broken in but no tears.", 75, entity.ConditionGood, "Schott", "Brooklyn, NY", "Clothing", "#111827"},
	{"Trail running shoes", "Size 10, worn twice.", 45, entity.ConditionLikeNew, "Salomon", "Denver, CO", "Clothing", "#b91c1c"},
	{"Sci-fi paperback bundle", "Twelve classic novels, yellowed pages.", 18, entity.ConditionFair, "", "Seattle, WA", "Books", "#4338ca"},
	{"Road bike", "Aluminium frame, 54cm, new tyres.", 310, entity.ConditionGood, "Trek", "Boulder, CO", "Sports", "#15803d"},
	{"Skateboard deck", "Unused deck, still in shrink wrap.", 40, entity.ConditionNew, "Element", "", "Sports", "#c2410c"},
	{"Desk lamp", "Flicker on the switch, bulb included.", 8, entity.ConditionPoor, "IKEA", "Austin, TX", "Furniture", "#6b7280"},
}

// SeedResult counts what Seed wrote.
type SeedResult struct {
	Categories int
	Listings   int
	Images     int
	Skipped    int
}

// Seed inserts sample categories and listings. Rows whose name or title
// already exists are skipped so the command can run repeatedly. uploader may
// be nil, in which case listings get no images and the card placeholder is
// shown.
func Seed(ctx context.Context, categories repository.CategoryRepository, listings repository.ListingRepository, uploader ImageUploader, sellerID string) (SeedResult, error) {
	var result SeedResult

	existingCategories, err := categories.List(ctx)
	if err != nil {
		return result, err
	}
	categoryIDs := make(map[string]string, len(existingCategories))
	for _, c := range existingCategories {
		categoryIDs[c.Name] = c.ID
	}

	for _, sample := range sampleCategories {
		if _, ok := categoryIDs[sample.Name]; ok {
			result.Skipped++
			continue
		}
		c := sample
		if err := categories.Create(ctx, &c); err != nil {
			return result, fmt.Errorf("create category %s: %w", sample.Name, err)
		}
		categoryIDs[c.Name] = c.ID
		result.Categories++
	}

	existingListings, err := listings.List(ctx, repository.ListingFilter{})
	if err != nil {
		return result, err
	}
	titles := make(map[string]bool, len(existingListings))
	for _, l := range existingListings {
		titles[l.Title] = true
	}

	now := time.Now().UTC()
	for i, sample := range sampleListings {
		if titles[sample.title] {
			result.Skipped++
			continue
		}

		listing := &entity.Listing{
			Title:       sample.title,
			Description: sample.description,
			Price:       sample.price,
			Condition:   sample.condition,
			Brand:       optional(sample.brand),
			Location:    optional(sample.location),
			IsAvailable: true,
			Images:      []string{},
			SellerID:    sellerID,
			CategoryID:  categoryIDs[sample.category],
			CreatedAt:   now.Add(-time.Duration(len(sampleListings)-i) * time.Hour),
		}

		if uploader != nil {
			svg := sampleImage(sample.title, sample.color)
			key, err := uploader.Upload(ctx, "listings", bytes.NewReader(svg), int64(len(svg)), "image/svg+xml")
			if err != nil {
				logger.Warn("Seed: image upload for %q failed: %v", sample.title, err)
			} else {
				listing.Images = append(listing.Images, key)
				result.Images++
			}
		}

		if err := listings.Create(ctx, listing); err != nil {
			return result, fmt.Errorf("create listing %s: %w", sample.title, err)
		}
		result.Listings++
	}

	return result, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func sampleImage(title, color string) []byte {
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="400" height="400" viewBox="0 0 400 400">`+
			`<rect width="400" height="400" fill="%s"/>`+
			`<text x="200" y="210" font-family="sans-serif" font-size="22" fill="#ffffff" text-anchor="middle">%s</text>`+
			`</svg>`,
		color, html.EscapeString(title),
	))
}
