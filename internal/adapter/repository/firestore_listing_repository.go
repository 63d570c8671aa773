package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/pkg/errors"
)

const listingsCollection = "listings"

type firestoreListingRepository struct {
	client     *firestore.Client
	categories *firestoreCategoryRepository
}

func NewFirestoreListingRepository(client *firestore.Client) repository.ListingRepository {
	return &firestoreListingRepository{
		client:     client,
		categories: &firestoreCategoryRepository{client: client},
	}
}

func (r *firestoreListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		doc := r.client.Collection(listingsCollection).NewDoc()
		listing.ID = doc.ID
	}

	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now().UTC()
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}

	_, err := r.client.Collection(listingsCollection).Doc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	doc, err := r.client.Collection(listingsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, errors.Internal("Failed to get listing", err)
	}

	var listing entity.Listing
	if err := doc.DataTo(&listing); err != nil {
		return nil, errors.Internal("Failed to parse listing data", err)
	}
	listing.ID = doc.Ref.ID

	names, err := r.categories.categoryNames(ctx)
	if err != nil {
		return nil, err
	}
	embedCategory(&listing, names)

	return &listing, nil
}

// List filters availability and category in the query and the search term
// in Go, since Firestore has no substring match.
func (r *firestoreListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	filter = filter.Normalize()

	query := r.client.Collection(listingsCollection).Where("isAvailable", "==", true)
	if filter.CategoryID != "" {
		query = query.Where("categoryId", "==", filter.CategoryID)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	names, err := r.categories.categoryNames(ctx)
	if err != nil {
		return nil, err
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	listings := []*entity.Listing{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate listings", err)
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			return nil, errors.Internal("Failed to parse listing data", err)
		}
		listing.ID = doc.Ref.ID

		if !listing.MatchesSearch(filter.Search) {
			continue
		}
		embedCategory(&listing, names)
		listings = append(listings, &listing)
	}

	return listings, nil
}

func (r *firestoreListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	_, err := r.client.Collection(listingsCollection).Doc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to update listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(listingsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	ref := r.client.Collection(listingsCollection).Doc(id)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "viewsCount", Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, errors.NotFound("Listing", err)
		}
		return 0, errors.Internal("Failed to increment listing views", err)
	}

	doc, err := ref.Get(ctx)
	if err != nil {
		return 0, errors.Internal("Failed to read listing views", err)
	}
	views, err := doc.DataAt("viewsCount")
	if err != nil {
		return 0, errors.Internal("Failed to read listing views", err)
	}
	count, ok := views.(int64)
	if !ok {
		return 0, errors.Internal("Unexpected views counter type", nil)
	}
	return count, nil
}

func (r *firestoreListingRepository) SetViews(ctx context.Context, id string, views int64) error {
	_, err := r.client.Collection(listingsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "viewsCount", Value: views},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Listing", err)
		}
		return errors.Internal("Failed to update listing views", err)
	}

	return nil
}

func embedCategory(listing *entity.Listing, names map[string]string) {
	if name, ok := names[listing.CategoryID]; ok {
		listing.Category = &entity.CategoryRef{Name: name}
	}
}
