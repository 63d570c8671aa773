package usecase

import (
	"context"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
)

// Storefront is what a Feed needs from the data layer.
type Storefront interface {
	FetchListings(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error)
	FetchCategories(ctx context.Context) ([]*entity.Category, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Notifier shows a transient message to the user of a session.
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}
