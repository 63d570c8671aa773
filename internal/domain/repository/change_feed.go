package repository

import (
	"context"

	"thriftmart/internal/domain/entity"
)

// ChangeFeed delivers mutation notifications for a table.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table string) (Subscription, error)
}

// Subscription is released with Close. Events is closed once the
// subscription ends.
type Subscription interface {
	Events() <-chan entity.ChangeEvent
	Close() error
}
