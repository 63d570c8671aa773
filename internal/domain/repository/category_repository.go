package repository

import (
	"context"

	"thriftmart/internal/domain/entity"
)

type CategoryRepository interface {
	// List returns every category ordered by name.
	List(ctx context.Context) ([]*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
}
