package repository

import (
	"context"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/pkg/errors"
)

type postgresCategoryRepository struct {
	db DB
}

func NewPostgresCategoryRepository(db DB) repository.CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, errors.Internal("Failed to list categories", err)
	}
	defer rows.Close()

	categories := []*entity.Category{}
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, errors.Internal("Failed to parse category data", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate categories", err)
	}
	return categories, nil
}

func (r *postgresCategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id::text`,
		c.Name, c.Description,
	).Scan(&c.ID)
	if err != nil {
		return errors.Internal("Failed to create category", err)
	}
	return nil
}
