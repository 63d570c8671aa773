package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/pkg/errors"
)

type postgresListingRepository struct {
	db DB
}

func NewPostgresListingRepository(db DB) repository.ListingRepository {
	return &postgresListingRepository{db: db}
}

func baseSelectListing() string {
	return `
        SELECT
            l.id::text, l.title, l.description, l.price::float8, l.condition,
            l.brand, l.location, l.is_available, l.images, l.views_count,
            l.created_at, l.seller_id, COALESCE(l.category_id::text, ''),
            c.name
        FROM listings l
        LEFT JOIN categories c ON c.id = l.category_id
    `
}

// buildListQuery returns the listing query and its arguments for filter.
func buildListQuery(filter repository.ListingFilter) (string, []interface{}) {
	filter = filter.Normalize()

	conds := []string{"l.is_available = TRUE"}
	var args []interface{}

	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(l.title ILIKE $%d ESCAPE '\' OR l.description ILIKE $%d ESCAPE '\')`, n, n))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conds = append(conds, fmt.Sprintf("l.category_id::text = $%d", len(args)))
	}

	sql := baseSelectListing() +
		" WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY l.created_at DESC, l.id DESC"
	return sql, args
}

func (r *postgresListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	sql, args := buildListQuery(filter)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Internal("Failed to list listings", err)
	}
	defer rows.Close()

	listings := []*entity.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, errors.Internal("Failed to parse listing data", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate listings", err)
	}
	return listings, nil
}

func (r *postgresListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	row := r.db.QueryRow(ctx, baseSelectListing()+" WHERE l.id::text = $1", id)
	l, err := scanListing(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, errors.Internal("Failed to get listing", err)
	}
	return l, nil
}

func (r *postgresListingRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views int64
	err := r.db.QueryRow(ctx,
		`UPDATE listings SET views_count = views_count + 1 WHERE id::text = $1 RETURNING views_count`,
		id,
	).Scan(&views)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return 0, errors.NotFound("Listing", err)
		}
		return 0, errors.Internal("Failed to increment listing views", err)
	}
	return views, nil
}

func (r *postgresListingRepository) SetViews(ctx context.Context, id string, views int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE listings SET views_count = $2 WHERE id::text = $1`, id, views)
	if err != nil {
		return errors.Internal("Failed to update listing views", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("Listing", nil)
	}
	return nil
}

func (r *postgresListingRepository) Create(ctx context.Context, l *entity.Listing) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO listings (
            title, description, price, condition, brand, location,
            is_available, images, views_count, seller_id, category_id, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NULLIF($11,'')::uuid,COALESCE($12, NOW()))
        RETURNING id::text, created_at
    `,
		l.Title,
		l.Description,
		l.Price,
		string(l.Condition),
		l.Brand,
		l.Location,
		l.IsAvailable,
		nonNilImages(l.Images),
		l.ViewsCount,
		l.SellerID,
		l.CategoryID,
		nullableTime(l),
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}
	return nil
}

func (r *postgresListingRepository) Update(ctx context.Context, l *entity.Listing) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE listings SET
            title=$2, description=$3, price=$4, condition=$5, brand=$6,
            location=$7, is_available=$8, images=$9, category_id=NULLIF($10,'')::uuid
        WHERE id::text = $1
    `,
		l.ID,
		l.Title,
		l.Description,
		l.Price,
		string(l.Condition),
		l.Brand,
		l.Location,
		l.IsAvailable,
		nonNilImages(l.Images),
		l.CategoryID,
	)
	if err != nil {
		return errors.Internal("Failed to update listing", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("Listing", nil)
	}
	return nil
}

func (r *postgresListingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id::text = $1`, id)
	if err != nil {
		return errors.Internal("Failed to delete listing", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("Listing", nil)
	}
	return nil
}

func scanListing(row pgx.Row) (*entity.Listing, error) {
	var (
		l            entity.Listing
		condition    string
		categoryName *string
	)
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.Price,
		&condition,
		&l.Brand,
		&l.Location,
		&l.IsAvailable,
		&l.Images,
		&l.ViewsCount,
		&l.CreatedAt,
		&l.SellerID,
		&l.CategoryID,
		&categoryName,
	)
	if err != nil {
		return nil, err
	}
	l.Condition = entity.Condition(condition)
	if categoryName != nil {
		l.Category = &entity.CategoryRef{Name: *categoryName}
	}
	return &l, nil
}

func nonNilImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

func nullableTime(l *entity.Listing) interface{} {
	if l.CreatedAt.IsZero() {
		return nil
	}
	return l.CreatedAt
}
