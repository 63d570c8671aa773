package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/internal/infrastructure/messaging"
	"thriftmart/internal/infrastructure/telemetry"
	"thriftmart/pkg/errors"
	"thriftmart/pkg/logger"
)

const (
	ViewModeAtomic    = "atomic"
	ViewModeReadWrite = "read_write"
)

// StorefrontUseCase holds no per-session state; one instance serves every
// request and Feed.
type StorefrontUseCase struct {
	listingRepo  repository.ListingRepository
	categoryRepo repository.CategoryRepository
	publisher    EventPublisher
	viewMode     string
	metrics      *telemetry.Metrics
	tracer       trace.Tracer
}

func NewStorefrontUseCase(
	listingRepo repository.ListingRepository,
	categoryRepo repository.CategoryRepository,
	publisher EventPublisher,
	viewMode string,
	metrics *telemetry.Metrics,
) *StorefrontUseCase {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if viewMode != ViewModeReadWrite {
		viewMode = ViewModeAtomic
	}
	return &StorefrontUseCase{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
		viewMode:     viewMode,
		metrics:      metrics,
		tracer:       otel.Tracer("thriftmart/usecase"),
	}
}

func (uc *StorefrontUseCase) ViewMode() string {
	return uc.viewMode
}

// FetchListings returns available listings matching filter, newest first.
func (uc *StorefrontUseCase) FetchListings(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	filter = filter.Normalize()

	ctx, span := uc.tracer.Start(ctx, "Storefront.FetchListings", trace.WithAttributes(
		attribute.String("filter.search", filter.Search),
		attribute.String("filter.category_id", filter.CategoryID),
	))
	defer span.End()

	start := time.Now()
	listings, err := uc.listingRepo.List(ctx, filter)
	uc.observeFetch("listings", start, err)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(listings)))
	return listings, nil
}

// FetchCategories returns every category ordered by name.
func (uc *StorefrontUseCase) FetchCategories(ctx context.Context) ([]*entity.Category, error) {
	ctx, span := uc.tracer.Start(ctx, "Storefront.FetchCategories")
	defer span.End()

	start := time.Now()
	categories, err := uc.categoryRepo.List(ctx)
	uc.observeFetch("categories", start, err)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(categories)))
	return categories, nil
}

func (uc *StorefrontUseCase) GetListing(ctx context.Context, id string) (*entity.Listing, error) {
	if id == "" {
		return nil, errors.BadRequest("Listing ID is required", nil)
	}

	ctx, span := uc.tracer.Start(ctx, "Storefront.GetListing", trace.WithAttributes(
		attribute.String("listing.id", id),
	))
	defer span.End()

	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return listing, nil
}

// IncrementViews adds one view to the listing and returns the new count.
// In read_write mode the count is read and written back in two steps, so
// concurrent callers can overwrite each other.
func (uc *StorefrontUseCase) IncrementViews(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, errors.BadRequest("Listing ID is required", nil)
	}

	ctx, span := uc.tracer.Start(ctx, "Storefront.IncrementViews", trace.WithAttributes(
		attribute.String("listing.id", id),
		attribute.String("views.mode", uc.viewMode),
	))
	defer span.End()

	var (
		views int64
		err   error
	)
	if uc.viewMode == ViewModeReadWrite {
		views, err = uc.readWriteIncrement(ctx, id)
	} else {
		views, err = uc.listingRepo.IncrementViews(ctx, id)
	}

	if uc.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		uc.metrics.ViewIncrements.WithLabelValues(uc.viewMode, result).Inc()
	}
	if err != nil {
		recordSpanError(span, err)
		return 0, err
	}

	event := messaging.ListingViewed{
		ListingID:  id,
		ViewsCount: views,
		Mode:       uc.viewMode,
		At:         time.Now().UTC().Format(time.RFC3339),
	}
	if perr := uc.publisher.Publish(ctx, messaging.SubjectListingViewed, event); perr != nil {
		logger.Warn("Storefront.IncrementViews: failed to publish %s for %s: %v", messaging.SubjectListingViewed, id, perr)
	}

	return views, nil
}

func (uc *StorefrontUseCase) readWriteIncrement(ctx context.Context, id string) (int64, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	next := listing.ViewsCount + 1
	if err := uc.listingRepo.SetViews(ctx, id, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (uc *StorefrontUseCase) observeFetch(kind string, start time.Time, err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.FetchLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	uc.metrics.Fetches.WithLabelValues(kind, result).Inc()
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
