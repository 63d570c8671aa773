package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"thriftmart/internal/adapter/web"
	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/internal/usecase"
	"thriftmart/pkg/logger"
	"thriftmart/pkg/response"
)

type StorefrontHandler struct {
	storefrontUseCase   *usecase.StorefrontUseCase
	images              web.ImageResolver
	listingErrorPolicy  usecase.ErrorPolicy
	categoryErrorPolicy usecase.ErrorPolicy
}

func NewStorefrontHandler(
	storefrontUseCase *usecase.StorefrontUseCase,
	images web.ImageResolver,
	listingErrorPolicy usecase.ErrorPolicy,
	categoryErrorPolicy usecase.ErrorPolicy,
) *StorefrontHandler {
	return &StorefrontHandler{
		storefrontUseCase:   storefrontUseCase,
		images:              images,
		listingErrorPolicy:  listingErrorPolicy,
		categoryErrorPolicy: categoryErrorPolicy,
	}
}

type listListingsRequest struct {
	Query    string `query:"q" validate:"max=200"`
	Category string `query:"category" validate:"max=128"`
}

func (r listListingsRequest) filter() repository.ListingFilter {
	return repository.ListingFilter{Search: r.Query, CategoryID: r.Category}.Normalize()
}

func bindListingFilter(c echo.Context) (repository.ListingFilter, error) {
	var req listListingsRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return repository.ListingFilter{}, err
	}
	if err := c.Validate(&req); err != nil {
		return repository.ListingFilter{}, err
	}
	return req.filter(), nil
}

// Index renders the listing page with the current results so the first paint
// needs no websocket round trip.
func (h *StorefrontHandler) Index(c echo.Context) error {
	filter, err := bindListingFilter(c)
	if err != nil {
		return response.Error(c, err)
	}
	ctx := c.Request().Context()

	state := usecase.FeedState{
		Filter:     filter,
		Listings:   []*entity.Listing{},
		Categories: []*entity.Category{},
	}
	var notifications []usecase.Notification

	listings, err := h.storefrontUseCase.FetchListings(ctx, filter)
	if err != nil {
		logger.Error("Index: error fetching products: %v", err)
		if h.listingErrorPolicy == usecase.PolicyNotify {
			notifications = append(notifications, usecase.ListingsErrorNotification)
		}
	} else {
		state.Listings = listings
	}

	categories, err := h.storefrontUseCase.FetchCategories(ctx)
	if err != nil {
		logger.Error("Index: error fetching categories: %v", err)
		if h.categoryErrorPolicy == usecase.PolicyNotify {
			notifications = append(notifications, usecase.CategoriesErrorNotification)
		}
	} else {
		state.Categories = categories
	}

	pv := web.NewPageView(state, h.images)
	pv.Notifications = notifications
	return c.Render(http.StatusOK, web.TemplatePage, pv)
}

func (h *StorefrontHandler) ListListings(c echo.Context) error {
	filter, err := bindListingFilter(c)
	if err != nil {
		return response.Error(c, err)
	}

	listings, err := h.storefrontUseCase.FetchListings(c.Request().Context(), filter)
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, listings, len(listings))
}

// ListCards returns the listing set as card view models.
func (h *StorefrontHandler) ListCards(c echo.Context) error {
	filter, err := bindListingFilter(c)
	if err != nil {
		return response.Error(c, err)
	}

	listings, err := h.storefrontUseCase.FetchListings(c.Request().Context(), filter)
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, web.NewCards(listings, h.images), len(listings))
}

func (h *StorefrontHandler) GetListing(c echo.Context) error {
	listing, err := h.storefrontUseCase.GetListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *StorefrontHandler) IncrementViews(c echo.Context) error {
	id := c.Param("id")
	views, err := h.storefrontUseCase.IncrementViews(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"id":          id,
		"views_count": views,
		"mode":        h.storefrontUseCase.ViewMode(),
	})
}

func (h *StorefrontHandler) ListCategories(c echo.Context) error {
	categories, err := h.storefrontUseCase.FetchCategories(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, categories, len(categories))
}
