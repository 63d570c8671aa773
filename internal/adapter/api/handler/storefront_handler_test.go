package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thriftmart/internal/adapter/api"
	adapter "thriftmart/internal/adapter/repository"
	"thriftmart/internal/adapter/web"
	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/internal/usecase"
)

type failingListings struct {
	repository.ListingRepository
}

func (failingListings) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	return nil, stderrors.New("relation does not exist")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = api.NewValidator()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	e.Renderer = renderer
	return e
}

func seededRepos(t *testing.T) (repository.ListingRepository, repository.CategoryRepository) {
	t.Helper()
	ctx := context.Background()
	store := adapter.NewMemoryStore()
	listings := adapter.NewMemoryListingRepository(store)
	categories := adapter.NewMemoryCategoryRepository(store)

	require.NoError(t, categories.Create(ctx, &entity.Category{ID: "c-books", Name: "Books"}))
	require.NoError(t, categories.Create(ctx, &entity.Category{ID: "c-bikes", Name: "Bikes"}))
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, listings.Create(ctx, &entity.Listing{ID: "novel", Title: "Paperback novel", Price: 4.5, Condition: entity.ConditionFair, IsAvailable: true, CategoryID: "c-books", Images: []string{"books/novel.jpg"}, CreatedAt: base}))
	require.NoError(t, listings.Create(ctx, &entity.Listing{ID: "bmx", Title: "BMX bike", Description: "Chrome frame", Price: 150, Condition: entity.ConditionGood, IsAvailable: true, CategoryID: "c-bikes", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, listings.Create(ctx, &entity.Listing{ID: "sold", Title: "Sold bike", Price: 10, IsAvailable: false, CategoryID: "c-bikes", CreatedAt: base.Add(2 * time.Hour)}))
	return listings, categories
}

func newStorefrontHandler(t *testing.T, listings repository.ListingRepository, categories repository.CategoryRepository) *StorefrontHandler {
	t.Helper()
	uc := usecase.NewStorefrontUseCase(listings, categories, nil, usecase.ViewModeAtomic, nil)
	return NewStorefrontHandler(uc, web.ImageResolver{BaseURL: "https://cdn.example.com/"}, usecase.PolicyNotify, usecase.PolicyLog)
}

func serve(e *echo.Echo, method, target string, h echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestListListings(t *testing.T) {
	e := newTestEcho(t)
	listings, categories := seededRepos(t)
	h := newStorefrontHandler(t, listings, categories)

	rec := serve(e, http.MethodGet, "/v1/listings?category=all", h.ListListings)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode(t, rec)
	assert.True(t, env.Success)
	var list struct {
		Items []entity.Listing `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "bmx", list.Items[0].ID)
	assert.Equal(t, "Bikes", list.Items[0].CategoryName())

	rec = serve(e, http.MethodGet, "/v1/listings?q=CHROME&category=c-bikes", h.ListListings)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "bmx", list.Items[0].ID)

	rec = serve(e, http.MethodGet, "/v1/listings?category=c-books&q=bike", h.ListListings)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	assert.Equal(t, 0, list.Total)
	assert.Empty(t, list.Items)
}

func TestListListingsValidation(t *testing.T) {
	e := newTestEcho(t)
	listings, categories := seededRepos(t)
	h := newStorefrontHandler(t, listings, categories)

	rec := serve(e, http.MethodGet, "/v1/listings?q="+strings.Repeat("x", 201), h.ListListings)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec).Error.Code)
}

func TestListCards(t *testing.T) {
	e := newTestEcho(t)
	listings, categories := seededRepos(t)
	h := newStorefrontHandler(t, listings, categories)

	rec := serve(e, http.MethodGet, "/v1/listings/cards?category=c-books", h.ListCards)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Items []web.Card `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "$4.50", list.Items[0].Price)
	assert.Equal(t, "https://cdn.example.com/books/novel.jpg", list.Items[0].ImageURL)
	assert.Equal(t, "bg-orange-500", list.Items[0].ConditionColor)
}

func TestGetListingAndIncrementViews(t *testing.T) {
	e := newTestEcho(t)
	listings, categories := seededRepos(t)
	h := newStorefrontHandler(t, listings, categories)

	rec := serve(e, http.MethodGet, "/v1/listings/missing", h.GetListing, "id", "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec).Error.Code)

	for i := 0; i < 2; i++ {
		rec = serve(e, http.MethodPost, "/v1/listings/bmx/views", h.IncrementViews, "id", "bmx")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	var body struct {
		ViewsCount int64  `json:"views_count"`
		Mode       string `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Equal(t, int64(2), body.ViewsCount)
	assert.Equal(t, usecase.ViewModeAtomic, body.Mode)

	rec = serve(e, http.MethodGet, "/v1/listings/bmx", h.GetListing, "id", "bmx")
	var listing entity.Listing
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &listing))
	assert.Equal(t, int64(2), listing.ViewsCount)
}

func TestListCategoriesOrdered(t *testing.T) {
	e := newTestEcho(t)
	listings, categories := seededRepos(t)
	h := newStorefrontHandler(t, listings, categories)

	rec := serve(e, http.MethodGet, "/v1/categories", h.ListCategories)
	var list struct {
		Items []entity.Category `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Bikes", list.Items[0].Name)
	assert.Equal(t, "Books", list.Items[1].Name)
}

func TestIndexRendersPage(t *testing.T) {
	e := newTestEcho(t)
	listings, categories := seededRepos(t)
	h := newStorefrontHandler(t, listings, categories)

	rec := serve(e, http.MethodGet, "/?q=bike", h.Index)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Second-Hand")
	assert.Contains(t, body, "Search results for &#34;bike&#34;")
	assert.Contains(t, body, "1 item")
	assert.Equal(t, 1, strings.Count(body, `data-testid="listing-card"`))
	assert.Contains(t, body, `href="/product/bmx"`)
	assert.Contains(t, body, "All Categories")
	assert.NotContains(t, body, `data-testid="toast"`)
}

func TestIndexListingFailureShowsToast(t *testing.T) {
	e := newTestEcho(t)
	listings, categories := seededRepos(t)
	h := newStorefrontHandler(t, failingListings{listings}, categories)

	rec := serve(e, http.MethodGet, "/", h.Index)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `data-testid="toast"`)
	assert.Contains(t, body, "Failed to fetch products")
	assert.Contains(t, body, "No products available yet.")
	assert.Contains(t, body, "Bikes")
}
