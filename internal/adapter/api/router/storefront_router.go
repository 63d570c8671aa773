package router

import (
	"github.com/labstack/echo/v4"

	"thriftmart/internal/adapter/api/handler"
	"thriftmart/internal/adapter/web"
)

func SetupStorefrontRouter(e *echo.Echo, viewRateLimit echo.MiddlewareFunc) {
	storefrontHandler := handler.GetStorefrontHandler()

	e.GET("/", storefrontHandler.Index)
	e.GET("/placeholder.svg", web.PlaceholderSVG)

	listings := e.Group("/v1/listings")
	listings.GET("", storefrontHandler.ListListings)
	listings.GET("/cards", storefrontHandler.ListCards)
	listings.GET("/:id", storefrontHandler.GetListing)

	var viewMiddleware []echo.MiddlewareFunc
	if viewRateLimit != nil {
		viewMiddleware = append(viewMiddleware, viewRateLimit)
	}
	listings.POST("/:id/views", storefrontHandler.IncrementViews, viewMiddleware...)

	e.GET("/v1/categories", storefrontHandler.ListCategories)
}
