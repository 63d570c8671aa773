package handler

import (
	"thriftmart/internal/adapter/web"
	"thriftmart/internal/usecase"
)

var storefrontHandler *StorefrontHandler

func Setup(
	storefrontUseCase *usecase.StorefrontUseCase,
	images web.ImageResolver,
	listingErrorPolicy usecase.ErrorPolicy,
	categoryErrorPolicy usecase.ErrorPolicy,
) {
	storefrontHandler = NewStorefrontHandler(storefrontUseCase, images, listingErrorPolicy, categoryErrorPolicy)
}

func GetStorefrontHandler() *StorefrontHandler {
	return storefrontHandler
}
