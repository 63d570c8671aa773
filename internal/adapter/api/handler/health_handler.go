package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"thriftmart/pkg/logger"
)

// PingFunc checks that the backing store answers.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	driver string
	ping   PingFunc
}

var healthHandler *HealthHandler

func NewHealthHandler(driver string, ping PingFunc) *HealthHandler {
	return &HealthHandler{
		driver: driver,
		ping:   ping,
	}
}

func SetupHealthHandler(driver string, ping PingFunc) {
	healthHandler = NewHealthHandler(driver, ping)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckStoreHealth(c echo.Context) error {
	if h.ping == nil {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "Store has no health check",
			"driver": h.driver,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		logger.Warn("Health: %s store check failed: %v", h.driver, err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "Store connection failed",
			"driver": h.driver,
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Store connected successfully",
		"driver": h.driver,
	})
}
