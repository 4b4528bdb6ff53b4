package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/autoreplyhq/autoreply/internal/auth"
	"github.com/autoreplyhq/autoreply/internal/trigger"
)

type UsageStore interface {
	ListUsage(ctx context.Context, limit int) ([]trigger.UsageRecord, error)
}

type UsageHandler struct {
	store UsageStore
}

func NewUsageHandler(store UsageStore) *UsageHandler {
	return &UsageHandler{store: store}
}

func (h *UsageHandler) Register(e *echo.Echo) {
	e.GET("/usage", h.List)
}

// List godoc
// @Summary List recent trigger firings
// @Description Most recent usage ledger rows, newest first
// @Tags usage
// @Param limit query int false "Row limit (default 50)"
// @Success 200 {array} trigger.UsageRecord
// @Failure 500 {object} ErrorResponse
// @Router /usage [get]
func (h *UsageHandler) List(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}
	items, err := h.store.ListUsage(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
