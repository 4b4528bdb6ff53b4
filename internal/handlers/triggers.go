package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/autoreplyhq/autoreply/internal/auth"
	"github.com/autoreplyhq/autoreply/internal/trigger"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// TriggerStore is the authoring slice of the trigger store.
type TriggerStore interface {
	Create(ctx context.Context, req trigger.CreateRequest, creatorID string) (trigger.Trigger, error)
	List(ctx context.Context) ([]trigger.Row, error)
}

// TriggerCache is the cache write path: pattern reads and the
// delete-with-eviction operation.
type TriggerCache interface {
	GetByPattern(ctx context.Context, pattern string) ([]trigger.Trigger, error)
	Delete(ctx context.Context, pattern string) (int64, error)
	Invalidate(pattern string)
}

type TriggerHandler struct {
	store TriggerStore
	cache TriggerCache
}

func NewTriggerHandler(store TriggerStore, cache TriggerCache) *TriggerHandler {
	return &TriggerHandler{store: store, cache: cache}
}

func (h *TriggerHandler) Register(e *echo.Echo) {
	group := e.Group("/triggers")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:pattern", h.GetByPattern)
	group.DELETE("/:pattern", h.Delete)
}

type triggerSummary struct {
	Pattern   string `json:"pattern"`
	MatchType string `json:"match_type"`
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// Create godoc
// @Summary Create a trigger
// @Description Register a new auto-response trigger; match_type defaults to exact
// @Tags triggers
// @Param payload body trigger.CreateRequest true "Trigger payload"
// @Success 201 {object} trigger.Trigger
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /triggers [post]
func (h *TriggerHandler) Create(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req trigger.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.store.Create(c.Request().Context(), req, userID)
	if err != nil {
		if errors.Is(err, trigger.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	// A fresh trigger must not be shadowed by a previously cached
	// pattern set.
	h.cache.Invalidate(created.Pattern)
	return c.JSON(http.StatusCreated, created)
}

// List godoc
// @Summary List triggers
// @Description List every registered trigger as (pattern, match_type)
// @Tags triggers
// @Success 200 {array} triggerSummary
// @Failure 500 {object} ErrorResponse
// @Router /triggers [get]
func (h *TriggerHandler) List(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	rows, err := h.store.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	items := make([]triggerSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, triggerSummary{
			Pattern:   row.Pattern,
			MatchType: row.MatchType.String(),
		})
	}
	return c.JSON(http.StatusOK, items)
}

// GetByPattern godoc
// @Summary Get triggers by pattern
// @Description Fetch every trigger sharing the pattern (patterns are not unique)
// @Tags triggers
// @Param pattern path string true "Trigger pattern"
// @Success 200 {array} trigger.Trigger
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /triggers/{pattern} [get]
func (h *TriggerHandler) GetByPattern(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	pattern := strings.TrimSpace(c.Param("pattern"))
	if pattern == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "pattern is required")
	}
	items, err := h.cache.GetByPattern(c.Request().Context(), pattern)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, trigger.ErrNotFound.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// Delete godoc
// @Summary Delete triggers by pattern
// @Description Remove every trigger with the pattern; unknown patterns delete zero rows
// @Tags triggers
// @Param pattern path string true "Trigger pattern"
// @Success 200 {object} deleteResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /triggers/{pattern} [delete]
func (h *TriggerHandler) Delete(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	pattern := strings.TrimSpace(c.Param("pattern"))
	if pattern == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "pattern is required")
	}
	deleted, err := h.cache.Delete(c.Request().Context(), pattern)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, deleteResponse{Deleted: deleted})
}
