package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/autoreplyhq/autoreply/internal/trigger"
)

type fakeTriggerStore struct {
	created   []trigger.CreateRequest
	creatorID string
	rows      []trigger.Row
	createErr error
	listErr   error
}

func (f *fakeTriggerStore) Create(_ context.Context, req trigger.CreateRequest, creatorID string) (trigger.Trigger, error) {
	if f.createErr != nil {
		return trigger.Trigger{}, f.createErr
	}
	normalized, err := req.Normalize()
	if err != nil {
		return trigger.Trigger{}, err
	}
	f.created = append(f.created, req)
	f.creatorID = creatorID
	normalized.ID = "t1"
	normalized.CreatorID = creatorID
	normalized.CreatedAt = time.Unix(1700000000, 0).UTC()
	return normalized, nil
}

func (f *fakeTriggerStore) List(context.Context) ([]trigger.Row, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

type fakeTriggerCache struct {
	triggers    []trigger.Trigger
	getErr      error
	deleted     int64
	deleteErr   error
	invalidated []string
}

func (f *fakeTriggerCache) GetByPattern(context.Context, string) ([]trigger.Trigger, error) {
	return f.triggers, f.getErr
}

func (f *fakeTriggerCache) Delete(context.Context, string) (int64, error) {
	return f.deleted, f.deleteErr
}

func (f *fakeTriggerCache) Invalidate(pattern string) {
	f.invalidated = append(f.invalidated, pattern)
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user", &jwt.Token{
		Valid:  true,
		Claims: jwt.MapClaims{"user_id": "author-1"},
	})
	return c
}

func TestTriggerCreate(t *testing.T) {
	t.Parallel()

	store := &fakeTriggerStore{}
	cache := &fakeTriggerCache{}
	h := NewTriggerHandler(store, cache)

	e := echo.New()
	body := `{"pattern":"hello","response":"hi there!","match_type":"partial","cooldown_seconds":30}`
	req := httptest.NewRequest(http.MethodPost, "/triggers", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created trigger.Trigger
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Pattern != "hello" || created.MatchType != trigger.MatchPartial {
		t.Fatalf("unexpected trigger: %+v", created)
	}
	if store.creatorID != "author-1" {
		t.Fatalf("creator must come from the token, got %q", store.creatorID)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "hello" {
		t.Fatalf("create must invalidate the pattern, got %v", cache.invalidated)
	}
}

func TestTriggerCreateValidationError(t *testing.T) {
	t.Parallel()

	h := NewTriggerHandler(&fakeTriggerStore{}, &fakeTriggerCache{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/triggers", strings.NewReader(`{"pattern":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTriggerCreateUnauthorized(t *testing.T) {
	t.Parallel()

	h := NewTriggerHandler(&fakeTriggerStore{}, &fakeTriggerCache{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/triggers", strings.NewReader(`{"pattern":"x","response":"y"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec) // no token

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestTriggerList(t *testing.T) {
	t.Parallel()

	store := &fakeTriggerStore{rows: []trigger.Row{
		{ID: "t1", Pattern: "hello", MatchType: trigger.MatchExact},
		{ID: "t2", Pattern: "bye.*", MatchType: trigger.MatchRegex},
	}}
	h := NewTriggerHandler(store, &fakeTriggerCache{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/triggers", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []triggerSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 || items[1].Pattern != "bye.*" || items[1].MatchType != "regex" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestTriggerGetByPattern(t *testing.T) {
	t.Parallel()

	cache := &fakeTriggerCache{triggers: []trigger.Trigger{
		{ID: "t1", Pattern: "hello", MatchType: trigger.MatchExact},
	}}
	h := NewTriggerHandler(&fakeTriggerStore{}, cache)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/triggers/hello", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("pattern")
	c.SetParamValues("hello")

	if err := h.GetByPattern(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTriggerGetByPatternNotFound(t *testing.T) {
	t.Parallel()

	h := NewTriggerHandler(&fakeTriggerStore{}, &fakeTriggerCache{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/triggers/nothing", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("pattern")
	c.SetParamValues("nothing")

	err := h.GetByPattern(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
	if httpErr.Message != trigger.ErrNotFound.Error() {
		t.Fatalf("unexpected message: %v", httpErr.Message)
	}
}

func TestTriggerDelete(t *testing.T) {
	t.Parallel()

	cache := &fakeTriggerCache{deleted: 2}
	h := NewTriggerHandler(&fakeTriggerStore{}, cache)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/triggers/hello", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("pattern")
	c.SetParamValues("hello")

	if err := h.Delete(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var resp deleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", resp.Deleted)
	}
}

func TestTriggerDeleteUnknownPattern(t *testing.T) {
	t.Parallel()

	h := NewTriggerHandler(&fakeTriggerStore{}, &fakeTriggerCache{deleted: 0})

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/triggers/nothing", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("pattern")
	c.SetParamValues("nothing")

	if err := h.Delete(c); err != nil {
		t.Fatalf("deleting an unknown pattern is not an error, got %v", err)
	}
	var resp deleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Deleted != 0 {
		t.Fatalf("expected 0 deleted, got %d", resp.Deleted)
	}
}

func TestTriggerDeleteStoreFailure(t *testing.T) {
	t.Parallel()

	h := NewTriggerHandler(&fakeTriggerStore{}, &fakeTriggerCache{deleteErr: errors.New("pool closed")})

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/triggers/hello", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("pattern")
	c.SetParamValues("hello")

	err := h.Delete(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}
