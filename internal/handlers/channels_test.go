package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/autoreplyhq/autoreply/internal/channel"
)

func init() {
	channel.MustRegisterChannel(channel.ChannelDescriptor{
		Type:        channel.ChannelWeb,
		DisplayName: "Web",
	})
	channel.MustRegisterChannel(channel.ChannelDescriptor{
		Type:        channel.ChannelCLI,
		DisplayName: "CLI",
	})
}

func TestChannelList(t *testing.T) {
	t.Parallel()

	h := NewChannelHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/channels", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []channelInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 channels, got %+v", items)
	}
	// Sorted by type for a stable listing.
	if items[0].Type != "cli" || items[1].Type != "web" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if items[1].DisplayName != "Web" {
		t.Fatalf("unexpected display name: %+v", items)
	}
}

func TestChannelListUnauthorized(t *testing.T) {
	t.Parallel()

	h := NewChannelHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/channels", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
