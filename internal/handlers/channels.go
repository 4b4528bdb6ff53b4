package handlers

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/autoreplyhq/autoreply/internal/auth"
	"github.com/autoreplyhq/autoreply/internal/channel"
)

type ChannelHandler struct{}

func NewChannelHandler() *ChannelHandler {
	return &ChannelHandler{}
}

func (h *ChannelHandler) Register(e *echo.Echo) {
	e.GET("/channels", h.List)
}

type channelInfo struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
}

// List godoc
// @Summary List supported channel types
// @Tags channels
// @Success 200 {array} channelInfo
// @Router /channels [get]
func (h *ChannelHandler) List(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	descriptors := channel.ListChannelDescriptors()
	items := make([]channelInfo, 0, len(descriptors))
	for _, desc := range descriptors {
		items = append(items, channelInfo{
			Type:        desc.Type.String(),
			DisplayName: desc.DisplayName,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Type < items[j].Type })
	return c.JSON(http.StatusOK, items)
}
