package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/autoreplyhq/autoreply/internal/auth"
	"github.com/autoreplyhq/autoreply/internal/channel"
)

// Gateway feeds an inbound message through the channel manager.
type Gateway interface {
	HandleInbound(ctx context.Context, cfg channel.ChannelConfig, msg channel.InboundMessage) error
}

// ChatHandler is the ingress for the loopback channels: a message
// posted here runs the same inbound path as any platform gateway, and
// the replies the loopback adapter published on the hub come back in
// the response body. CLI and web clients share this endpoint and pick
// their channel per request.
type ChatHandler struct {
	gateway Gateway
	hub     *channel.SessionHub
	cfgs    map[channel.ChannelType]channel.ChannelConfig
}

func NewChatHandler(gateway Gateway, hub *channel.SessionHub, cfgs ...channel.ChannelConfig) *ChatHandler {
	byType := make(map[channel.ChannelType]channel.ChannelConfig, len(cfgs))
	for _, cfg := range cfgs {
		byType[cfg.ChannelType] = cfg
	}
	return &ChatHandler{gateway: gateway, hub: hub, cfgs: byType}
}

func (h *ChatHandler) Register(e *echo.Echo) {
	e.POST("/chat", h.Send)
}

type chatRequest struct {
	Channel   string   `json:"channel,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	Text      string   `json:"text"`
	Roles     []string `json:"roles,omitempty"`
}

type chatReply struct {
	Text  string `json:"text"`
	Embed bool   `json:"embed"`
}

// Send godoc
// @Summary Send a message on the local chat channel
// @Description Runs the message through the trigger engine and returns every reply it produced
// @Tags chat
// @Param payload body chatRequest true "Chat message"
// @Success 200 {array} chatReply
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Send(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	channelType := channel.ChannelWeb
	if raw := strings.TrimSpace(req.Channel); raw != "" {
		parsed, err := channel.ParseChannelType(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		channelType = parsed
	}
	cfg, ok := h.cfgs[channelType]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "channel is not a loopback channel: "+channelType.String())
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = userID
	}

	_, replies, cancel := h.hub.Subscribe(sessionID)
	defer cancel()

	msg := channel.InboundMessage{
		Channel: cfg.ChannelType,
		Text:    req.Text,
		UserID:  userID,
		Roles:   req.Roles,
		ChatID:  sessionID,
		ReplyTo: sessionID,
		BotID:   cfg.BotID,
	}
	if err := h.gateway.HandleInbound(c.Request().Context(), cfg, msg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// The loopback adapter publishes synchronously inside HandleInbound,
	// so every reply for this message is buffered by now.
	items := make([]chatReply, 0, 4)
	for {
		select {
		case reply, ok := <-replies:
			if !ok {
				return c.JSON(http.StatusOK, items)
			}
			items = append(items, chatReply{Text: reply.Text, Embed: reply.Embed})
		default:
			return c.JSON(http.StatusOK, items)
		}
	}
}
