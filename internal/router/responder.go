package router

import (
	"context"
	"log/slog"
	"strings"

	"github.com/autoreplyhq/autoreply/internal/channel"
	"github.com/autoreplyhq/autoreply/internal/trigger"
)

// Dispatcher is the trigger engine seam the responder drives.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg trigger.Message) ([]trigger.Firing, error)
}

// TriggerResponder adapts channel inbound messages onto the trigger
// engine and maps each firing back to an outbound reply. It is the
// inbound processor the channel manager runs.
type TriggerResponder struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewTriggerResponder(log *slog.Logger, dispatcher Dispatcher) *TriggerResponder {
	if log == nil {
		log = slog.Default()
	}
	return &TriggerResponder{
		dispatcher: dispatcher,
		logger:     log.With(slog.String("component", "responder")),
	}
}

func (r *TriggerResponder) Respond(ctx context.Context, cfg channel.ChannelConfig, msg channel.InboundMessage) ([]channel.OutboundMessage, error) {
	if r.dispatcher == nil {
		return nil, nil
	}
	if strings.TrimSpace(msg.Text) == "" {
		return nil, nil
	}
	firings, err := r.dispatcher.Dispatch(ctx, trigger.Message{
		Text:        msg.Text,
		AuthorID:    authorID(msg),
		AuthorRoles: msg.Roles,
		ChannelID:   msg.ChatID,
		FromSelf:    msg.FromSelf,
	})
	if err != nil {
		// The pass aborted. Replies already selected still go out;
		// the message just stops producing further ones.
		r.logger.Error("dispatch aborted", slog.String("channel", msg.Channel.String()), slog.Any("error", err))
	}
	if len(firings) == 0 {
		return nil, nil
	}
	replies := make([]channel.OutboundMessage, 0, len(firings))
	for _, firing := range firings {
		replies = append(replies, channel.OutboundMessage{
			To:    msg.ReplyTo,
			Text:  firing.Response.Content,
			Embed: firing.Response.Type == trigger.ResponseEmbed,
		})
	}
	return replies, nil
}

func authorID(msg channel.InboundMessage) string {
	if id := strings.TrimSpace(msg.UserID); id != "" {
		return id
	}
	return strings.TrimSpace(msg.Username)
}
