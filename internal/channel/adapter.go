package channel

import "context"

// InboundMessage is a message event as the gateway saw it. FromSelf
// marks messages authored by the bot's own identity; the engine drops
// those before any trigger evaluation.
type InboundMessage struct {
	Channel  ChannelType
	Text     string
	Username string
	UserID   string
	Roles    []string
	ChatID   string
	ChatType string
	ReplyTo  string
	BotID    string
	FromSelf bool
}

type OutboundMessage struct {
	To    string
	Text  string
	Embed bool
}

type AdapterRunner struct {
	Stop         func()
	SupportsStop bool
}

type InboundHandler func(ctx context.Context, cfg ChannelConfig, msg InboundMessage) error

type Adapter interface {
	Type() ChannelType
	Start(ctx context.Context, cfg ChannelConfig, handler InboundHandler) (AdapterRunner, error)
	Send(ctx context.Context, cfg ChannelConfig, msg OutboundMessage) error
}

// Responder turns one inbound message into zero or more replies. A
// single message may legitimately produce several replies when more
// than one trigger fires for it.
type Responder interface {
	Respond(ctx context.Context, cfg ChannelConfig, msg InboundMessage) ([]OutboundMessage, error)
}
