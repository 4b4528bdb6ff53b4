package local

import (
	"context"
	"fmt"
	"strings"

	"github.com/autoreplyhq/autoreply/internal/channel"
)

// LoopbackAdapter serves the CLI and Web channels: inbound messages
// arrive through Manager.HandleInbound and replies are published on
// the session hub for whoever is subscribed.
type LoopbackAdapter struct {
	channelType channel.ChannelType
	hub         *channel.SessionHub
}

func NewCLIAdapter(hub *channel.SessionHub) *LoopbackAdapter {
	return &LoopbackAdapter{channelType: channel.ChannelCLI, hub: hub}
}

func NewWebAdapter(hub *channel.SessionHub) *LoopbackAdapter {
	return &LoopbackAdapter{channelType: channel.ChannelWeb, hub: hub}
}

func (a *LoopbackAdapter) Type() channel.ChannelType {
	return a.channelType
}

func (a *LoopbackAdapter) Start(ctx context.Context, cfg channel.ChannelConfig, handler channel.InboundHandler) (channel.AdapterRunner, error) {
	return channel.AdapterRunner{SupportsStop: false}, nil
}

func (a *LoopbackAdapter) Send(ctx context.Context, cfg channel.ChannelConfig, msg channel.OutboundMessage) error {
	if a.hub == nil {
		return fmt.Errorf("session hub not configured")
	}
	target := strings.TrimSpace(msg.To)
	if target == "" {
		return fmt.Errorf("loopback target is required")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("message is required")
	}
	a.hub.Publish(target, msg)
	return nil
}
