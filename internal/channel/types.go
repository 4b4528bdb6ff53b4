package channel

import (
	"fmt"
	"time"
)

type ChannelType string

const (
	ChannelTelegram ChannelType = "telegram"
	ChannelFeishu   ChannelType = "feishu"
	ChannelCLI      ChannelType = "cli"
	ChannelWeb      ChannelType = "web"
)

func (c ChannelType) String() string {
	return string(c)
}

func ParseChannelType(raw string) (ChannelType, error) {
	normalized := normalizeChannelType(raw)
	if normalized == "" {
		return "", fmt.Errorf("unsupported channel type: %s", raw)
	}
	if _, ok := GetChannelDescriptor(normalized); !ok {
		return "", fmt.Errorf("unsupported channel type: %s", raw)
	}
	return normalized, nil
}

// ChannelConfig is one runnable gateway: a channel type plus the
// credentials its adapter needs to hold a connection.
type ChannelConfig struct {
	ID          string
	BotID       string
	ChannelType ChannelType
	Credentials map[string]interface{}
	Status      string
	UpdatedAt   time.Time
}
