package channel

import (
	"context"
	"fmt"
	"time"
)

// StaticSource serves gateway configs loaded once at startup, e.g.
// from the service config file. IDs are derived from the channel type
// so the reconcile loop sees stable identities across refreshes.
type StaticSource struct {
	configs map[ChannelType][]ChannelConfig
}

func NewStaticSource(botID string, entries []StaticEntry) (*StaticSource, error) {
	loadedAt := time.Now().UTC()
	configs := map[ChannelType][]ChannelConfig{}
	for i, entry := range entries {
		channelType, err := ParseChannelType(entry.Type)
		if err != nil {
			return nil, err
		}
		credentials, err := NormalizeChannelConfig(channelType, entry.Credentials)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", channelType, err)
		}
		cfg := ChannelConfig{
			ID:          fmt.Sprintf("%s-%d", channelType, i),
			BotID:       botID,
			ChannelType: channelType,
			Credentials: credentials,
			Status:      "active",
			UpdatedAt:   loadedAt,
		}
		configs[channelType] = append(configs[channelType], cfg)
	}
	return &StaticSource{configs: configs}, nil
}

type StaticEntry struct {
	Type        string
	Credentials map[string]interface{}
}

func (s *StaticSource) ListConfigsByType(_ context.Context, channelType ChannelType) ([]ChannelConfig, error) {
	items := s.configs[channelType]
	out := make([]ChannelConfig, len(items))
	copy(out, items)
	return out, nil
}
