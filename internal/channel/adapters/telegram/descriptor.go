package telegram

import "github.com/autoreplyhq/autoreply/internal/channel"

func init() {
	channel.MustRegisterChannel(channel.ChannelDescriptor{
		Type:            channel.ChannelTelegram,
		DisplayName:     "Telegram",
		NormalizeConfig: channel.NormalizeTelegramConfig,
	})
}
