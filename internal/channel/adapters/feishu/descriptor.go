package feishu

import "github.com/autoreplyhq/autoreply/internal/channel"

func init() {
	channel.MustRegisterChannel(channel.ChannelDescriptor{
		Type:            channel.ChannelFeishu,
		DisplayName:     "Feishu",
		NormalizeConfig: channel.NormalizeFeishuConfig,
	})
}
