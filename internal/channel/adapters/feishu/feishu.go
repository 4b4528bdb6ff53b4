package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"

	"github.com/autoreplyhq/autoreply/internal/channel"
	"github.com/autoreplyhq/autoreply/internal/channel/adapters/common"
)

type FeishuAdapter struct {
	logger *slog.Logger
}

func NewFeishuAdapter(log *slog.Logger) *FeishuAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &FeishuAdapter{
		logger: log.With(slog.String("adapter", "feishu")),
	}
}

func (a *FeishuAdapter) Type() channel.ChannelType {
	return channel.ChannelFeishu
}

func (a *FeishuAdapter) Start(ctx context.Context, cfg channel.ChannelConfig, handler channel.InboundHandler) (channel.AdapterRunner, error) {
	a.logger.Info("start", slog.String("config_id", cfg.ID))
	feishuCfg, err := channel.ParseFeishuConfig(cfg.Credentials)
	if err != nil {
		a.logger.Error("decode config failed", slog.String("config_id", cfg.ID), slog.Any("error", err))
		return channel.AdapterRunner{}, err
	}
	eventDispatcher := dispatcher.NewEventDispatcher(
		feishuCfg.VerificationToken,
		feishuCfg.EncryptKey,
	)
	eventDispatcher.OnP2MessageReceiveV1(func(_ context.Context, event *larkim.P2MessageReceiveV1) error {
		msg := extractInbound(event)
		if msg.Text == "" {
			return nil
		}
		msg.BotID = cfg.BotID
		a.logger.Info(
			"inbound received",
			slog.String("config_id", cfg.ID),
			slog.String("chat_type", msg.ChatType),
			slog.String("text", common.SummarizeText(msg.Text)),
		)
		go func() {
			if err := handler(ctx, cfg, msg); err != nil {
				a.logger.Error("handle inbound failed", slog.String("config_id", cfg.ID), slog.Any("error", err))
			}
		}()
		return nil
	})
	eventDispatcher.OnP2MessageReadV1(func(_ context.Context, _ *larkim.P2MessageReadV1) error {
		return nil
	})

	client := larkws.NewClient(
		feishuCfg.AppID,
		feishuCfg.AppSecret,
		larkws.WithEventHandler(eventDispatcher),
		larkws.WithLogger(larkLogger{logger: a.logger}),
		larkws.WithLogLevel(larkcore.LogLevelWarn),
	)

	go func() {
		if err := client.Start(ctx); err != nil {
			a.logger.Error("client start failed", slog.String("config_id", cfg.ID), slog.Any("error", err))
		}
	}()

	return channel.AdapterRunner{
		Stop:         func() {},
		SupportsStop: false,
	}, nil
}

func (a *FeishuAdapter) Send(ctx context.Context, cfg channel.ChannelConfig, msg channel.OutboundMessage) error {
	feishuCfg, err := channel.ParseFeishuConfig(cfg.Credentials)
	if err != nil {
		a.logger.Error("decode config failed", slog.String("config_id", cfg.ID), slog.Any("error", err))
		return err
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return fmt.Errorf("message is required")
	}
	receiveID, receiveType, err := resolveReceiveID(strings.TrimSpace(msg.To))
	if err != nil {
		return err
	}
	msgType, content, err := buildContent(text, msg.Embed)
	if err != nil {
		return err
	}
	client := lark.NewClient(feishuCfg.AppID, feishuCfg.AppSecret)
	body := larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(receiveID).
		MsgType(msgType).
		Content(content).
		Uuid(uuid.NewString()).
		Build()
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveType).
		Body(body).
		Build()
	resp, err := client.Im.V1.Message.Create(ctx, req)
	if err != nil {
		a.logger.Error("send failed", slog.String("config_id", cfg.ID), slog.Any("error", err))
		return err
	}
	if resp == nil || !resp.Success() {
		code := 0
		respMsg := ""
		if resp != nil {
			code = resp.Code
			respMsg = resp.Msg
		}
		a.logger.Error("send failed", slog.String("config_id", cfg.ID), slog.Int("code", code), slog.String("msg", respMsg))
		return fmt.Errorf("feishu send failed")
	}
	a.logger.Info("send success", slog.String("config_id", cfg.ID))
	return nil
}

// buildContent renders embed responses as an interactive card and
// everything else as plain text.
func buildContent(text string, embed bool) (string, string, error) {
	if !embed {
		payload, err := json.Marshal(map[string]string{"text": text})
		if err != nil {
			return "", "", err
		}
		return larkim.MsgTypeText, string(payload), nil
	}
	card := map[string]interface{}{
		"config": map[string]interface{}{"wide_screen_mode": true},
		"elements": []interface{}{
			map[string]interface{}{
				"tag":  "div",
				"text": map[string]interface{}{"tag": "lark_md", "content": text},
			},
		},
	}
	payload, err := json.Marshal(card)
	if err != nil {
		return "", "", err
	}
	return larkim.MsgTypeInteractive, string(payload), nil
}

func extractInbound(event *larkim.P2MessageReceiveV1) channel.InboundMessage {
	if event == nil || event.Event == nil || event.Event.Message == nil {
		return channel.InboundMessage{Channel: channel.ChannelFeishu}
	}
	message := event.Event.Message
	if message.MessageType == nil || *message.MessageType != larkim.MsgTypeText {
		return channel.InboundMessage{Channel: channel.ChannelFeishu}
	}
	var payload struct {
		Text string `json:"text"`
	}
	if message.Content != nil {
		_ = json.Unmarshal([]byte(*message.Content), &payload)
	}
	senderID, senderOpenID, senderType := "", "", ""
	if event.Event.Sender != nil {
		if event.Event.Sender.SenderType != nil {
			senderType = strings.TrimSpace(*event.Event.Sender.SenderType)
		}
		if event.Event.Sender.SenderId != nil {
			if event.Event.Sender.SenderId.UserId != nil {
				senderID = strings.TrimSpace(*event.Event.Sender.SenderId.UserId)
			}
			if event.Event.Sender.SenderId.OpenId != nil {
				senderOpenID = strings.TrimSpace(*event.Event.Sender.SenderId.OpenId)
			}
		}
	}
	chatID := ""
	chatType := ""
	if message.ChatId != nil {
		chatID = strings.TrimSpace(*message.ChatId)
	}
	if message.ChatType != nil {
		chatType = strings.TrimSpace(*message.ChatType)
	}
	authorID := senderOpenID
	if authorID == "" {
		authorID = senderID
	}
	replyTo := authorID
	if chatType != "" && chatType != "p2p" && chatID != "" {
		replyTo = "chat_id:" + chatID
	}
	return channel.InboundMessage{
		Channel:  channel.ChannelFeishu,
		Text:     strings.TrimSpace(payload.Text),
		UserID:   authorID,
		ChatID:   chatID,
		ChatType: chatType,
		ReplyTo:  replyTo,
		FromSelf: strings.EqualFold(senderType, "app"),
	}
}

func resolveReceiveID(raw string) (string, string, error) {
	if raw == "" {
		return "", "", fmt.Errorf("feishu target is required")
	}
	if strings.HasPrefix(raw, "open_id:") {
		return strings.TrimPrefix(raw, "open_id:"), larkim.ReceiveIdTypeOpenId, nil
	}
	if strings.HasPrefix(raw, "user_id:") {
		return strings.TrimPrefix(raw, "user_id:"), larkim.ReceiveIdTypeUserId, nil
	}
	if strings.HasPrefix(raw, "chat_id:") {
		return strings.TrimPrefix(raw, "chat_id:"), larkim.ReceiveIdTypeChatId, nil
	}
	return raw, larkim.ReceiveIdTypeOpenId, nil
}

// larkLogger bridges the SDK's logger onto slog.
type larkLogger struct {
	logger *slog.Logger
}

func (l larkLogger) Debug(_ context.Context, args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l larkLogger) Info(_ context.Context, args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l larkLogger) Warn(_ context.Context, args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l larkLogger) Error(_ context.Context, args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}
