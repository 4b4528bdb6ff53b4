package channel

import (
	"encoding/json"
	"fmt"
	"strings"
)

type TelegramConfig struct {
	BotToken string
}

type FeishuConfig struct {
	AppID             string
	AppSecret         string
	EncryptKey        string
	VerificationToken string
}

// NormalizeChannelConfig validates raw credentials through the
// registered descriptor for the channel type.
func NormalizeChannelConfig(channelType ChannelType, raw map[string]interface{}) (map[string]interface{}, error) {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	desc, ok := GetChannelDescriptor(channelType)
	if !ok {
		return nil, fmt.Errorf("unsupported channel type: %s", channelType)
	}
	if desc.NormalizeConfig == nil {
		return raw, nil
	}
	return desc.NormalizeConfig(raw)
}

func NormalizeTelegramConfig(raw map[string]interface{}) (map[string]interface{}, error) {
	cfg, err := parseTelegramConfig(raw)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"botToken": cfg.BotToken,
	}, nil
}

func NormalizeFeishuConfig(raw map[string]interface{}) (map[string]interface{}, error) {
	cfg, err := parseFeishuConfig(raw)
	if err != nil {
		return nil, err
	}
	result := map[string]interface{}{
		"appId":     cfg.AppID,
		"appSecret": cfg.AppSecret,
	}
	if cfg.EncryptKey != "" {
		result["encryptKey"] = cfg.EncryptKey
	}
	if cfg.VerificationToken != "" {
		result["verificationToken"] = cfg.VerificationToken
	}
	return result, nil
}

func ParseTelegramConfig(raw map[string]interface{}) (TelegramConfig, error) {
	return parseTelegramConfig(raw)
}

func ParseFeishuConfig(raw map[string]interface{}) (FeishuConfig, error) {
	return parseFeishuConfig(raw)
}

func parseTelegramConfig(raw map[string]interface{}) (TelegramConfig, error) {
	token := strings.TrimSpace(readString(raw, "botToken", "bot_token"))
	if token == "" {
		return TelegramConfig{}, fmt.Errorf("telegram botToken is required")
	}
	return TelegramConfig{BotToken: token}, nil
}

func parseFeishuConfig(raw map[string]interface{}) (FeishuConfig, error) {
	appID := strings.TrimSpace(readString(raw, "appId", "app_id"))
	appSecret := strings.TrimSpace(readString(raw, "appSecret", "app_secret"))
	encryptKey := strings.TrimSpace(readString(raw, "encryptKey", "encrypt_key"))
	verificationToken := strings.TrimSpace(readString(raw, "verificationToken", "verification_token"))
	if appID == "" || appSecret == "" {
		return FeishuConfig{}, fmt.Errorf("feishu appId and appSecret are required")
	}
	return FeishuConfig{
		AppID:             appID,
		AppSecret:         appSecret,
		EncryptKey:        encryptKey,
		VerificationToken: verificationToken,
	}, nil
}

func readString(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if value, ok := raw[key]; ok {
			switch v := value.(type) {
			case string:
				return v
			default:
				encoded, err := json.Marshal(v)
				if err == nil {
					return strings.Trim(string(encoded), "\"")
				}
			}
		}
	}
	return ""
}
