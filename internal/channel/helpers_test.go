package channel

import "testing"

func TestParseChannelType(t *testing.T) {
	t.Parallel()

	got, err := ParseChannelType(" Telegram ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != ChannelTelegram {
		t.Fatalf("unexpected channel type: %s", got)
	}

	if _, err := ParseChannelType("unknown"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestParseTelegramConfig(t *testing.T) {
	t.Parallel()

	cfg, err := parseTelegramConfig(map[string]interface{}{
		"bot_token": " token ",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.BotToken != "token" {
		t.Fatalf("token not trimmed: %q", cfg.BotToken)
	}

	if _, err := parseTelegramConfig(map[string]interface{}{}); err == nil {
		t.Fatalf("expected error for missing token")
	}
}

func TestParseFeishuConfig(t *testing.T) {
	t.Parallel()

	cfg, err := parseFeishuConfig(map[string]interface{}{
		"appId":     "app",
		"appSecret": "secret",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AppID != "app" || cfg.AppSecret != "secret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := parseFeishuConfig(map[string]interface{}{"appId": "app"}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestReadString(t *testing.T) {
	t.Parallel()

	raw := map[string]interface{}{
		"bot_token": 123,
	}
	got := readString(raw, "bot_token")
	if got != "123" {
		t.Fatalf("unexpected value: %s", got)
	}
}

func TestNormalizeChannelConfigUnknownType(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeChannelConfig(ChannelType("matrix"), nil); err == nil {
		t.Fatalf("expected error for unregistered channel")
	}
}
