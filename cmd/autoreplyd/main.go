package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/autoreplyhq/autoreply/internal/auth"
	"github.com/autoreplyhq/autoreply/internal/channel"
	"github.com/autoreplyhq/autoreply/internal/channel/adapters/feishu"
	"github.com/autoreplyhq/autoreply/internal/channel/adapters/local"
	"github.com/autoreplyhq/autoreply/internal/channel/adapters/telegram"
	"github.com/autoreplyhq/autoreply/internal/config"
	"github.com/autoreplyhq/autoreply/internal/db"
	"github.com/autoreplyhq/autoreply/internal/handlers"
	"github.com/autoreplyhq/autoreply/internal/router"
	"github.com/autoreplyhq/autoreply/internal/trigger"
)

func main() {
	configPath := flag.String("config", "autoreply.yaml", "path to the config file")
	mintUser := flag.String("mint-token", "", "mint an API token for the given user id and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of a minted token")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config failed", slog.Any("error", err))
		os.Exit(1)
	}

	if *mintUser != "" {
		token, err := mintToken(*mintUser, cfg.JWTSecret, *tokenTTL)
		if err != nil {
			slog.Error("mint token failed", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect database failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Error("migrate failed", slog.Any("error", err))
		os.Exit(1)
	}

	store := trigger.NewService(pool)
	cache, err := trigger.NewCache(store, cfg.CacheCapacity)
	if err != nil {
		logger.Error("build cache failed", slog.Any("error", err))
		os.Exit(1)
	}
	dispatcher := trigger.NewDispatcher(logger, store, cache, trigger.NewSelector())
	responder := router.NewTriggerResponder(logger, dispatcher)

	entries := make([]channel.StaticEntry, 0, len(cfg.Channels))
	for _, item := range cfg.Channels {
		entries = append(entries, channel.StaticEntry{
			Type:        item.Type,
			Credentials: item.Credentials,
		})
	}
	source, err := channel.NewStaticSource(cfg.BotID, entries)
	if err != nil {
		logger.Error("load channel configs failed", slog.Any("error", err))
		os.Exit(1)
	}

	hub := channel.NewSessionHub()
	manager := channel.NewManager(logger, source, responder)
	manager.RegisterAdapter(telegram.NewTelegramAdapter(logger))
	manager.RegisterAdapter(feishu.NewFeishuAdapter(logger))
	manager.RegisterAdapter(local.NewCLIAdapter(hub))
	manager.RegisterAdapter(local.NewWebAdapter(hub))
	manager.Use(stampBotID(cfg.BotID))
	manager.Start(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(auth.JWTMiddleware(cfg.JWTSecret, func(c echo.Context) bool {
		return c.Path() == "/healthz"
	}))
	handlers.NewTriggerHandler(store, cache).Register(e)
	handlers.NewUsageHandler(store).Register(e)
	handlers.NewChannelHandler().Register(e)
	handlers.NewChatHandler(manager, hub,
		channel.ChannelConfig{
			ID:          "web-local",
			BotID:       cfg.BotID,
			ChannelType: channel.ChannelWeb,
			Status:      "active",
		},
		channel.ChannelConfig{
			ID:          "cli-local",
			BotID:       cfg.BotID,
			ChannelType: channel.ChannelCLI,
			Status:      "active",
		},
	).Register(e)
	handlers.NewHealthHandler().Register(e)

	go func() {
		if err := e.Start(cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.Any("error", err))
			stop()
		}
	}()
	logger.Info("autoreply started", slog.String("listen", cfg.Listen))

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
}

// mintToken signs an API token for the authoring endpoints.
func mintToken(userID, secret string, ttl time.Duration) (string, error) {
	token, _, err := auth.GenerateToken(userID, secret, ttl)
	return token, err
}

// stampBotID makes sure every inbound message carries the configured
// bot identity before the responder sees it.
func stampBotID(botID string) channel.Middleware {
	return func(next channel.InboundHandler) channel.InboundHandler {
		return func(ctx context.Context, cfg channel.ChannelConfig, msg channel.InboundMessage) error {
			if strings.TrimSpace(msg.BotID) == "" {
				msg.BotID = botID
			}
			return next(ctx, cfg, msg)
		}
	}
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
}
