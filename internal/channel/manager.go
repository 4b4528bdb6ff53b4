package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ConfigSource lists the gateway configurations the manager should
// keep running.
type ConfigSource interface {
	ListConfigsByType(ctx context.Context, channelType ChannelType) ([]ChannelConfig, error)
}

// Middleware wraps inbound handling, outermost first.
type Middleware func(next InboundHandler) InboundHandler

type Manager struct {
	source          ConfigSource
	responder       Responder
	adapters        map[ChannelType]Adapter
	refreshInterval time.Duration
	logger          *slog.Logger
	middlewares     []Middleware

	mu      sync.Mutex
	runners map[string]*runningAdapter
}

type runningAdapter struct {
	adapter      Adapter
	config       ChannelConfig
	stop         func()
	supportsStop bool
}

func NewManager(log *slog.Logger, source ConfigSource, responder Responder) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		source:          source,
		responder:       responder,
		adapters:        map[ChannelType]Adapter{},
		refreshInterval: 30 * time.Second,
		runners:         map[string]*runningAdapter{},
		logger:          log.With(slog.String("component", "channel")),
		middlewares:     []Middleware{},
	}
}

func (m *Manager) Use(mw ...Middleware) {
	m.middlewares = append(m.middlewares, mw...)
}

func (m *Manager) RegisterAdapter(adapter Adapter) {
	if adapter == nil {
		return
	}
	m.adapters[adapter.Type()] = adapter
	m.logger.Info("adapter registered", slog.String("channel", adapter.Type().String()))
}

// Start launches the reconcile loop: known configs get a running
// adapter, removed or deactivated configs get theirs stopped.
func (m *Manager) Start(ctx context.Context) {
	m.logger.Info("manager start")
	go func() {
		m.refresh(ctx)
		ticker := time.NewTicker(m.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				m.logger.Info("manager stop")
				m.stopAll()
				return
			case <-ticker.C:
				m.refresh(ctx)
			}
		}
	}()
}

// HandleInbound feeds a message through the responder and delivers
// every reply it produced. Used directly by loopback channels that
// bypass a running adapter.
func (m *Manager) HandleInbound(ctx context.Context, cfg ChannelConfig, msg InboundMessage) error {
	return m.handleInbound(ctx, cfg, msg)
}

func (m *Manager) refresh(ctx context.Context) {
	if m.source == nil {
		return
	}
	configs := make([]ChannelConfig, 0)
	for channelType := range m.adapters {
		items, err := m.source.ListConfigsByType(ctx, channelType)
		if err != nil {
			m.logger.Error("list configs failed", slog.String("channel", channelType.String()), slog.Any("error", err))
			continue
		}
		configs = append(configs, items...)
	}
	m.reconcile(ctx, configs)
}

func (m *Manager) reconcile(ctx context.Context, configs []ChannelConfig) {
	active := map[string]ChannelConfig{}
	for _, cfg := range configs {
		if cfg.ID == "" {
			continue
		}
		status := strings.ToLower(strings.TrimSpace(cfg.Status))
		if status != "" && status != "active" {
			continue
		}
		active[cfg.ID] = cfg
		if err := m.ensureRunner(ctx, cfg); err != nil {
			m.logger.Error("adapter start failed", slog.String("channel", cfg.ChannelType.String()), slog.String("config_id", cfg.ID), slog.Any("error", err))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, runner := range m.runners {
		if _, ok := active[id]; ok {
			continue
		}
		if runner.supportsStop && runner.stop != nil {
			m.logger.Info("adapter stop", slog.String("channel", runner.config.ChannelType.String()), slog.String("config_id", id))
			runner.stop()
		}
		delete(m.runners, id)
	}
}

func (m *Manager) ensureRunner(ctx context.Context, cfg ChannelConfig) error {
	m.mu.Lock()
	runner := m.runners[cfg.ID]
	m.mu.Unlock()

	if runner != nil {
		if runner.config.UpdatedAt.Equal(cfg.UpdatedAt) {
			return nil
		}
		if !runner.supportsStop || runner.stop == nil {
			m.logger.Warn("adapter restart skipped", slog.String("channel", cfg.ChannelType.String()), slog.String("config_id", cfg.ID))
			return nil
		}
		m.logger.Info("adapter restart", slog.String("channel", cfg.ChannelType.String()), slog.String("config_id", cfg.ID))
		runner.stop()
		m.mu.Lock()
		delete(m.runners, cfg.ID)
		m.mu.Unlock()
	}

	adapter := m.adapters[cfg.ChannelType]
	if adapter == nil {
		return fmt.Errorf("unsupported channel type: %s", cfg.ChannelType)
	}
	m.logger.Info("adapter start", slog.String("channel", cfg.ChannelType.String()), slog.String("config_id", cfg.ID))

	handler := m.handleInbound
	for i := len(m.middlewares) - 1; i >= 0; i-- {
		handler = m.middlewares[i](handler)
	}

	started, err := adapter.Start(ctx, cfg, handler)
	if err != nil {
		return err
	}
	entry := &runningAdapter{
		adapter:      adapter,
		config:       cfg,
		stop:         started.Stop,
		supportsStop: started.SupportsStop,
	}
	m.mu.Lock()
	m.runners[cfg.ID] = entry
	m.mu.Unlock()
	return nil
}

func (m *Manager) stopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, runner := range m.runners {
		if runner.supportsStop && runner.stop != nil {
			m.logger.Info("adapter stop", slog.String("channel", runner.config.ChannelType.String()), slog.String("config_id", id))
			runner.stop()
		}
		delete(m.runners, id)
	}
}

func (m *Manager) handleInbound(ctx context.Context, cfg ChannelConfig, msg InboundMessage) error {
	if m.responder == nil {
		return fmt.Errorf("channel responder not configured")
	}
	replies, err := m.responder.Respond(ctx, cfg, msg)
	if err != nil {
		m.logger.Error("inbound processing failed", slog.String("channel", msg.Channel.String()), slog.Any("error", err))
		return err
	}
	if len(replies) == 0 {
		return nil
	}
	adapter := m.adapters[msg.Channel]
	if adapter == nil {
		return fmt.Errorf("unsupported channel type: %s", msg.Channel)
	}
	var firstErr error
	for _, reply := range replies {
		if strings.TrimSpace(reply.Text) == "" {
			continue
		}
		if strings.TrimSpace(reply.To) == "" {
			reply.To = strings.TrimSpace(msg.ReplyTo)
		}
		if reply.To == "" {
			m.logger.Warn("reply target missing", slog.String("channel", msg.Channel.String()))
			continue
		}
		if err := m.sendReply(ctx, adapter, cfg, msg.Channel, reply); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// sendReply retries transient send failures with a linear backoff.
func (m *Manager) sendReply(ctx context.Context, adapter Adapter, cfg ChannelConfig, channelType ChannelType, reply OutboundMessage) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		err := adapter.Send(ctx, cfg, reply)
		if err == nil {
			m.logger.Info("send reply", slog.String("channel", channelType.String()))
			return nil
		}
		lastErr = err
		m.logger.Warn("send reply retry",
			slog.String("channel", channelType.String()),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
		}
	}
	return fmt.Errorf("send reply failed after retries: %w", lastErr)
}
