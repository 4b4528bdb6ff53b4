package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type cooldownKey struct {
	triggerID string
	userID    string
}

// Dispatcher runs the per-message evaluation pass: every known trigger
// is matched and filtered independently, so one message can fire any
// number of triggers (fan-out, not first-match-wins).
type Dispatcher struct {
	store    Store
	cache    *Cache
	selector *Selector
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	lastFired map[cooldownKey]time.Time
}

func NewDispatcher(log *slog.Logger, store Store, cache *Cache, selector *Selector) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if selector == nil {
		selector = NewSelector()
	}
	return &Dispatcher{
		store:     store,
		cache:     cache,
		selector:  selector,
		logger:    log.With(slog.String("component", "dispatcher")),
		now:       time.Now,
		lastFired: map[cooldownKey]time.Time{},
	}
}

// Dispatch evaluates one inbound message and returns every firing it
// produced, appending a usage record per firing. A store failure
// aborts the pass for this message only; firings already collected are
// returned alongside the error so they can still be emitted.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) ([]Firing, error) {
	if d.store == nil || d.cache == nil {
		return nil, fmt.Errorf("dispatcher not configured")
	}
	if msg.FromSelf {
		return nil, nil
	}
	rows, err := d.store.List(ctx)
	if err != nil {
		d.logger.Error("list triggers failed", slog.Any("error", err))
		return nil, err
	}
	var firings []Firing
	for _, row := range rows {
		trig, err := d.cache.Resolve(row)
		if err != nil {
			d.logger.Warn("skip undecodable trigger", slog.String("trigger_id", row.ID), slog.Any("error", err))
			continue
		}
		if !Matches(trig, msg.Text) {
			continue
		}
		if !Allowed(trig, msg) {
			continue
		}
		if d.onCooldown(trig, msg.AuthorID) {
			continue
		}
		resp := d.selector.Select(trig)
		rec := UsageRecord{
			TriggerID: trig.ID,
			UserID:    msg.AuthorID,
			ChannelID: msg.ChannelID,
			FiredAt:   d.now().UTC(),
		}
		if err := d.store.RecordUsage(ctx, rec); err != nil {
			d.logger.Error("record usage failed", slog.String("trigger_id", trig.ID), slog.Any("error", err))
			return firings, err
		}
		d.markFired(trig, msg.AuthorID, rec.FiredAt)
		firings = append(firings, Firing{TriggerID: trig.ID, Response: resp})
	}
	return firings, nil
}

func (d *Dispatcher) onCooldown(trig Trigger, userID string) bool {
	if trig.CooldownSeconds <= 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lastFired[cooldownKey{triggerID: trig.ID, userID: userID}]
	if !ok {
		return false
	}
	return d.now().Sub(last) < trig.Cooldown()
}

func (d *Dispatcher) markFired(trig Trigger, userID string, at time.Time) {
	if trig.CooldownSeconds <= 0 {
		return
	}
	d.mu.Lock()
	d.lastFired[cooldownKey{triggerID: trig.ID, userID: userID}] = at
	d.mu.Unlock()
}
