package trigger

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchRegex   MatchType = "regex"
)

func (m MatchType) String() string {
	return string(m)
}

func ParseMatchType(raw string) (MatchType, error) {
	normalized := MatchType(strings.TrimSpace(strings.ToLower(raw)))
	switch normalized {
	case MatchExact, MatchPartial, MatchRegex:
		return normalized, nil
	}
	return "", fmt.Errorf("%w: unsupported match type: %s", ErrValidation, raw)
}

type ResponseType string

const (
	ResponseText  ResponseType = "text"
	ResponseEmbed ResponseType = "embed"
)

type Response struct {
	Type    ResponseType `json:"type"`
	Content string       `json:"content"`
}

// Trigger is one configured pattern-to-response rule. Triggers are
// never updated in place; behavioural changes are delete and recreate.
type Trigger struct {
	ID              string     `json:"id"`
	Pattern         string     `json:"pattern"`
	MatchType       MatchType  `json:"match_type"`
	CaseSensitive   bool       `json:"case_sensitive"`
	Responses       []Response `json:"responses"`
	CooldownSeconds int        `json:"cooldown_seconds"`
	Channels        []string   `json:"channels,omitempty"`
	Roles           []string   `json:"roles,omitempty"`
	Blacklist       []string   `json:"blacklist_users,omitempty"`
	Whitelist       []string   `json:"whitelist_users,omitempty"`
	CreatorID       string     `json:"creator_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Cooldown is the per-user re-fire window; zero disables it.
func (t Trigger) Cooldown() time.Duration {
	return time.Duration(t.CooldownSeconds) * time.Second
}

// Row is a trigger as it comes out of the store: scope sets and
// responses still serialized. Callers decode through the Cache.
type Row struct {
	ID              string
	Pattern         string
	MatchType       MatchType
	CaseSensitive   bool
	Responses       []byte
	CooldownSeconds int
	Channels        []byte
	Roles           []byte
	Blacklist       []byte
	Whitelist       []byte
	CreatorID       string
	CreatedAt       time.Time
}

// UsageRecord is one ledger row. The trigger reference is soft:
// deleting a trigger leaves its usage history in place.
type UsageRecord struct {
	TriggerID string    `json:"trigger_id"`
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"channel_id"`
	FiredAt   time.Time `json:"fired_at"`
}

// Message is the inbound event as the engine sees it, already
// stripped of transport detail.
type Message struct {
	Text        string
	AuthorID    string
	AuthorRoles []string
	ChannelID   string
	FromSelf    bool
}

// Firing is one trigger that matched, passed filters, and had a
// response selected for it.
type Firing struct {
	TriggerID string
	Response  Response
}

var (
	ErrValidation = errors.New("invalid trigger")
	ErrNotFound   = errors.New("trigger not found")
)

type CreateRequest struct {
	Pattern         string     `json:"pattern"`
	MatchType       string     `json:"match_type,omitempty"`
	CaseSensitive   *bool      `json:"case_sensitive,omitempty"`
	Response        string     `json:"response,omitempty"`
	Responses       []Response `json:"responses,omitempty"`
	CooldownSeconds int        `json:"cooldown_seconds,omitempty"`
	Channels        []string   `json:"channels,omitempty"`
	Roles           []string   `json:"roles,omitempty"`
	Blacklist       []string   `json:"blacklist_users,omitempty"`
	Whitelist       []string   `json:"whitelist_users,omitempty"`
}

// Normalize fills defaults and validates the request, returning the
// trigger fields the store will persist. Id and creation time are
// assigned by the store.
func (r CreateRequest) Normalize() (Trigger, error) {
	pattern := strings.TrimSpace(r.Pattern)
	if pattern == "" {
		return Trigger{}, fmt.Errorf("%w: pattern is required", ErrValidation)
	}
	matchType := MatchExact
	if strings.TrimSpace(r.MatchType) != "" {
		parsed, err := ParseMatchType(r.MatchType)
		if err != nil {
			return Trigger{}, err
		}
		matchType = parsed
	}
	responses := r.Responses
	if len(responses) == 0 && strings.TrimSpace(r.Response) != "" {
		responses = []Response{{Type: ResponseText, Content: r.Response}}
	}
	if len(responses) == 0 {
		return Trigger{}, fmt.Errorf("%w: at least one response is required", ErrValidation)
	}
	for _, resp := range responses {
		if resp.Type != ResponseText && resp.Type != ResponseEmbed {
			return Trigger{}, fmt.Errorf("%w: unsupported response type: %s", ErrValidation, resp.Type)
		}
		if strings.TrimSpace(resp.Content) == "" {
			return Trigger{}, fmt.Errorf("%w: response content is required", ErrValidation)
		}
	}
	if r.CooldownSeconds < 0 {
		return Trigger{}, fmt.Errorf("%w: cooldown must not be negative", ErrValidation)
	}
	caseSensitive := true
	if r.CaseSensitive != nil {
		caseSensitive = *r.CaseSensitive
	}
	return Trigger{
		Pattern:         pattern,
		MatchType:       matchType,
		CaseSensitive:   caseSensitive,
		Responses:       responses,
		CooldownSeconds: r.CooldownSeconds,
		Channels:        trimAll(r.Channels),
		Roles:           trimAll(r.Roles),
		Blacklist:       trimAll(r.Blacklist),
		Whitelist:       trimAll(r.Whitelist),
	}, nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	items := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		items = append(items, value)
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
