package trigger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the durable side of the registry. Pattern is a secondary,
// non-unique key: several triggers may share one pattern, and
// pattern-keyed reads return all of them.
type Store interface {
	Create(ctx context.Context, req CreateRequest, creatorID string) (Trigger, error)
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
	List(ctx context.Context) ([]Row, error)
	GetByPattern(ctx context.Context, pattern string) ([]Row, error)
	RecordUsage(ctx context.Context, rec UsageRecord) error
	ListUsage(ctx context.Context, limit int) ([]UsageRecord, error)
}

// Service implements Store on top of a pgx pool.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

const triggerColumns = "id, pattern, match_type, case_sensitive, responses, cooldown_seconds, channels, roles, blacklist_users, whitelist_users, creator_id, created_at"

func (s *Service) Create(ctx context.Context, req CreateRequest, creatorID string) (Trigger, error) {
	if s.pool == nil {
		return Trigger{}, fmt.Errorf("trigger store not configured")
	}
	trig, err := req.Normalize()
	if err != nil {
		return Trigger{}, err
	}
	trig.ID = uuid.NewString()
	trig.CreatorID = strings.TrimSpace(creatorID)
	trig.CreatedAt = time.Now().UTC()

	responses, err := encodeJSON(trig.Responses)
	if err != nil {
		return Trigger{}, err
	}
	channels, err := encodeStringSet(trig.Channels)
	if err != nil {
		return Trigger{}, err
	}
	roles, err := encodeStringSet(trig.Roles)
	if err != nil {
		return Trigger{}, err
	}
	blacklist, err := encodeStringSet(trig.Blacklist)
	if err != nil {
		return Trigger{}, err
	}
	whitelist, err := encodeStringSet(trig.Whitelist)
	if err != nil {
		return Trigger{}, err
	}
	creator := pgtype.Text{String: trig.CreatorID, Valid: trig.CreatorID != ""}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO triggers (`+triggerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		trig.ID,
		trig.Pattern,
		trig.MatchType.String(),
		trig.CaseSensitive,
		responses,
		trig.CooldownSeconds,
		channels,
		roles,
		blacklist,
		whitelist,
		creator,
		trig.CreatedAt,
	)
	if err != nil {
		return Trigger{}, fmt.Errorf("insert trigger: %w", err)
	}
	return trig, nil
}

// DeleteByPattern removes every persisted trigger with the given
// pattern. Deleting an unknown pattern is not an error.
func (s *Service) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	if s.pool == nil {
		return 0, fmt.Errorf("trigger store not configured")
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM triggers WHERE pattern = $1`, pattern)
	if err != nil {
		return 0, fmt.Errorf("delete trigger: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Service) List(ctx context.Context) ([]Row, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("trigger store not configured")
	}
	rows, err := s.pool.Query(ctx, `SELECT `+triggerColumns+` FROM triggers ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list triggers: %w", err)
	}
	defer rows.Close()
	return scanTriggerRows(rows)
}

func (s *Service) GetByPattern(ctx context.Context, pattern string) ([]Row, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("trigger store not configured")
	}
	rows, err := s.pool.Query(ctx, `SELECT `+triggerColumns+` FROM triggers WHERE pattern = $1 ORDER BY created_at`, pattern)
	if err != nil {
		return nil, fmt.Errorf("get trigger: %w", err)
	}
	defer rows.Close()
	return scanTriggerRows(rows)
}

func (s *Service) RecordUsage(ctx context.Context, rec UsageRecord) error {
	if s.pool == nil {
		return fmt.Errorf("trigger store not configured")
	}
	firedAt := rec.FiredAt
	if firedAt.IsZero() {
		firedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trigger_usage (trigger_id, user_id, channel_id, fired_at)
		VALUES ($1, $2, $3, $4)`,
		rec.TriggerID,
		rec.UserID,
		rec.ChannelID,
		firedAt,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

func (s *Service) ListUsage(ctx context.Context, limit int) ([]UsageRecord, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("trigger store not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT trigger_id, user_id, channel_id, fired_at
		FROM trigger_usage ORDER BY fired_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()
	items := make([]UsageRecord, 0, limit)
	for rows.Next() {
		var rec UsageRecord
		var firedAt pgtype.Timestamptz
		if err := rows.Scan(&rec.TriggerID, &rec.UserID, &rec.ChannelID, &firedAt); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		if firedAt.Valid {
			rec.FiredAt = firedAt.Time
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	return items, nil
}

func scanTriggerRows(rows pgx.Rows) ([]Row, error) {
	items := make([]Row, 0)
	for rows.Next() {
		var row Row
		var matchType string
		var creator pgtype.Text
		var createdAt pgtype.Timestamptz
		err := rows.Scan(
			&row.ID,
			&row.Pattern,
			&matchType,
			&row.CaseSensitive,
			&row.Responses,
			&row.CooldownSeconds,
			&row.Channels,
			&row.Roles,
			&row.Blacklist,
			&row.Whitelist,
			&creator,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trigger: %w", err)
		}
		row.MatchType = MatchType(matchType)
		if creator.Valid {
			row.CreatorID = creator.String
		}
		if createdAt.Valid {
			row.CreatedAt = createdAt.Time
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan triggers: %w", err)
	}
	return items, nil
}
