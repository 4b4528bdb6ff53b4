package trigger

import (
	"context"
	"fmt"
)

// fakeStore backs cache and dispatcher tests without a database.
type fakeStore struct {
	rows []Row

	listErr  error
	getErr   error
	usageErr error

	listCalls  int
	getCalls   int
	deleted    []string
	usage      []UsageRecord
	usageLimit int
}

func (f *fakeStore) Create(ctx context.Context, req CreateRequest, creatorID string) (Trigger, error) {
	trig, err := req.Normalize()
	if err != nil {
		return Trigger{}, err
	}
	trig.ID = fmt.Sprintf("t%d", len(f.rows)+1)
	trig.CreatorID = creatorID
	return trig, nil
}

func (f *fakeStore) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	f.deleted = append(f.deleted, pattern)
	var kept []Row
	var removed int64
	for _, row := range f.rows {
		if row.Pattern == pattern {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return removed, nil
}

func (f *fakeStore) List(ctx context.Context) ([]Row, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Row, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeStore) GetByPattern(ctx context.Context, pattern string) ([]Row, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []Row
	for _, row := range f.rows {
		if row.Pattern == pattern {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) RecordUsage(ctx context.Context, rec UsageRecord) error {
	if f.usageErr != nil {
		return f.usageErr
	}
	f.usage = append(f.usage, rec)
	return nil
}

func (f *fakeStore) ListUsage(ctx context.Context, limit int) ([]UsageRecord, error) {
	f.usageLimit = limit
	out := make([]UsageRecord, len(f.usage))
	copy(out, f.usage)
	return out, nil
}

func textRow(id, pattern string, matchType MatchType, content string) Row {
	return Row{
		ID:            id,
		Pattern:       pattern,
		MatchType:     matchType,
		CaseSensitive: true,
		Responses:     []byte(`[{"type":"text","content":"` + content + `"}]`),
	}
}
