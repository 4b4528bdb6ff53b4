package trigger

import (
	"context"
	"testing"
)

func TestCacheResolveMemoizesDecode(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	cache, err := NewCache(store, 8)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	row := textRow("t1", "hello", MatchExact, "hi!")
	first, err := cache.Resolve(row)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.Pattern != "hello" || len(first.Responses) != 1 {
		t.Fatalf("unexpected trigger: %+v", first)
	}

	// A second resolve for the same id must come from the cache: the
	// now-corrupt payload would fail a fresh decode.
	row.Responses = []byte(`not json`)
	second, err := cache.Resolve(row)
	if err != nil {
		t.Fatalf("expected cached entry, got %v", err)
	}
	if second.Responses[0].Content != "hi!" {
		t.Fatalf("unexpected cached trigger: %+v", second)
	}
}

func TestCacheGetByPatternReadsThrough(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: []Row{textRow("t1", "hello", MatchExact, "hi!")}}
	cache, err := NewCache(store, 8)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	items, err := cache.GetByPattern(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 1 || items[0].ID != "t1" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if store.getCalls != 1 {
		t.Fatalf("expected one store read, got %d", store.getCalls)
	}

	if _, err := cache.GetByPattern(context.Background(), "hello"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.getCalls != 1 {
		t.Fatalf("second lookup must be served from cache, store reads: %d", store.getCalls)
	}
}

func TestCacheGetByPatternDuplicatePatterns(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: []Row{
		textRow("t1", "hello", MatchExact, "hi!"),
		textRow("t2", "hello", MatchPartial, "hey!"),
	}}
	cache, err := NewCache(store, 8)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	items, err := cache.GetByPattern(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected both triggers for the shared pattern, got %d", len(items))
	}
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: []Row{textRow("t1", "hello", MatchExact, "hi!")}}
	cache, err := NewCache(store, 8)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := cache.GetByPattern(context.Background(), "hello"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cache.Invalidate("hello")
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
	if _, err := cache.GetByPattern(context.Background(), "hello"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.getCalls != 2 {
		t.Fatalf("invalidate must force a store read, got %d", store.getCalls)
	}
}

func TestCacheInvalidateUnknownPattern(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(&fakeStore{}, 8)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cache.Invalidate("missing")
}

func TestCacheDeleteRemovesStoreAndCache(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: []Row{
		textRow("t1", "hello", MatchExact, "hi!"),
		textRow("t2", "hello", MatchExact, "hey!"),
		textRow("t3", "other", MatchExact, "yo"),
	}}
	cache, err := NewCache(store, 8)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := cache.GetByPattern(context.Background(), "hello"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	deleted, err := cache.Delete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted rows, got %d", deleted)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "hello" {
		t.Fatalf("store delete not observed: %+v", store.deleted)
	}

	items, err := cache.GetByPattern(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("deleted pattern must resolve to nothing, got %+v", items)
	}
}

func TestCacheHonorsCapacity(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(&fakeStore{}, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := cache.Resolve(textRow("t1", "a", MatchExact, "x")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := cache.Resolve(textRow("t2", "b", MatchExact, "y")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected capacity bound, got %d entries", cache.Len())
	}
}
