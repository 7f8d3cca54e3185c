//go:build !integration

package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"content-paywall/internal/domain"
	"content-paywall/internal/domain/model"
)

// stubCache implements redis.RedisClient over a plain map.
type stubCache struct {
	store map[string]string
	sets  int
}

func newStubCache() *stubCache { return &stubCache{store: make(map[string]string)} }

func (s *stubCache) Ping(ctx context.Context) error { return nil }

func (s *stubCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("unexpected value type")
	}
	s.store[key] = string(b)
	s.sets++
	return nil
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.store[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return v, nil
}

func (s *stubCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.store, k)
	}
	return nil
}

func (s *stubCache) Close() error { return nil }

type stubLookup struct {
	ref   *model.ContentRef
	err   error
	calls int
}

func (s *stubLookup) FindContent(ctx context.Context, contentID string) (*model.ContentRef, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.ref
	return &cp, nil
}

func TestCachedLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("miss fills the cache, hit skips the origin", func(t *testing.T) {
		inner := &stubLookup{ref: &model.ContentRef{ContentID: "c1", Price: 100, Currency: "UAH"}}
		cache := newStubCache()
		lookup := NewCachedLookup(inner, cache, time.Minute)

		first, err := lookup.FindContent(ctx, "c1")
		if err != nil {
			t.Fatalf("first lookup: %v", err)
		}
		if inner.calls != 1 || cache.sets != 1 {
			t.Fatalf("expected one origin call and one cache fill, got %d/%d", inner.calls, cache.sets)
		}

		second, err := lookup.FindContent(ctx, "c1")
		if err != nil {
			t.Fatalf("second lookup: %v", err)
		}
		if inner.calls != 1 {
			t.Errorf("second lookup must be served from cache, origin calls: %d", inner.calls)
		}
		if second.Price != first.Price || second.Currency != first.Currency {
			t.Errorf("cached row differs: %+v vs %+v", second, first)
		}
	})

	t.Run("origin errors are not cached", func(t *testing.T) {
		inner := &stubLookup{err: domain.ErrContentNotFound}
		cache := newStubCache()
		lookup := NewCachedLookup(inner, cache, time.Minute)

		if _, err := lookup.FindContent(ctx, "nope"); !errors.Is(err, domain.ErrContentNotFound) {
			t.Fatalf("expected ErrContentNotFound, got %v", err)
		}
		if cache.sets != 0 {
			t.Errorf("errors must not be written to the cache, sets=%d", cache.sets)
		}
		if _, err := lookup.FindContent(ctx, "nope"); !errors.Is(err, domain.ErrContentNotFound) {
			t.Fatalf("expected ErrContentNotFound again, got %v", err)
		}
		if inner.calls != 2 {
			t.Errorf("each miss must hit the origin, calls=%d", inner.calls)
		}
	})

	t.Run("corrupt cache entry falls back to the origin", func(t *testing.T) {
		inner := &stubLookup{ref: &model.ContentRef{ContentID: "c1", Price: 100, Currency: "UAH"}}
		cache := newStubCache()
		cache.store["content:c1"] = "{not json"
		lookup := NewCachedLookup(inner, cache, time.Minute)

		ref, err := lookup.FindContent(ctx, "c1")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if ref.Price != 100 || inner.calls != 1 {
			t.Errorf("expected origin fallback, got %+v calls=%d", ref, inner.calls)
		}
	})
}
