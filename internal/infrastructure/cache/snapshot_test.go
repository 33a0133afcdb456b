package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSnapshot_CachesWithinTTL(t *testing.T) {
	fetches := 0
	s := New(5*time.Minute, func(_ context.Context) ([]string, error) {
		fetches++
		return []string{"a", "b"}, nil
	})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	s.now = func() time.Time { return now }

	if _, err := s.Get(context.Background()); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetches)
	}

	// One millisecond before expiry: still served from cache.
	now = base.Add(5*time.Minute - time.Millisecond)
	if _, err := s.Get(context.Background()); err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if fetches != 1 {
		t.Errorf("expected cached value at ttl-1ms, got %d fetches", fetches)
	}

	// One millisecond past expiry: fresh fetch.
	now = base.Add(5*time.Minute + time.Millisecond)
	if _, err := s.Get(context.Background()); err != nil {
		t.Fatalf("refresh get: %v", err)
	}
	if fetches != 2 {
		t.Errorf("expected fresh fetch at ttl+1ms, got %d fetches", fetches)
	}
}

func TestSnapshot_InvalidateForcesRefetch(t *testing.T) {
	fetches := 0
	s := New(time.Hour, func(_ context.Context) (int, error) {
		fetches++
		return fetches, nil
	})

	v, _ := s.Get(context.Background())
	if v != 1 {
		t.Fatalf("expected 1, got %d", v)
	}

	s.Invalidate()

	v, _ = s.Get(context.Background())
	if v != 2 {
		t.Errorf("expected refetched value 2 after invalidate, got %d", v)
	}
}

func TestSnapshot_FetchErrorPropagates(t *testing.T) {
	wantErr := errors.New("upstream down")
	s := New(time.Minute, func(_ context.Context) ([]int, error) {
		return nil, wantErr
	})

	if _, err := s.Get(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("expected fetch error, got %v", err)
	}
	if _, ok := s.Age(); ok {
		t.Error("failed fetch must not populate the cache")
	}
}

func TestSnapshot_DefaultTTL(t *testing.T) {
	s := New(0, func(_ context.Context) (int, error) { return 0, nil })
	if s.ttl != defaultTTL {
		t.Errorf("expected default ttl %v, got %v", defaultTTL, s.ttl)
	}
}
