package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestStore(t *testing.T) (*LastViewedStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewLastViewedStore("redis://"+s.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("không tạo được last-viewed store: %v", err)
	}
	return store, s
}

func TestTouchAndGet(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	if err := store.Touch(ctx, "user-1", "group-1", at); err != nil {
		t.Fatalf("Touch lỗi: %v", err)
	}

	got, err := store.Get(ctx, "user-1", "group-1")
	if err != nil {
		t.Fatalf("Get lỗi: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("mốc last-viewed sai: got %v, want %v", got, at)
	}
}

func TestGetMissingReturnsZeroTime(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	got, err := store.Get(context.Background(), "user-1", "group-khac")
	if err != nil {
		t.Fatalf("Get lỗi: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("group chưa xem phải trả về zero time, got %v", got)
	}
}

func TestTouchIsScopedPerUserAndGroup(t *testing.T) {
	store, s := setupTestStore(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	at := time.Now().Truncate(time.Millisecond)

	if err := store.Touch(ctx, "user-1", "group-1", at); err != nil {
		t.Fatalf("Touch lỗi: %v", err)
	}

	// User khác không thấy mốc của user-1
	got, err := store.Get(ctx, "user-2", "group-1")
	if err != nil {
		t.Fatalf("Get lỗi: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("mốc last-viewed bị lộ sang user khác: %v", got)
	}
}

func TestExpiredEntryIsDropped(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()
	store, err := NewLastViewedStore("redis://"+s.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("không tạo được last-viewed store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Touch(ctx, "user-1", "group-1", time.Now()); err != nil {
		t.Fatalf("Touch lỗi: %v", err)
	}

	// Tua nhanh quá TTL trong miniredis
	s.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "user-1", "group-1")
	if err != nil {
		t.Fatalf("Get lỗi: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("entry hết TTL phải biến mất, got %v", got)
	}
}
