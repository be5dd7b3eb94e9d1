package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type point struct {
	X, Y float64
}

func TestMemoryCacheTypedGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	want := []point{{1, 2}, {3, 4}}
	if err := mc.Set(ctx, "pts", want, time.Minute); err != nil {
		t.Fatal(err)
	}

	var got []point
	if err := mc.Get(ctx, "pts", &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1] != want[1] {
		t.Fatalf("got %v want %v", got, want)
	}

	var wrong int
	if err := mc.Get(ctx, "pts", &wrong); err == nil {
		t.Fatal("expected assign error for mismatched destination type")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var s string
	if err := mc.Get(ctx, "absent", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("want ErrCacheMiss, got %v", err)
	}

	if err := mc.Set(ctx, "gone", "v", time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := mc.Get(ctx, "gone", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expired item should miss, got %v", err)
	}
}

func TestMemoryCacheTryLock(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}
	ok, err = mc.TryLock(ctx, "lock", time.Minute)
	if err != nil || ok {
		t.Fatalf("held lock must not be reacquired: ok=%v err=%v", ok, err)
	}

	if err := mc.Unlock(ctx, "lock"); err != nil {
		t.Fatal(err)
	}
	ok, err = mc.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("released lock should be free: ok=%v err=%v", ok, err)
	}
}
