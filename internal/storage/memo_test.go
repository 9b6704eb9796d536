package storage

import (
	"errors"
	"testing"
	"time"
)

func TestMemoFillsOncePerTTL(t *testing.T) {
	m := NewMemo[string](time.Hour)
	calls := 0
	fill := func() (string, error) {
		calls++
		return "v", nil
	}

	for i := 0; i < 5; i++ {
		v, err := m.Get(fill)
		if err != nil || v != "v" {
			t.Fatalf("Get = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("fill called %d times within ttl, want 1", calls)
	}
}

func TestMemoRefillsAfterExpiry(t *testing.T) {
	m := NewMemo[int](10 * time.Millisecond)
	calls := 0
	fill := func() (int, error) {
		calls++
		return calls, nil
	}

	if v, _ := m.Get(fill); v != 1 {
		t.Fatalf("first Get = %d, want 1", v)
	}
	time.Sleep(20 * time.Millisecond)
	if v, _ := m.Get(fill); v != 2 {
		t.Fatalf("Get after expiry = %d, want refilled 2", v)
	}
}

func TestMemoKeepsStaleValueOnError(t *testing.T) {
	m := NewMemo[string](10 * time.Millisecond)

	if _, err := m.Get(func() (string, error) { return "old", nil }); err != nil {
		t.Fatalf("first Get error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	// 刷新失败但有旧值：返回旧值而不是错误
	v, err := m.Get(func() (string, error) { return "", errors.New("upstream down") })
	if err != nil || v != "old" {
		t.Fatalf("Get = %q, %v; want stale %q with nil error", v, err, "old")
	}
}

func TestMemoErrorWithoutValue(t *testing.T) {
	m := NewMemo[string](time.Hour)
	wantErr := errors.New("boom")

	if _, err := m.Get(func() (string, error) { return "", wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("Get error = %v, want %v", err, wantErr)
	}

	// 失败不缓存，下一次仍会调用 fill
	if v, err := m.Get(func() (string, error) { return "ok", nil }); err != nil || v != "ok" {
		t.Fatalf("Get after failure = %q, %v", v, err)
	}
}

func TestMemoInvalidate(t *testing.T) {
	m := NewMemo[int](time.Hour)
	calls := 0
	fill := func() (int, error) {
		calls++
		return calls, nil
	}

	_, _ = m.Get(fill)
	m.Invalidate()
	if v, _ := m.Get(fill); v != 2 {
		t.Fatalf("Get after Invalidate = %d, want 2", v)
	}
}
