package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LJTian/CryptoPulse/internal/sentiment"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "") // 不连 Redis，纯磁盘
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	return s
}

func sampleSnapshot() NewsSnapshot {
	return NewsSnapshot{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Source:    "CoinDesk",
		Articles: []Article{
			{Title: "BTC breaks out", Link: "https://www.coindesk.com/a", Sentiment: sentiment.Bullish, Summary: "BTC breaks out"},
			{Title: "Fees drop", Link: "No link found", Sentiment: sentiment.Bearish},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := sampleSnapshot()

	if err := s.SaveNews(want); err != nil {
		t.Fatalf("SaveNews error: %v", err)
	}

	got, err := s.LoadNews()
	if err != nil {
		t.Fatalf("LoadNews error: %v", err)
	}
	if !got.Timestamp.Equal(want.Timestamp) || got.Source != want.Source {
		t.Fatalf("snapshot header mismatch: got %+v", got)
	}
	if len(got.Articles) != len(want.Articles) {
		t.Fatalf("article count = %d, want %d", len(got.Articles), len(want.Articles))
	}
	for i := range want.Articles {
		if got.Articles[i] != want.Articles[i] {
			t.Fatalf("article[%d] = %+v, want %+v", i, got.Articles[i], want.Articles[i])
		}
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LoadNews(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadNews on empty store = %v, want ErrNotFound", err)
	}
}

func TestLoadCorruptIsNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	// 直接写坏文件：损坏数据等同于不存在，绝不冒泡成崩溃
	if err := os.WriteFile(filepath.Join(dir, KeyNews+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := s.LoadNews(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadNews on corrupt file = %v, want ErrNotFound", err)
	}
}

func TestSaveOverwritesWholeSnapshot(t *testing.T) {
	s := newTestStore(t)

	first := sampleSnapshot()
	if err := s.SaveNews(first); err != nil {
		t.Fatalf("SaveNews error: %v", err)
	}

	second := NewsSnapshot{
		Timestamp: first.Timestamp.Add(time.Hour),
		Source:    "CoinDesk",
		Articles:  []Article{{Title: "Only one left", Link: "No link found", Sentiment: sentiment.Neutral}},
	}
	if err := s.SaveNews(second); err != nil {
		t.Fatalf("SaveNews error: %v", err)
	}

	got, err := s.LoadNews()
	if err != nil {
		t.Fatalf("LoadNews error: %v", err)
	}
	// 整体覆盖，不是合并
	if len(got.Articles) != 1 || got.Articles[0].Title != "Only one left" {
		t.Fatalf("snapshot not fully overwritten: %+v", got)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveNews(sampleSnapshot()); err != nil {
		t.Fatalf("SaveNews error: %v", err)
	}
	// 新闻落盘不影响行情 key 的生命周期
	if _, err := s.LoadMovers(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadMovers = %v, want ErrNotFound", err)
	}
}

func TestIsStale(t *testing.T) {
	now := time.Now()
	if IsStale(now, time.Hour) {
		t.Fatal("fresh snapshot reported stale")
	}
	if !IsStale(now.Add(-2*time.Hour), time.Hour) {
		t.Fatal("old snapshot not reported stale")
	}
	// ttl <= 0 表示永不过期
	if IsStale(now.Add(-100*time.Hour), 0) {
		t.Fatal("ttl=0 should never be stale")
	}
}
