package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound 指定 key 从未保存过快照，或底层数据损坏不可读
var ErrNotFound = errors.New("snapshot not found")

const (
	snapshotCacheTTL = 5 * time.Minute
	redisOpTimeout   = 2 * time.Second
)

// Store 快照存储。磁盘文件是权威数据（进程重启后仍在），
// Redis 只是可选的读加速层，不可用时自动退化为纯磁盘，行为不变。
type Store struct {
	dir string
	rdb *redis.Client
}

func NewStore(dir, redisAddr string) (*Store, error) {
	if dir == "" {
		dir = "database"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	var rdb *redis.Client
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("warn: redis ping failed: %v", err)
		}
	}

	return &Store{dir: dir, rdb: rdb}, nil
}

// Save 整体覆盖指定 key 的快照：先写临时文件再原子替换，
// 并发读方永远看不到半截数据。
func (s *Store) Save(key string, v any) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	if _, err := tmp.Write(bs); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}

	// Redis 只做加速，写失败不影响本轮结果
	if s.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
		defer cancel()
		if err := s.rdb.Set(ctx, redisKey(key), bs, snapshotCacheTTL).Err(); err != nil {
			log.Printf("warn: redis set %s: %v", key, err)
		}
	}
	return nil
}

// Load 读取快照到 v。文件不存在或内容损坏都按 ErrNotFound 处理，
// 绝不让脏数据把上层打崩。
func (s *Store) Load(key string, v any) error {
	if s.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
		defer cancel()
		if bs, err := s.rdb.Get(ctx, redisKey(key)).Bytes(); err == nil {
			if json.Unmarshal(bs, v) == nil {
				return nil
			}
		}
	}

	bs, err := os.ReadFile(s.path(key))
	if err != nil {
		return ErrNotFound
	}
	if err := json.Unmarshal(bs, v); err != nil {
		log.Printf("warn: snapshot %s corrupted: %v", key, err)
		return ErrNotFound
	}
	return nil
}

func (s *Store) SaveNews(snap NewsSnapshot) error {
	return s.Save(KeyNews, snap)
}

func (s *Store) LoadNews() (NewsSnapshot, error) {
	var snap NewsSnapshot
	err := s.Load(KeyNews, &snap)
	return snap, err
}

func (s *Store) SaveMovers(snap MoversSnapshot) error {
	return s.Save(KeyMovers, snap)
}

func (s *Store) LoadMovers() (MoversSnapshot, error) {
	var snap MoversSnapshot
	err := s.Load(KeyMovers, &snap)
	return snap, err
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func redisKey(key string) string {
	return "snapshot:" + key
}

// IsStale 快照是否超过调用方给定的 TTL；过期与否是调用方的策略，
// 存储层自己从不做过期删除。ttl <= 0 表示永不过期。
func IsStale(capturedAt time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Since(capturedAt) > ttl
}
