package storage

import (
	"sync"
	"time"
)

// Memo 进程内的单值 TTL 缓存。磁盘快照的过期判断和各消费端的短 TTL 记忆
// 是同一类“带过期的键值”能力，这里给进程内场景复用（如机器人回复、实时行情代理）。
type Memo[T any] struct {
	ttl time.Duration

	mu  sync.Mutex
	val T
	at  time.Time
	ok  bool
}

func NewMemo[T any](ttl time.Duration) *Memo[T] {
	return &Memo[T]{ttl: ttl}
}

// Get 命中未过期的值直接返回，否则调用 fill 并记住结果。
// fill 失败时不缓存错误；若手里还有旧值，宁可给过期数据也不给错误。
func (m *Memo[T]) Get(fill func() (T, error)) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ok && !IsStale(m.at, m.ttl) {
		return m.val, nil
	}

	v, err := fill()
	if err != nil {
		if m.ok {
			return m.val, nil
		}
		var zero T
		return zero, err
	}

	m.val, m.at, m.ok = v, time.Now(), true
	return v, nil
}

// Invalidate 清掉当前值，下次 Get 必然走 fill
func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ok = false
}
