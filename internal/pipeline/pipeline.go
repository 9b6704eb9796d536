package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/LJTian/CryptoPulse/internal/collector"
	"github.com/LJTian/CryptoPulse/internal/sentiment"
	"github.com/LJTian/CryptoPulse/internal/storage"
	"github.com/LJTian/CryptoPulse/internal/summarize"
)

const (
	DefaultLimit = 30

	summarySentences = 2
	summarizeTimeout = 15 * time.Second
	// 一轮刷新的总上限：浏览器抓取很慢，但超过这个时间就按获取失败处理
	refreshTimeout = 90 * time.Second
)

// HeadlineSource 新闻来源。测试用固定标题的假实现替掉真实浏览器。
type HeadlineSource interface {
	Name() string
	FetchHeadlines(ctx context.Context, limit int) ([]collector.Headline, error)
}

// MoversSource 行情来源
type MoversSource interface {
	TopGainersLosers(ctx context.Context) (collector.Movers, error)
}

// Pipeline 采集编排：抓取 → 提取 → 情绪分类 → 摘要 → 落盘。
// 同一个 key 同时只允许一轮刷新在跑；等锁的调用拿到锁后先复查缓存，
// 通常直接复用刚写入的快照而不是再抓一遍。
type Pipeline struct {
	news    HeadlineSource
	movers  MoversSource
	sum     summarize.Summarizer
	store   *storage.Store
	archive *storage.Archive

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(news HeadlineSource, movers MoversSource, sum summarize.Summarizer, store *storage.Store, archive *storage.Archive) *Pipeline {
	if sum == nil {
		sum = summarize.Extractive{}
	}
	return &Pipeline{
		news:    news,
		movers:  movers,
		sum:     sum,
		store:   store,
		archive: archive,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (p *Pipeline) keyLock(key string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[key]
	if !ok {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	return l
}

// RefreshNews 执行一轮完整采集并整体覆盖快照。
// 抓取失败整轮放弃，旧快照保持权威；分类是全函数不会失败，
// 摘要失败只影响单条（该条没有摘要），不会拖垮整轮。
func (p *Pipeline) RefreshNews(ctx context.Context, limit int) (storage.NewsSnapshot, error) {
	l := p.keyLock(storage.KeyNews)
	l.Lock()
	defer l.Unlock()
	return p.refreshNewsLocked(ctx, limit)
}

func (p *Pipeline) refreshNewsLocked(ctx context.Context, limit int) (storage.NewsSnapshot, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	headlines, err := p.news.FetchHeadlines(ctx, limit)
	if err != nil {
		return storage.NewsSnapshot{}, err
	}

	// 整个快照共用同一个采集时间戳
	now := time.Now().UTC()
	articles := make([]storage.Article, 0, len(headlines))
	for _, h := range headlines {
		articles = append(articles, storage.Article{
			Title:     h.Title,
			Link:      h.Link,
			Sentiment: sentiment.Classify(h.Title),
			Summary:   p.summarizeOne(ctx, h.Title),
		})
	}

	snap := storage.NewsSnapshot{
		Timestamp: now,
		Source:    p.news.Name(),
		Articles:  articles,
	}

	// 落盘失败意味着这一轮的成果全部丢失，必须暴露给调用方
	if err := p.store.SaveNews(snap); err != nil {
		return storage.NewsSnapshot{}, err
	}

	// 归档只是补充能力，失败不影响刷新结果
	if err := p.archive.SaveBatch(snap); err != nil {
		log.Printf("warn: archive articles: %v", err)
	}

	log.Printf("%s refreshed, %d articles", p.news.Name(), len(articles))
	return snap, nil
}

// summarizeOne 单条摘要，失败降级为空摘要
func (p *Pipeline) summarizeOne(ctx context.Context, text string) string {
	sctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	s, err := p.sum.Summarize(sctx, text, summarySentences)
	if err != nil {
		log.Printf("warn: summarize failed: %v", err)
		return ""
	}
	return s
}

// GetNews 唯一的读取入口。有未过期快照直接返回（不碰网络和浏览器）；
// 过期或 force 时刷新；刷新失败但手里有旧快照时返回旧快照并置 stale 标记
// （有总比没有好）。只有从未采集成功且本轮也失败才返回错误。
func (p *Pipeline) GetNews(ctx context.Context, limit int, ttl time.Duration, force bool) (storage.NewsSnapshot, bool, error) {
	if !force {
		if snap, err := p.store.LoadNews(); err == nil && !storage.IsStale(snap.Timestamp, ttl) {
			return snap, false, nil
		}
	}

	l := p.keyLock(storage.KeyNews)
	l.Lock()
	defer l.Unlock()

	// 拿到锁后复查：等锁期间别人可能已经刷新完
	if !force {
		if snap, err := p.store.LoadNews(); err == nil && !storage.IsStale(snap.Timestamp, ttl) {
			return snap, false, nil
		}
	}

	snap, rerr := p.refreshNewsLocked(ctx, limit)
	if rerr == nil {
		return snap, false, nil
	}

	if old, err := p.store.LoadNews(); err == nil {
		log.Printf("warn: refresh news failed, serving stale snapshot: %v", rerr)
		return old, true, nil
	}
	return storage.NewsSnapshot{}, false, rerr
}

// RefreshMovers 行情涨跌榜刷新；与新闻快照完全独立的生命周期
func (p *Pipeline) RefreshMovers(ctx context.Context) (storage.MoversSnapshot, error) {
	l := p.keyLock(storage.KeyMovers)
	l.Lock()
	defer l.Unlock()
	return p.refreshMoversLocked(ctx)
}

func (p *Pipeline) refreshMoversLocked(ctx context.Context) (storage.MoversSnapshot, error) {
	if p.movers == nil {
		return storage.MoversSnapshot{}, errors.New("movers source not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	m, err := p.movers.TopGainersLosers(ctx)
	if err != nil {
		return storage.MoversSnapshot{}, err
	}

	snap := storage.MoversSnapshot{Timestamp: time.Now().UTC(), Movers: m}
	if err := p.store.SaveMovers(snap); err != nil {
		return storage.MoversSnapshot{}, err
	}

	log.Printf("movers refreshed, %d gainers %d losers", len(m.TopGainers), len(m.TopLosers))
	return snap, nil
}

// GetMovers 同 GetNews 的读取与降级策略
func (p *Pipeline) GetMovers(ctx context.Context, ttl time.Duration, force bool) (storage.MoversSnapshot, bool, error) {
	if !force {
		if snap, err := p.store.LoadMovers(); err == nil && !storage.IsStale(snap.Timestamp, ttl) {
			return snap, false, nil
		}
	}

	l := p.keyLock(storage.KeyMovers)
	l.Lock()
	defer l.Unlock()

	if !force {
		if snap, err := p.store.LoadMovers(); err == nil && !storage.IsStale(snap.Timestamp, ttl) {
			return snap, false, nil
		}
	}

	snap, rerr := p.refreshMoversLocked(ctx)
	if rerr == nil {
		return snap, false, nil
	}

	if old, err := p.store.LoadMovers(); err == nil {
		log.Printf("warn: refresh movers failed, serving stale snapshot: %v", rerr)
		return old, true, nil
	}
	return storage.MoversSnapshot{}, false, rerr
}
