package storage

import (
	"time"

	"github.com/LJTian/CryptoPulse/internal/collector"
	"github.com/LJTian/CryptoPulse/internal/sentiment"
)

// 缓存键。新闻与行情是完全独立的生命周期，互不影响
const (
	KeyNews   = "coindesk_news"
	KeyMovers = "top_gainers_losers"
)

// Article 一轮采集产出的单条标题，生成后不再修改
type Article struct {
	Title     string              `json:"title"`
	Link      string              `json:"link"`
	Sentiment sentiment.Sentiment `json:"sentiment"`
	Summary   string              `json:"summary,omitempty"`
}

// NewsSnapshot 一轮采集的完整结果。整体覆盖写入，从不合并；
// 所有条目共享同一个采集时间戳，顺序与页面出现顺序一致。
type NewsSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Articles  []Article `json:"articles"`
}

// MoversSnapshot 行情涨跌榜快照
type MoversSnapshot struct {
	Timestamp time.Time        `json:"timestamp"`
	Movers    collector.Movers `json:"data"`
}
