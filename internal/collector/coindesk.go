package collector

import (
	"context"
	"log"
)

const (
	DefaultCoinDeskURL = "https://www.coindesk.com/"
	DefaultNewsLimit   = 30

	newsSelector = "h3"
)

// CoinDeskSource 按顺序尝试多个获取器（chrome 渲染 → 静态 GET），
// 第一个拿到页面的结果交给提取器。
type CoinDeskSource struct {
	URL      string
	Fetchers []PageFetcher
}

func NewCoinDeskSource(url string) *CoinDeskSource {
	if url == "" {
		url = DefaultCoinDeskURL
	}
	return &CoinDeskSource{
		URL:      url,
		Fetchers: []PageFetcher{&ChromeFetcher{}, StaticFetcher{}},
	}
}

func (s *CoinDeskSource) Name() string { return "CoinDesk" }

// FetchHeadlines 抓取并提取标题，保持页面上的出现顺序。
// 所有获取器都失败才算获取失败；页面结构变化导致 0 条属于降级成功，照常返回空列表。
func (s *CoinDeskSource) FetchHeadlines(ctx context.Context, limit int) ([]Headline, error) {
	if limit <= 0 {
		limit = DefaultNewsLimit
	}

	var lastErr error
	for _, f := range s.Fetchers {
		html, err := f.FetchPage(ctx, s.URL)
		if err != nil {
			log.Printf("fetch %s via %s: %v", s.URL, f.Name(), err)
			lastErr = err
			continue
		}

		list := ExtractArticles(html, s.URL, newsSelector, limit)
		if len(list) == 0 {
			log.Printf("fetch %s via %s got 0 headlines", s.URL, f.Name())
		}
		return list, nil
	}

	if lastErr == nil {
		lastErr = ErrFetch
	}
	return nil, lastErr
}
