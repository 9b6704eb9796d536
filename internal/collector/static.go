package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	staticTimeout      = 15 * time.Second
	staticMaxBodyBytes = 2 << 20 // 2MB，防止超大 HTML
)

// StaticFetcher 纯 HTTP GET 的降级路径：不执行脚本。
// 目标页若依赖前端渲染，这条路径可能解析出 0 条标题——那是可接受的降级结果，不是错误。
type StaticFetcher struct{}

func (StaticFetcher) Name() string { return "static" }

func (StaticFetcher) FetchPage(_ context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse url %q: %v", ErrFetch, pageURL, err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Host, strings.TrimPrefix(u.Host, "www.")),
		colly.UserAgent(chromeUserAgent),
		colly.MaxBodySize(staticMaxBodyBytes),
	)
	c.SetRequestTimeout(staticTimeout)

	var html string
	c.OnResponse(func(r *colly.Response) {
		html = string(r.Body)
	})

	// colly 对非 2xx 状态会直接返回错误
	if err := c.Visit(pageURL); err != nil {
		return "", fmt.Errorf("%w: get %s: %v", ErrFetch, pageURL, err)
	}
	return html, nil
}
