package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// 目标页的标题列表靠前端脚本渲染，等到至少出现一个 h3 再取 DOM
	chromeReadySelector = "h3"
	chromeWaitTimeout   = 10 * time.Second
	chromeUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/91.0.4472.124"
)

// ChromeFetcher 用 headless Chrome 渲染页面后取完整 DOM
type ChromeFetcher struct {
	Timeout time.Duration // 整体上限，0 用默认
}

func (f *ChromeFetcher) Name() string { return "chrome" }

func (f *ChromeFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = chromeWaitTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.UserAgent(chromeUserAgent))
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// 超时也走同一组 defer，保证浏览器进程在任何退出路径上都被回收
	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(chromeReadySelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("%w: chrome render %s: %v", ErrFetch, url, err)
	}
	return html, nil
}
