package collector

import (
	"context"
	"errors"
)

// Headline 从页面提取出的一条原始标题
type Headline struct {
	Title string
	Link  string
}

// NoLink 提取不到可用链接时的占位值，序列化后依旧是字符串而不是 null
const NoLink = "No link found"

// ErrFetch 页面获取失败：网络错误、非 2xx、超时或渲染失败
var ErrFetch = errors.New("fetch page failed")

// PageFetcher 抽象“拿到一张渲染完成的页面”。浏览器是重资源，
// 藏在接口后面方便测试用固定 HTML 替换掉真实进程。
type PageFetcher interface {
	Name() string
	FetchPage(ctx context.Context, url string) (string, error)
}
