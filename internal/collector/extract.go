package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractArticles 从 HTML 里按文档顺序提取标题与链接。
// selector 为空时取 h3；limit > 0 时截断到前 limit 条。
// 标题为空的节点直接跳过；有标题但找不到链接的仍然保留，用 NoLink 占位。
func ExtractArticles(html, baseURL, selector string, limit int) []Headline {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	if selector == "" {
		selector = "h3"
	}

	var out []Headline
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}

		title := strings.TrimSpace(s.Text())
		if title == "" {
			return true
		}

		// 标题通常包在 <a> 里，向上找最近的祖先锚点拿 href
		href, _ := s.Closest("a").Attr("href")
		href = strings.TrimSpace(href)

		out = append(out, Headline{Title: title, Link: resolveLink(href, baseURL)})
		return true
	})
	return out
}

// resolveLink 把根相对路径补全成绝对地址；拿不到链接时用占位值
func resolveLink(href, baseURL string) string {
	switch {
	case href == "":
		return NoLink
	case strings.HasPrefix(href, "/"):
		return strings.TrimSuffix(baseURL, "/") + href
	default:
		return href
	}
}
