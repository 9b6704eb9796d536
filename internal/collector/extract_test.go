package collector

import "testing"

const fixtureHTML = `
<html><body>
  <div class="nws-article">
    <a href="/markets/2025/btc-breaks-out"><h3>BTC breaks out</h3></a>
  </div>
  <div class="nws-article">
    <a href="https://example.com/eth"><h3> ETH steadies </h3></a>
  </div>
  <div class="nws-article">
    <h3>Orphan headline without a link</h3>
  </div>
  <div class="nws-article">
    <a href="/policy/sec-update"><h3>SEC update lands</h3></a>
  </div>
  <div class="nws-article">
    <a href="/tech"><h3></h3></a>
  </div>
  <div class="nws-article">
    <a href="/markets/alt-season"><h3>Alt season talk returns</h3></a>
  </div>
</body></html>`

func TestExtractArticlesLimitAndOrder(t *testing.T) {
	// 固定页面里有 5 条可用标题（1 条空标题被跳过），limit=3 应取前 3 条且保持文档顺序
	got := ExtractArticles(fixtureHTML, "https://www.coindesk.com/", "", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 headlines, got %d", len(got))
	}

	wantTitles := []string{"BTC breaks out", "ETH steadies", "Orphan headline without a link"}
	for i, w := range wantTitles {
		if got[i].Title != w {
			t.Fatalf("headline[%d].Title = %q, want %q", i, got[i].Title, w)
		}
	}
}

func TestExtractArticlesLinkResolution(t *testing.T) {
	got := ExtractArticles(fixtureHTML, "https://www.coindesk.com/", "h3", 0)
	if len(got) != 5 {
		t.Fatalf("expected 5 headlines without limit, got %d", len(got))
	}

	// 根相对路径拼上 base URL
	if got[0].Link != "https://www.coindesk.com/markets/2025/btc-breaks-out" {
		t.Fatalf("relative link not resolved: %q", got[0].Link)
	}
	// 绝对链接原样保留
	if got[1].Link != "https://example.com/eth" {
		t.Fatalf("absolute link changed: %q", got[1].Link)
	}
	// 没有祖先锚点时用占位值，而不是丢掉整条
	if got[2].Link != NoLink {
		t.Fatalf("missing link should use sentinel, got %q", got[2].Link)
	}
}

func TestExtractArticlesTrimsTitle(t *testing.T) {
	got := ExtractArticles(fixtureHTML, "https://www.coindesk.com/", "h3", 0)
	if got[1].Title != "ETH steadies" {
		t.Fatalf("title not trimmed: %q", got[1].Title)
	}
}

func TestExtractArticlesNoMatches(t *testing.T) {
	// 静态降级路径可能拿到没有任何 h3 的外壳页面：0 条是降级成功，不是错误
	got := ExtractArticles("<html><body><p>js required</p></body></html>", "https://www.coindesk.com/", "", 10)
	if len(got) != 0 {
		t.Fatalf("expected 0 headlines, got %d", len(got))
	}
}

func TestResolveLink(t *testing.T) {
	cases := []struct {
		href, base, want string
	}{
		{"", "https://www.coindesk.com/", NoLink},
		{"/markets/a", "https://www.coindesk.com/", "https://www.coindesk.com/markets/a"},
		{"https://other.com/a", "https://www.coindesk.com/", "https://other.com/a"},
	}
	for _, c := range cases {
		if got := resolveLink(c.href, c.base); got != c.want {
			t.Fatalf("resolveLink(%q, %q) = %q, want %q", c.href, c.base, got, c.want)
		}
	}
}
