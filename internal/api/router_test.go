package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LJTian/CryptoPulse/internal/collector"
	"github.com/LJTian/CryptoPulse/internal/config"
	"github.com/LJTian/CryptoPulse/internal/pipeline"
	"github.com/LJTian/CryptoPulse/internal/storage"
	"github.com/gin-gonic/gin"
)

type staticSource struct {
	headlines []collector.Headline
}

func (staticSource) Name() string { return "CoinDesk" }

func (s staticSource) FetchHeadlines(ctx context.Context, limit int) ([]collector.Headline, error) {
	return s.headlines, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	src := staticSource{headlines: []collector.Headline{
		{Title: "Bitcoin prices surge", Link: "https://www.coindesk.com/a"},
	}}
	pipe := pipeline.New(src, nil, nil, store, nil)

	cfg := &config.Config{NewsLimit: 30, NewsTTL: time.Hour, MoversTTL: 30 * time.Minute}
	r := gin.New()
	NewServer(cfg, pipe, nil, nil).RegisterRoutes(r)
	return r
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", w.Code)
	}
}

func TestCoindeskReturnsSnapshot(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/coindesk")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /coindesk = %d, want 200; body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Code  string `json:"code"`
		Stale bool   `json:"stale"`
		Data  struct {
			Source   string            `json:"source"`
			Articles []storage.Article `json:"articles"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Code != "ok" || resp.Stale {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Data.Articles) != 1 || resp.Data.Articles[0].Title != "Bitcoin prices surge" {
		t.Fatalf("articles = %+v", resp.Data.Articles)
	}
	if resp.Data.Articles[0].Sentiment != "Bullish" {
		t.Fatalf("sentiment = %q, want Bullish", resp.Data.Articles[0].Sentiment)
	}
}

func TestGainersLosersWithoutSource(t *testing.T) {
	r := newTestRouter(t)
	// 行情来源未配置且无缓存，应返回网关错误而不是 500
	w := doRequest(r, http.MethodGet, "/gainers-losers")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("GET /gainers-losers = %d, want 502", w.Code)
	}
}

func TestTopHundredNotConfigured(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/top-100")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("GET /top-100 = %d, want 503", w.Code)
	}
}

func TestHistoryNotConfigured(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/api/v1/history")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("GET /api/v1/history = %d, want 503", w.Code)
	}
}

func TestRefreshForcesCollection(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodPost, "/refresh")
	// 行情来源未配置，新闻成功 → partial
	if w.Code != http.StatusOK {
		t.Fatalf("POST /refresh = %d, want 200; body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Code != "partial" {
		t.Fatalf("code = %q, want partial (movers source missing)", resp.Code)
	}
}
