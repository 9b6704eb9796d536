package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCoinGeckoBaseURL = "https://pro-api.coingecko.com/api/v3"

	coingeckoTimeout  = 20 * time.Second
	coingeckoMaxBytes = 4 << 20 // 4MB
)

// Coin 一条行情，只保留展示需要的字段
type Coin struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
	Rank      int     `json:"market_cap_rank,omitempty"`
}

// Movers 24 小时涨跌幅榜
type Movers struct {
	TopGainers []Coin `json:"top_gainers"`
	TopLosers  []Coin `json:"top_losers"`
}

// CoinGeckoClient 调用 CoinGecko Pro API 的只读客户端
type CoinGeckoClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewCoinGeckoClient(baseURL, apiKey string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoBaseURL
	}
	return &CoinGeckoClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: coingeckoTimeout},
	}
}

// geckoCoin 上游返回的币对象；榜单接口的价格字段叫 usd，行情接口叫 current_price
type geckoCoin struct {
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`
	USD          float64 `json:"usd"`
	Change24h    float64 `json:"price_change_percentage_24h"`
	Rank         int     `json:"market_cap_rank"`
}

// TopGainersLosers 取 24h 涨幅榜与跌幅榜
func (c *CoinGeckoClient) TopGainersLosers(ctx context.Context) (Movers, error) {
	var raw struct {
		TopGainers []geckoCoin `json:"top_gainers"`
		TopLosers  []geckoCoin `json:"top_losers"`
	}
	q := url.Values{"vs_currency": {"usd"}}
	if err := c.getJSON(ctx, "/coins/top_gainers_losers", q, &raw); err != nil {
		return Movers{}, err
	}
	return Movers{
		TopGainers: toCoins(raw.TopGainers),
		TopLosers:  toCoins(raw.TopLosers),
	}, nil
}

// TopCoins 按市值取前 perPage 个币的实时行情
func (c *CoinGeckoClient) TopCoins(ctx context.Context, perPage int) ([]Coin, error) {
	if perPage <= 0 || perPage > 250 {
		perPage = 100
	}
	q := url.Values{
		"vs_currency": {"usd"},
		"order":       {"market_cap_desc"},
		"per_page":    {strconv.Itoa(perPage)},
		"page":        {"1"},
		"sparkline":   {"false"},
	}
	var raw []geckoCoin
	if err := c.getJSON(ctx, "/coins/markets", q, &raw); err != nil {
		return nil, err
	}
	return toCoins(raw), nil
}

func (c *CoinGeckoClient) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("coingecko: build request %s: %w", path, err)
	}
	req.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-cg-pro-api-key", c.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("coingecko: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coingecko: get %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, coingeckoMaxBytes)).Decode(v); err != nil {
		return fmt.Errorf("coingecko: decode %s: %w", path, err)
	}
	return nil
}

func toCoins(raw []geckoCoin) []Coin {
	out := make([]Coin, 0, len(raw))
	for _, g := range raw {
		price := g.CurrentPrice
		if price == 0 {
			price = g.USD
		}
		out = append(out, Coin{
			Name:      g.Name,
			Symbol:    strings.ToUpper(g.Symbol),
			Price:     price,
			Change24h: g.Change24h,
			Rank:      g.Rank,
		})
	}
	return out
}
