package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/LJTian/CryptoPulse/internal/collector"
	"github.com/LJTian/CryptoPulse/internal/config"
	"github.com/LJTian/CryptoPulse/internal/pipeline"
	"github.com/LJTian/CryptoPulse/internal/storage"
	"github.com/gin-gonic/gin"
)

// 实时榜单直接代理 CoinGecko，只做很短的进程内缓存防止打爆限额
const topCoinsTTL = 60 * time.Second

type Server struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	archive  *storage.Archive
	gecko    *collector.CoinGeckoClient
	topCoins *storage.Memo[[]collector.Coin]
}

func NewServer(cfg *config.Config, pipe *pipeline.Pipeline, archive *storage.Archive, gecko *collector.CoinGeckoClient) *Server {
	return &Server{
		cfg:      cfg,
		pipe:     pipe,
		archive:  archive,
		gecko:    gecko,
		topCoins: storage.NewMemo[[]collector.Coin](topCoinsTTL),
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.GET("/coindesk", s.coindeskNews)
	r.GET("/gainers-losers", s.gainersLosers)
	r.GET("/top-100", s.topHundred)
	r.POST("/refresh", s.refresh)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/history", s.history)
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "CryptoPulse",
		"endpoints": []string{
			"/health", "/coindesk", "/gainers-losers", "/top-100", "/refresh", "/api/v1/history",
		},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// coindeskNews 返回最新新闻快照。正常走缓存；缓存过期会触发一轮采集，
// 采集失败时降级为旧快照并标记 stale。
func (s *Server) coindeskNews(c *gin.Context) {
	limit := s.cfg.NewsLimit
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "")); err == nil && v > 0 {
		limit = v
	}
	force := c.Query("force") == "true"

	snap, stale, err := s.pipe.GetNews(c.Request.Context(), limit, s.cfg.NewsTTL, force)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    "fetch_failed",
			"message": "failed to fetch news and no cached snapshot available",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"stale":   stale,
		"data":    snap,
	})
}

func (s *Server) gainersLosers(c *gin.Context) {
	force := c.Query("force") == "true"

	snap, stale, err := s.pipe.GetMovers(c.Request.Context(), s.cfg.MoversTTL, force)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    "fetch_failed",
			"message": "failed to fetch market movers and no cached snapshot available",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"stale":   stale,
		"data":    snap,
	})
}

// topHundred 按市值排名的前 100 个币，实时代理 + 短缓存
func (s *Server) topHundred(c *gin.Context) {
	if s.gecko == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "not_configured",
			"message": "CoinGecko API is not configured",
		})
		return
	}

	coins, err := s.topCoins.Get(func() ([]collector.Coin, error) {
		return s.gecko.TopCoins(c.Request.Context(), 100)
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    "fetch_failed",
			"message": "failed to fetch coin list",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    coins,
	})
}

// refresh 强制立即重采，绕过 TTL。定时任务之外的手动兜底入口。
func (s *Server) refresh(c *gin.Context) {
	snap, err := s.pipe.RefreshNews(c.Request.Context(), s.cfg.NewsLimit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    "refresh_failed",
			"message": err.Error(),
		})
		return
	}

	if _, err := s.pipe.RefreshMovers(c.Request.Context()); err != nil {
		// 行情失败不影响新闻刷新的结果，只记在响应里
		c.JSON(http.StatusOK, gin.H{
			"code":    "partial",
			"message": "news refreshed, movers refresh failed: " + err.Error(),
			"data":    gin.H{"articles": len(snap.Articles)},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    gin.H{"articles": len(snap.Articles)},
	})
}

// history 按日期查询归档文章；未配置 Postgres 时该能力关闭
func (s *Server) history(c *gin.Context) {
	if !s.archive.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "not_configured",
			"message": "article archive is not configured",
		})
		return
	}

	date := c.Query("date") // YYYY-MM-DD，可为空
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "bad_request",
				"message": "date must be YYYY-MM-DD",
			})
			return
		}
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	list, err := s.archive.ListByDate(date, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    list,
	})
}
