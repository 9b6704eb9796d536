package main

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/CryptoPulse/internal/api"
	"github.com/LJTian/CryptoPulse/internal/collector"
	"github.com/LJTian/CryptoPulse/internal/config"
	"github.com/LJTian/CryptoPulse/internal/pipeline"
	"github.com/LJTian/CryptoPulse/internal/scheduler"
	"github.com/LJTian/CryptoPulse/internal/storage"
	"github.com/LJTian/CryptoPulse/internal/summarize"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.CacheDir, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	// Postgres 归档可选：没配 DSN 时 archive 为 nil，所有写入静默跳过
	archive, err := storage.NewArchive(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("init archive failed: %v", err)
	}
	if archive.Enabled() {
		log.Println("article archive enabled")
	}

	source := collector.NewCoinDeskSource(cfg.CoinDeskURL)

	var gecko *collector.CoinGeckoClient
	if cfg.CoinGeckoAPIKey != "" {
		gecko = collector.NewCoinGeckoClient(cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey)
	} else {
		log.Println("warn: COINGECKO_API_KEY not set, market endpoints disabled")
	}

	// 配置了外部摘要服务就用它，否则退回内置抽取式摘要
	var sum summarize.Summarizer
	if cfg.SummarizerEndpoint != "" {
		sum = summarize.NewRemote(cfg.SummarizerEndpoint, cfg.SummarizerToken)
		log.Printf("using remote summarizer at %s", cfg.SummarizerEndpoint)
	}

	pipe := pipeline.New(source, geckoOrNil(gecko), sum, store, archive)

	// 新闻和行情按各自的周期刷新
	s := scheduler.New()
	if err := s.Register(scheduler.Job{
		Name: "news",
		Spec: cfg.NewsCronSpec,
		Run: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if _, err := pipe.RefreshNews(ctx, cfg.NewsLimit); err != nil {
				log.Printf("warn: scheduled news refresh: %v", err)
			}
		},
	}); err != nil {
		log.Fatalf("register news job failed: %v", err)
	}
	if gecko != nil {
		if err := s.Register(scheduler.Job{
			Name: "movers",
			Spec: cfg.MoversCronSpec,
			Run: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()
				if _, err := pipe.RefreshMovers(ctx); err != nil {
					log.Printf("warn: scheduled movers refresh: %v", err)
				}
			},
		}); err != nil {
			log.Fatalf("register movers job failed: %v", err)
		}
	}
	s.Start()

	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	apiServer := api.NewServer(cfg, pipe, archive, gecko)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}

// geckoOrNil 防止把带类型的 nil 指针塞进接口导致判空失效
func geckoOrNil(g *collector.CoinGeckoClient) pipeline.MoversSource {
	if g == nil {
		return nil
	}
	return g
}

// basicAuthMiddleware 为整个站点增加一个简单的 Basic Auth 访问密码。
// 仅当配置了 APP_BASIC_USER / APP_BASIC_PASS 时启用。
// /health 不做认证，便于健康检查。
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
