package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	CacheDir    string
	RedisAddr   string
	PostgresDSN string

	CoinDeskURL      string
	CoinGeckoBaseURL string
	CoinGeckoAPIKey  string

	TelegramBotToken string

	// 配置了 endpoint 则启用生成式摘要（外部推理服务），否则用内置抽取式摘要
	SummarizerEndpoint string
	SummarizerToken    string

	NewsLimit      int
	NewsTTL        time.Duration
	MoversTTL      time.Duration
	NewsCronSpec   string
	MoversCronSpec string

	BasicAuthUser string
	BasicAuthPass string
}

func Load() *Config {
	// 本地开发用 .env，线上直接注入环境变量；文件不存在时忽略
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:            getEnv("APP_PORT", "8000"),
		CacheDir:           getEnv("CACHE_DIR", defaultCacheDir()),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		PostgresDSN:        getEnv("POSTGRES_DSN", ""),
		CoinDeskURL:        getEnv("COINDESK_URL", "https://www.coindesk.com/"),
		CoinGeckoBaseURL:   getEnv("COINGECKO_BASE_URL", "https://pro-api.coingecko.com/api/v3"),
		CoinGeckoAPIKey:    getEnv("COINGECKO_API_KEY", ""),
		TelegramBotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		SummarizerEndpoint: getEnv("SUMMARIZER_ENDPOINT", ""),
		SummarizerToken:    getEnv("SUMMARIZER_TOKEN", ""),
		NewsLimit:          getEnvInt("NEWS_LIMIT", 30),
		NewsTTL:            getEnvDuration("NEWS_TTL", time.Hour),
		MoversTTL:          getEnvDuration("MOVERS_TTL", 30*time.Minute),
		NewsCronSpec:       getEnv("NEWS_CRON_SPEC", "*/30 * * * *"),
		MoversCronSpec:     getEnv("MOVERS_CRON_SPEC", "*/30 * * * *"),
		BasicAuthUser:      getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:      getEnv("APP_BASIC_PASS", ""),
	}

	log.Printf("config loaded: port=%s cache_dir=%s news_cron=%s", cfg.AppPort, cfg.CacheDir, cfg.NewsCronSpec)
	return cfg
}

// defaultCacheDir 容器里有挂载盘就用 /data，否则落在工作目录的 database 下
func defaultCacheDir() string {
	if st, err := os.Stat("/data"); err == nil && st.IsDir() {
		return "/data"
	}
	return "database"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("warn: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("warn: invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}
