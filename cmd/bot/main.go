package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/LJTian/CryptoPulse/internal/bot"
	"github.com/LJTian/CryptoPulse/internal/collector"
	"github.com/LJTian/CryptoPulse/internal/config"
	"github.com/LJTian/CryptoPulse/internal/pipeline"
	"github.com/LJTian/CryptoPulse/internal/storage"
	"github.com/LJTian/CryptoPulse/internal/summarize"
)

// Telegram 机器人入口：与 API 服务共享同一套缓存目录 / Redis，
// 机器人只读缓存，过期时才触发采集
func main() {
	cfg := config.Load()
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	store, err := storage.NewStore(cfg.CacheDir, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	archive, err := storage.NewArchive(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("init archive failed: %v", err)
	}

	source := collector.NewCoinDeskSource(cfg.CoinDeskURL)

	var movers pipeline.MoversSource
	if cfg.CoinGeckoAPIKey != "" {
		movers = collector.NewCoinGeckoClient(cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey)
	}

	var sum summarize.Summarizer
	if cfg.SummarizerEndpoint != "" {
		sum = summarize.NewRemote(cfg.SummarizerEndpoint, cfg.SummarizerToken)
	}

	pipe := pipeline.New(source, movers, sum, store, archive)

	b, err := bot.New(cfg, pipe)
	if err != nil {
		log.Fatalf("init bot failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("telegram bot started")
	b.Run(ctx)
}
