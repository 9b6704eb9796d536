package main

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/CryptoPulse/internal/collector"
	"github.com/LJTian/CryptoPulse/internal/config"
	"github.com/LJTian/CryptoPulse/internal/pipeline"
	"github.com/LJTian/CryptoPulse/internal/storage"
	"github.com/LJTian/CryptoPulse/internal/summarize"
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发采集或 cron 容器
func main() {
	cfg := config.Load()

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

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	snap, err := pipe.RefreshNews(ctx, cfg.NewsLimit)
	if err != nil {
		log.Fatalf("refresh news failed: %v", err)
	}
	log.Printf("collected %d articles from %s", len(snap.Articles), snap.Source)

	if movers != nil {
		if _, err := pipe.RefreshMovers(ctx); err != nil {
			log.Printf("warn: refresh movers failed: %v", err)
		}
	}
}
