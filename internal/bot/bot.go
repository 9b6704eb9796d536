package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/LJTian/CryptoPulse/internal/collector"
	"github.com/LJTian/CryptoPulse/internal/config"
	"github.com/LJTian/CryptoPulse/internal/pipeline"
	"github.com/LJTian/CryptoPulse/internal/sentiment"
	"github.com/LJTian/CryptoPulse/internal/storage"
)

const (
	pollTimeout = 30 // 长轮询秒数

	// 机器人回复的文本缓存：高频群聊里不必每条 /news 都重渲染
	replyTTL = time.Minute

	maxBotArticles = 5
	maxBotMovers   = 5
)

// Bot Telegram 机器人，把快照渲染成消息回给聊天。
// 数据全部来自 Pipeline 的缓存读取路径，机器人自己不抓网页。
type Bot struct {
	api  *tgbotapi.BotAPI
	cfg  *config.Config
	pipe *pipeline.Pipeline

	newsReply    *storage.Memo[string]
	gainersReply *storage.Memo[string]
}

func New(cfg *config.Config, pipe *pipeline.Pipeline) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	log.Printf("authorized on telegram account %s", api.Self.UserName)

	return &Bot{
		api:          api,
		cfg:          cfg,
		pipe:         pipe,
		newsReply:    storage.NewMemo[string](replyTTL),
		gainersReply: storage.NewMemo[string](replyTTL),
	}, nil
}

// Run 长轮询处理消息，直到 ctx 取消
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Println("telegram bot stopped")
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var text string
	switch msg.Command() {
	case "start":
		text = "欢迎使用 CryptoPulse 📰\n\n/news - 最新加密新闻（带情绪标记）\n/gainers - 24 小时涨跌榜"
	case "news":
		text = b.newsText(ctx)
	case "gainers":
		text = b.gainersText(ctx)
	default:
		text = "未知命令，试试 /news 或 /gainers"
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.DisableWebPagePreview = true
	if _, err := b.api.Send(reply); err != nil {
		log.Printf("warn: send telegram message: %v", err)
	}
}

func (b *Bot) newsText(ctx context.Context) string {
	text, err := b.newsReply.Get(func() (string, error) {
		snap, stale, err := b.pipe.GetNews(ctx, b.cfg.NewsLimit, b.cfg.NewsTTL, false)
		if err != nil {
			return "", err
		}
		return renderNews(snap, stale), nil
	})
	if err != nil {
		log.Printf("warn: bot news: %v", err)
		return "暂时拿不到新闻，稍后再试 🙏"
	}
	return text
}

func (b *Bot) gainersText(ctx context.Context) string {
	text, err := b.gainersReply.Get(func() (string, error) {
		snap, stale, err := b.pipe.GetMovers(ctx, b.cfg.MoversTTL, false)
		if err != nil {
			return "", err
		}
		return renderMovers(snap, stale), nil
	})
	if err != nil {
		log.Printf("warn: bot gainers: %v", err)
		return "暂时拿不到行情，稍后再试 🙏"
	}
	return text
}

func sentimentEmoji(s sentiment.Sentiment) string {
	switch s {
	case sentiment.Bullish:
		return "🟢"
	case sentiment.Bearish:
		return "🔴"
	default:
		return "⚪"
	}
}

func renderNews(snap storage.NewsSnapshot, stale bool) string {
	if len(snap.Articles) == 0 {
		return "当前没有新闻 🤷"
	}

	var sb strings.Builder
	sb.WriteString("*📰 Latest Crypto News*\n")
	if stale {
		sb.WriteString("_（缓存数据，采集源暂时不可用）_\n")
	}
	sb.WriteString("\n")

	n := len(snap.Articles)
	if n > maxBotArticles {
		n = maxBotArticles
	}
	for _, a := range snap.Articles[:n] {
		sb.WriteString(sentimentEmoji(a.Sentiment))
		sb.WriteString(" ")
		if a.Link != "" && a.Link != collector.NoLink {
			fmt.Fprintf(&sb, "[%s](%s)\n", escapeMarkdown(a.Title), a.Link)
		} else {
			sb.WriteString(escapeMarkdown(a.Title))
			sb.WriteString("\n")
		}
	}

	fmt.Fprintf(&sb, "\n_更新于 %s_", snap.Timestamp.UTC().Format("2006-01-02 15:04 UTC"))
	return sb.String()
}

func renderMovers(snap storage.MoversSnapshot, stale bool) string {
	var sb strings.Builder
	sb.WriteString("*📈 Top Gainers (24h)*\n")
	for _, c := range capCoins(snap.Movers.TopGainers, maxBotMovers) {
		fmt.Fprintf(&sb, "🟢 %s (%s): $%.4f  %+.2f%%\n", escapeMarkdown(c.Name), c.Symbol, c.Price, c.Change24h)
	}

	sb.WriteString("\n*📉 Top Losers (24h)*\n")
	for _, c := range capCoins(snap.Movers.TopLosers, maxBotMovers) {
		fmt.Fprintf(&sb, "🔴 %s (%s): $%.4f  %+.2f%%\n", escapeMarkdown(c.Name), c.Symbol, c.Price, c.Change24h)
	}

	if stale {
		sb.WriteString("\n_（缓存数据，行情源暂时不可用）_")
	}
	return sb.String()
}

func capCoins(list []collector.Coin, n int) []collector.Coin {
	if len(list) > n {
		return list[:n]
	}
	return list
}

// escapeMarkdown 转义会破坏 Markdown 结构的字符，标题里带下划线很常见
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "`", "\\`")
	return r.Replace(s)
}
