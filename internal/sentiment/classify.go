package sentiment

import "strings"

// Sentiment 标题的情绪标签
type Sentiment string

const (
	Bullish Sentiment = "Bullish"
	Bearish Sentiment = "Bearish"
	Neutral Sentiment = "Neutral"
)

// 关键词表是固定清单，历史数据的标签依赖它，不要随意增删改序
var bullishWords = []string{
	"surge", "rally", "soar", "gain", "bull", "increase", "rise", "positive",
	"record", "high", "jump", "growth", "breakout", "buy", "invest", "pump",
}

var bearishWords = []string{
	"drop", "fall", "crash", "bear", "decline", "loss", "down", "negative",
	"sell", "dump", "fear", "panic", "collapse", "recession", "dip",
}

// Classify 基于关键词打分的情绪分类。全小写后按子串匹配统计两组关键词的命中数
// （"rebuying" 也会命中 "buy"），多数方胜出，平局一律 Neutral。
// 纯函数：任何输入都有且只有一个标签，没有失败分支。
func Classify(text string) Sentiment {
	t := strings.ToLower(text)

	bull, bear := 0, 0
	for _, w := range bullishWords {
		if strings.Contains(t, w) {
			bull++
		}
	}
	for _, w := range bearishWords {
		if strings.Contains(t, w) {
			bear++
		}
	}

	switch {
	case bull > bear:
		return Bullish
	case bear > bull:
		return Bearish
	default:
		return Neutral
	}
}
