package summarize

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Summarizer 摘要策略。抽取式实现是确定性的纯函数；
// 远端模型实现可能慢或失败，调用方要自带超时并把失败降级为“无摘要”。
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxSentences int) (string, error)
}

var wordRe = regexp.MustCompile(`\w+`)

// Extractive 词频加权的抽取式摘要，无外部依赖。
// 句子按得分降序输出而不是恢复原文顺序——历史行为如此，保持兼容。
type Extractive struct{}

func (Extractive) Summarize(_ context.Context, text string, maxSentences int) (string, error) {
	sentences := splitSentences(text)
	if len(sentences) <= maxSentences {
		return text, nil
	}

	// 词频统计对整段文本做，全小写
	freq := make(map[string]int)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		freq[w]++
	}

	type scored struct {
		sentence string
		score    int
	}
	ranked := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		sc := 0
		for _, w := range wordRe.FindAllString(s, -1) {
			sc += freq[strings.ToLower(w)]
		}
		ranked = append(ranked, scored{sentence: s, score: sc})
	}

	// 稳定排序：同分句子保持原文先后
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	parts := make([]string, 0, maxSentences)
	for _, r := range ranked[:maxSentences] {
		parts = append(parts, r.sentence)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// splitSentences 在句末标点（. ! ?）之后的空格处切分，标点留在句内，连续空格一并吃掉
func splitSentences(text string) []string {
	rs := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(rs) && rs[i+1] == ' ' {
			out = append(out, string(rs[start:i+1]))
			j := i + 1
			for j < len(rs) && rs[j] == ' ' {
				j++
			}
			start = j
			i = j - 1
		}
	}
	if start < len(rs) {
		out = append(out, string(rs[start:]))
	}
	if len(out) == 0 {
		out = append(out, text)
	}
	return out
}
