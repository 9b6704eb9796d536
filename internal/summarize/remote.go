package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	remoteClientTimeout = 15 * time.Second
	remoteMaxBodyBytes  = 1 << 20 // 1MB

	// 与历史部署保持一致的输出长度窗口
	remoteMinLength = 10
	remoteMaxLength = 30
)

// Remote 调用外部推理服务做生成式摘要（HuggingFace Inference API 风格的
// summarization 接口）。失败只影响单条摘要，调用方负责降级。
type Remote struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewRemote(endpoint, token string) *Remote {
	return &Remote{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: remoteClientTimeout},
	}
}

func (r *Remote) Summarize(ctx context.Context, text string, _ int) (string, error) {
	body, err := json.Marshal(map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"min_length": remoteMinLength,
			"max_length": remoteMaxLength,
			"do_sample":  false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("summarize: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarize: call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarize: unexpected status %d", resp.StatusCode)
	}

	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, remoteMaxBodyBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("summarize: decode response: %w", err)
	}
	if len(out) == 0 || strings.TrimSpace(out[0].SummaryText) == "" {
		return "", fmt.Errorf("summarize: empty model output")
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}
