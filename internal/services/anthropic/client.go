package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"quadvoice/internal/services"
)

const (
	defaultBaseURL     = "https://api.anthropic.com"
	defaultMaxTokens   = 800
	defaultHTTPTimeout = 60 * time.Second
	apiVersion         = "2023-06-01"
	temperature        = 0.2
)

// Config captures the runtime settings required to talk to the messages API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	TimeoutSeconds int
}

// Client wraps the Anthropic messages API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a messages API client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			MaxTokens:      cfg.MaxTokens,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.MaxTokens <= 0 {
		client.cfg.MaxTokens = defaultMaxTokens
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Configured reports whether the client holds credentials for real calls.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("anthropic request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateArticle asks the model for one markdown article. It returns
// services.ErrUnavailable when no API key is configured and services.ErrExternal
// for request or payload failures; callers fall back locally in both cases.
func (c *Client) GenerateArticle(ctx context.Context, theme, platform, angle, identitySummary string, styleRules map[string]string) (string, error) {
	if !c.Configured() {
		return "", services.Wrap(services.ErrUnavailable, "anthropic", "generate", "api key not configured", nil)
	}
	if c.cfg.Model == "" {
		return "", services.Wrap(services.ErrUnavailable, "anthropic", "generate", "model not configured", nil)
	}

	payload := messagesRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: temperature,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(theme, platform, angle, identitySummary, styleRules)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "anthropic", "generate", "encode request", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "anthropic", "generate", "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "anthropic", "generate", "send request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "anthropic", "generate", "read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", services.Wrap(services.ErrExternal, "anthropic", "generate", "",
			&httpStatusError{StatusCode: resp.StatusCode, Body: string(respBody)})
	}

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", services.Wrap(services.ErrExternal, "anthropic", "generate", "decode response", err)
	}
	if parsed.Error != nil {
		return "", services.Wrap(services.ErrExternal, "anthropic", "generate", parsed.Error.Message, nil)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	result := strings.TrimSpace(text.String())
	if result == "" {
		return "", services.Wrap(services.ErrExternal, "anthropic", "generate",
			fmt.Sprintf("empty content (stop_reason=%q)", parsed.StopReason), nil)
	}
	return result, nil
}

func buildPrompt(theme, platform, angle, identitySummary string, styleRules map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are drafting an article for %s.\n", platform)
	fmt.Fprintf(&b, "Theme: %s\n", theme)
	fmt.Fprintf(&b, "Angle: %s\n", angle)
	fmt.Fprintf(&b, "Identity summary: %s\n", identitySummary)
	fmt.Fprintf(&b, "Style hints: %s\n", formatStyleRules(styleRules))
	b.WriteString("Return concise markdown with intro, 3 bullets, and takeaway.")
	return b.String()
}

func formatStyleRules(rules map[string]string) string {
	if len(rules) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(rules))
	for key := range rules {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+rules[key])
	}
	return strings.Join(pairs, "; ")
}
