package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quadvoice/internal/services"
)

func TestGenerateArticleUnconfigured(t *testing.T) {
	client := NewClient(Config{})
	if client.Configured() {
		t.Fatal("client without api key should not report configured")
	}
	_, err := client.GenerateArticle(context.Background(), "x", "qiita", "", "", nil)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateArticleSuccess(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]string{{"type": "text", "text": "# Draft\nBody."}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "claude-test"})
	text, err := client.GenerateArticle(context.Background(),
		"gardening", "zenn", "Concept deep-dive on gardening", "I love plants",
		map[string]string{"tone": "casual"})
	if err != nil {
		t.Fatalf("GenerateArticle failed: %v", err)
	}
	if text != "# Draft\nBody." {
		t.Fatalf("unexpected article text: %q", text)
	}
	if gotPath != "/v1/messages" {
		t.Fatalf("unexpected endpoint path: %q", gotPath)
	}
	if gotKey != "sk-test" || gotVersion != "2023-06-01" {
		t.Fatalf("unexpected headers: key=%q version=%q", gotKey, gotVersion)
	}
	prompt, _ := gotPayload["messages"].([]any)
	if len(prompt) != 1 {
		t.Fatalf("expected one message, got %v", gotPayload["messages"])
	}
	content := prompt[0].(map[string]any)["content"].(string)
	for _, want := range []string{"gardening", "zenn", "Concept deep-dive", "I love plants", "tone=casual"} {
		if !strings.Contains(content, want) {
			t.Fatalf("prompt missing %q: %q", want, content)
		}
	}
}

func TestGenerateArticleHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error","message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "claude-test"})
	_, err := client.GenerateArticle(context.Background(), "x", "note", "", "", nil)
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected ErrExternal, got %v", err)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestGenerateArticleEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"content": []any{}, "stop_reason": "max_tokens"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "claude-test"})
	_, err := client.GenerateArticle(context.Background(), "x", "owned", "", "", nil)
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected ErrExternal for empty content, got %v", err)
	}
}

func TestFormatStyleRulesDeterministic(t *testing.T) {
	got := formatStyleRules(map[string]string{"tone": "calm", "outline_hint": "Intro"})
	if got != "outline_hint=Intro; tone=calm" {
		t.Fatalf("unexpected rule formatting: %q", got)
	}
	if formatStyleRules(nil) != "none" {
		t.Fatal("expected none for empty rules")
	}
}
