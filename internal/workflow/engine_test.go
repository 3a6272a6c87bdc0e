package workflow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"quadvoice/internal/services"
	"quadvoice/internal/store"
)

type fakeGenerator struct {
	calls []string
	body  func(platform string) string
	err   error
}

func (f *fakeGenerator) GenerateArticle(_ context.Context, theme, platform, angle, identitySummary string, styleRules map[string]string) (string, error) {
	f.calls = append(f.calls, platform)
	if f.err != nil {
		return "", f.err
	}
	if f.body != nil {
		return f.body(platform), nil
	}
	return fmt.Sprintf("generated %s article about %s", platform, theme), nil
}

func wantNodes() []string {
	return []string{NodeIntent, NodeAngle, NodeDraft, NodeRefine}
}

func checkEvents(t *testing.T, events []store.WorkflowEvent) {
	t.Helper()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(events), events)
	}
	for i, node := range wantNodes() {
		if events[i].Node != node {
			t.Fatalf("event %d node: got %q, want %q", i, events[i].Node, node)
		}
	}
	for i := 0; i < 3; i++ {
		if events[i].Status != store.StatusProcessing {
			t.Fatalf("event %d status: got %q, want processing", i, events[i].Status)
		}
	}
	if events[3].Status != store.StatusCompleted {
		t.Fatalf("final event status: got %q, want completed", events[3].Status)
	}
}

func TestRunEndToEndWithFallback(t *testing.T) {
	engine := NewEngine(nil, nil)
	result, err := engine.Run(context.Background(), Inputs{
		Theme:          "gardening",
		IdentityChunks: []string{"I love plants\nmore text"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Status != store.StatusCompleted {
		t.Fatalf("status: got %q, want completed", result.Status)
	}
	if result.ID != "" {
		t.Fatalf("engine must leave the id for the owner, got %q", result.ID)
	}
	if result.Theme != "gardening" {
		t.Fatalf("theme: got %q", result.Theme)
	}
	if len(result.Outputs) != 4 {
		t.Fatalf("expected 4 outputs, got %d", len(result.Outputs))
	}
	for _, platform := range store.Platforms() {
		body := result.Outputs[platform]
		if !strings.Contains(body, "gardening") || !strings.Contains(body, string(platform)) {
			t.Fatalf("output for %s missing theme or platform: %q", platform, body)
		}
		if !strings.Contains(body, "I love plants") {
			t.Fatalf("output for %s missing identity voice: %q", platform, body)
		}
	}
	checkEvents(t, result.Events)
	if result.Events[0].Message != "Derived core message from identity: I love plants" {
		t.Fatalf("intent event message: %q", result.Events[0].Message)
	}
	if result.Events[1].Message != "Angles prepared for: qiita, zenn, note, owned" {
		t.Fatalf("angle event message: %q", result.Events[1].Message)
	}
}

func TestRunUsesGeneratorOutputs(t *testing.T) {
	gen := &fakeGenerator{}
	engine := NewEngine(gen, nil)
	result, err := engine.Run(context.Background(), Inputs{Theme: "kubernetes"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := result.Outputs[store.PlatformZenn]; got != "generated zenn article about kubernetes" {
		t.Fatalf("unexpected zenn output: %q", got)
	}
	want := []string{"qiita", "zenn", "note", "owned"}
	if !reflect.DeepEqual(gen.calls, want) {
		t.Fatalf("draft order: got %v, want %v", gen.calls, want)
	}
}

func TestRunFallsBackOnGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: services.Wrap(services.ErrExternal, "anthropic", "generate", "boom", nil)}
	engine := NewEngine(gen, nil)
	result, err := engine.Run(context.Background(), Inputs{Theme: "espresso"})
	if err != nil {
		t.Fatalf("draft errors must not fail the run: %v", err)
	}
	if result.Status != store.StatusCompleted {
		t.Fatalf("status: got %q, want completed", result.Status)
	}
	for _, platform := range store.Platforms() {
		if !strings.Contains(result.Outputs[platform], "Placeholder intro.") {
			t.Fatalf("expected fallback body for %s: %q", platform, result.Outputs[platform])
		}
	}
}

func TestRunFallsBackOnBlankGeneratorBody(t *testing.T) {
	gen := &fakeGenerator{body: func(string) string { return "   \n " }}
	engine := NewEngine(gen, nil)
	result, err := engine.Run(context.Background(), Inputs{Theme: "tea"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(result.Outputs[store.PlatformQiita], "Placeholder intro.") {
		t.Fatalf("expected fallback for blank body: %q", result.Outputs[store.PlatformQiita])
	}
}

func TestStreamMatchesBatch(t *testing.T) {
	inputs := Inputs{
		Theme:          "gardening",
		IdentityChunks: []string{"I love plants\nmore text", "Weekend botanist"},
	}
	engine := NewEngine(nil, nil)

	batch, err := engine.Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var streamed []store.WorkflowEvent
	var final *store.ProjectResult
	for item := range engine.Stream(context.Background(), inputs) {
		switch {
		case item.Event != nil:
			streamed = append(streamed, *item.Event)
		case item.Result != nil:
			final = item.Result
		}
	}
	if final == nil {
		t.Fatal("stream produced no final result")
	}
	if !reflect.DeepEqual(final.Outputs, batch.Outputs) {
		t.Fatalf("stream outputs diverge from batch:\n%v\n%v", final.Outputs, batch.Outputs)
	}
	if !reflect.DeepEqual(streamed, batch.Events) {
		t.Fatalf("stream events diverge from batch:\n%v\n%v", streamed, batch.Events)
	}
	if !reflect.DeepEqual(final.Events, batch.Events) {
		t.Fatalf("final item events diverge from batch:\n%v\n%v", final.Events, batch.Events)
	}
	checkEvents(t, streamed)
}

func TestStreamStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	engine := NewEngine(nil, nil)
	items := engine.Stream(ctx, Inputs{Theme: "abandoned"})

	first, ok := <-items
	if !ok || first.Event == nil || first.Event.Node != NodeIntent {
		t.Fatalf("expected intent event first, got %+v ok=%v", first, ok)
	}
	cancel()

	// The producer observes cancellation either while emitting or at the
	// next stage boundary; the channel must close without a completed result.
	for item := range items {
		if item.Result != nil && item.Result.Status == store.StatusCompleted {
			t.Fatal("cancelled stream must not complete")
		}
	}
}

func TestRunReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := NewEngine(nil, nil)
	result, err := engine.Run(ctx, Inputs{Theme: "never"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Status != store.StatusFailed {
		t.Fatalf("status: got %q, want failed", result.Status)
	}
}

func TestFallbackArticleShape(t *testing.T) {
	body := FallbackArticle("gardening", "qiita", "How-to angle for gardening", "I love plants")
	for _, want := range []string{
		"# gardening — qiita",
		"- Angle: How-to angle for gardening",
		"- Voice: I love plants",
		"## Intro",
		"- Point A",
		"## Takeaway",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("fallback missing %q:\n%s", want, body)
		}
	}
}

func TestStyleRulesReachGenerator(t *testing.T) {
	var gotRules map[string]string
	gen := &fakeGenerator{body: func(string) string { return "ok" }}
	rules := map[store.Platform]map[string]string{
		store.PlatformNote: {"tone": "warm"},
	}
	engine := NewEngine(generatorFunc(func(_ context.Context, _, platform, _, _ string, styleRules map[string]string) (string, error) {
		if platform == "note" {
			gotRules = styleRules
		}
		return gen.body(platform), nil
	}), nil)
	if _, err := engine.Run(context.Background(), Inputs{Theme: "letters", StyleRules: rules}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if gotRules["tone"] != "warm" {
		t.Fatalf("style rules not threaded through: %v", gotRules)
	}
}

type generatorFunc func(ctx context.Context, theme, platform, angle, identitySummary string, styleRules map[string]string) (string, error)

func (f generatorFunc) GenerateArticle(ctx context.Context, theme, platform, angle, identitySummary string, styleRules map[string]string) (string, error) {
	return f(ctx, theme, platform, angle, identitySummary, styleRules)
}
