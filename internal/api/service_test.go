package api

import (
	"context"
	"errors"
	"testing"

	"quadvoice/internal/services"
	"quadvoice/internal/store"
	"quadvoice/internal/testsupport"
	"quadvoice/internal/workflow"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	engine := workflow.NewEngine(nil, nil)
	return NewService(st, engine, cfg.Embedding.Dimensions, nil)
}

func TestGenerateStoresAndReturnsResult(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.IngestIdentity(ctx, store.DocTypeSkill, []IdentityUpload{
		{Name: "me.md", Content: "I love plants\nmore text"},
	}, "")

	resp, err := svc.Generate(ctx, "gardening")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.ProjectID == "" {
		t.Fatal("expected a project id")
	}
	if resp.Status != store.StatusCompleted {
		t.Fatalf("status: got %q, want completed", resp.Status)
	}
	if len(resp.Preview) != 4 {
		t.Fatalf("expected 4 previews, got %d", len(resp.Preview))
	}

	project, err := svc.Get(ctx, resp.ProjectID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if project.Theme != "gardening" {
		t.Fatalf("theme: got %q", project.Theme)
	}
	if project.Status != store.StatusCompleted {
		t.Fatalf("stored status: got %q", project.Status)
	}
	if len(project.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(project.Events))
	}
	if project.Events[0].Message != "Derived core message from identity: I love plants" {
		t.Fatalf("intent message: %q", project.Events[0].Message)
	}
}

func TestGetUnknownProject(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), "no-such-id")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStreamUnknownProject(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Stream(context.Background(), "no-such-id")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStreamPersistsTerminalResult(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Generate(ctx, "fermentation")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	items, err := svc.Stream(ctx, resp.ProjectID)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	var events int
	var final *store.ProjectResult
	for item := range items {
		if item.Event != nil {
			events++
		}
		if item.Result != nil {
			final = item.Result
		}
	}
	if events != 4 {
		t.Fatalf("expected 4 streamed events, got %d", events)
	}
	if final == nil || final.ID != resp.ProjectID {
		t.Fatalf("final result must carry the project id: %+v", final)
	}

	stored, err := svc.Get(ctx, resp.ProjectID)
	if err != nil {
		t.Fatalf("Get after stream failed: %v", err)
	}
	if stored.Status != store.StatusCompleted {
		t.Fatalf("stored status after stream: %q", stored.Status)
	}
	if len(stored.Events) != 4 {
		t.Fatalf("stored events after stream: %d", len(stored.Events))
	}
}

func TestIngestIdentityCountsDocs(t *testing.T) {
	svc := newTestService(t)
	resp := svc.IngestIdentity(context.Background(), store.DocTypeGoal, []IdentityUpload{
		{Name: "a.md", Content: "Goal one"},
		{Name: "b.md", Content: "Goal two"},
	}, "owner-1")
	if resp.Count != 2 || len(resp.DocIDs) != 2 {
		t.Fatalf("unexpected ingest response: %+v", resp)
	}
	if resp.DocIDs[0] == resp.DocIDs[1] {
		t.Fatal("doc ids must be unique")
	}
}

func TestIngestStyleDerivesRulesAndBumpsVersion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := svc.IngestStyle(ctx, store.PlatformZenn, "# Writing Calmly\n\nBody.", "")
	if first.Version != 1 {
		t.Fatalf("first version: got %d, want 1", first.Version)
	}
	if first.Summary["outline_hint"] != "Writing Calmly" {
		t.Fatalf("outline hint: %q", first.Summary["outline_hint"])
	}
	if first.Summary["tone"] != "auto-detected" {
		t.Fatalf("tone: %q", first.Summary["tone"])
	}

	second := svc.IngestStyle(ctx, store.PlatformZenn, "no headings here", "")
	if second.Version != 2 {
		t.Fatalf("second version: got %d, want 2", second.Version)
	}
	if second.Summary["outline_hint"] != "Untitled" {
		t.Fatalf("heading fallback: %q", second.Summary["outline_hint"])
	}
}

func TestFirstHeadingSkipsLeadingProse(t *testing.T) {
	if got := firstHeading("intro line\n## Section Two\n# Later"); got != "Section Two" {
		t.Fatalf("firstHeading: %q", got)
	}
}
