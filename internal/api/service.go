package api

import (
	"context"
	"log/slog"
	"strings"

	"quadvoice/internal/embedding"
	"quadvoice/internal/logging"
	"quadvoice/internal/services"
	"quadvoice/internal/store"
	"quadvoice/internal/workflow"
)

// Service ties the project store and the pipeline engine together behind the
// operations the transports call.
type Service struct {
	store      *store.Store
	engine     *workflow.Engine
	dimensions int
	logger     *slog.Logger
}

// NewService constructs the core service. dimensions sets the embedding
// vector length for identity ingestion.
func NewService(st *store.Store, engine *workflow.Engine, dimensions int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:      st,
		engine:     engine,
		dimensions: dimensions,
		logger:     logging.NewComponentLogger(logger, "api"),
	}
}

// Generate registers a project for theme, runs the full pipeline over the
// currently ingested identity documents, persists the outcome, and returns a
// summary. The stored record carries the project id even though the engine
// produces results without one.
func (s *Service) Generate(ctx context.Context, theme string) (GenerateResponse, error) {
	project := s.store.CreateProject(ctx, theme)
	result, err := s.engine.Run(ctx, workflow.Inputs{
		Theme:          theme,
		IdentityChunks: s.store.ListIdentityContents(),
		StyleRules:     s.store.StyleRules(),
	})
	result.ID = project.ID
	s.store.UpdateProject(ctx, project.ID, result)
	if err != nil {
		return GenerateResponse{}, err
	}
	s.logger.Info("generation complete",
		logging.String(logging.FieldProjectID, project.ID),
		logging.Int("outputs", len(result.Outputs)))
	return GenerateResponse{
		ProjectID: project.ID,
		Status:    result.Status,
		Preview:   result.Outputs,
	}, nil
}

// Get fetches a project by id, consulting durable storage when the cache
// misses. Unknown ids yield services.ErrNotFound.
func (s *Service) Get(ctx context.Context, projectID string) (ProjectResponse, error) {
	project := s.store.GetProject(ctx, projectID)
	if project == nil {
		return ProjectResponse{}, services.Wrap(services.ErrNotFound, "api", "get", "project "+projectID, nil)
	}
	return projectResponse(project), nil
}

// Stream re-runs the pipeline for an existing project and delivers each
// stage event as it completes, then the final result. Terminal results are
// persisted under the project id before delivery. Unknown ids yield
// services.ErrNotFound without starting the pipeline.
func (s *Service) Stream(ctx context.Context, projectID string) (<-chan workflow.StreamItem, error) {
	project := s.store.GetProject(ctx, projectID)
	if project == nil {
		return nil, services.Wrap(services.ErrNotFound, "api", "stream", "project "+projectID, nil)
	}

	source := s.engine.Stream(ctx, workflow.Inputs{
		Theme:          project.Theme,
		IdentityChunks: s.store.ListIdentityContents(),
		StyleRules:     s.store.StyleRules(),
	})

	items := make(chan workflow.StreamItem)
	go func() {
		defer close(items)
		for item := range source {
			if item.Result != nil {
				item.Result.ID = projectID
				s.store.UpdateProject(ctx, projectID, item.Result)
			}
			select {
			case items <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return items, nil
}

// IngestIdentity embeds and stores each uploaded document.
func (s *Service) IngestIdentity(ctx context.Context, docType store.IdentityDocType, uploads []IdentityUpload, userID string) IdentityIngestResponse {
	docIDs := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		vector := embedding.Embed(upload.Content, s.dimensions)
		doc := s.store.SaveIdentity(ctx, docType, upload.Content, vector, userID)
		docIDs = append(docIDs, doc.ID)
	}
	s.logger.Info("identity documents ingested",
		logging.String("doc_type", string(docType)),
		logging.Int("count", len(docIDs)))
	return IdentityIngestResponse{Count: len(docIDs), DocIDs: docIDs}
}

// IngestStyle derives style rules from a sample document and stores them for
// the platform, bumping the version. Rule extraction is heading-based for
// now: the first markdown heading becomes the outline hint.
func (s *Service) IngestStyle(ctx context.Context, platform store.Platform, content, userID string) StyleIngestResponse {
	rules := map[string]string{
		"tone":         "auto-detected",
		"outline_hint": firstHeading(content),
		"notes":        "stored locally; model-based extraction pending",
	}
	style := s.store.SaveStyle(ctx, platform, rules, userID)
	return StyleIngestResponse{
		Platform: style.Platform,
		Version:  style.Version,
		Summary:  style.Rules,
	}
}

func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") {
			return strings.Trim(line, "# \r")
		}
	}
	return "Untitled"
}
