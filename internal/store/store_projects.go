package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"quadvoice/internal/logging"
)

// CreateProject allocates a fresh project in the processing state. The
// durable insert is best-effort; the in-memory record is available
// immediately regardless.
func (s *Store) CreateProject(ctx context.Context, theme string) *ProjectResult {
	project := &ProjectResult{
		ID:      NewID(),
		Theme:   theme,
		Status:  StatusProcessing,
		Outputs: map[Platform]string{},
		Events:  []WorkflowEvent{},
	}

	s.mu.Lock()
	s.projects[project.ID] = project
	s.mu.Unlock()

	s.insertProject(ctx, project)
	return project.Clone()
}

// UpdateProject replaces the record for id wholesale and mirrors status,
// outputs, and events to durable storage best-effort.
func (s *Store) UpdateProject(ctx context.Context, id string, result *ProjectResult) {
	if result == nil {
		return
	}
	stored := result.Clone()
	stored.ID = id

	s.mu.Lock()
	s.projects[id] = stored
	s.mu.Unlock()

	s.persistProjectUpdate(ctx, stored)
}

// GetProject serves a project from the cache, falling back to a durable
// fetch that repopulates the cache. Returns nil when the id is unknown to
// both.
func (s *Store) GetProject(ctx context.Context, id string) *ProjectResult {
	s.mu.RLock()
	cached, ok := s.projects[id]
	s.mu.RUnlock()
	if ok {
		return cached.Clone()
	}

	fetched := s.fetchProject(ctx, id)
	if fetched == nil {
		return nil
	}

	s.mu.Lock()
	// Another goroutine may have cached it meanwhile; keep the first copy.
	if existing, ok := s.projects[id]; ok {
		fetched = existing
	} else {
		s.projects[id] = fetched
	}
	s.mu.Unlock()
	return fetched.Clone()
}

func (s *Store) insertProject(ctx context.Context, project *ProjectResult) {
	if s.db == nil {
		return
	}
	now := timestamp()
	err := s.execWithRetry(
		ctx,
		`INSERT INTO projects (id, theme, status, outputs, events, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.Theme,
		string(project.Status),
		"{}",
		"[]",
		now,
		now,
	)
	s.persistWarn("insert project", err)
}

func (s *Store) persistProjectUpdate(ctx context.Context, project *ProjectResult) {
	if s.db == nil {
		return
	}
	outputsJSON, err := json.Marshal(project.Outputs)
	if err != nil {
		s.persistWarn("update project", fmt.Errorf("marshal outputs: %w", err))
		return
	}
	eventsJSON, err := json.Marshal(project.Events)
	if err != nil {
		s.persistWarn("update project", fmt.Errorf("marshal events: %w", err))
		return
	}
	err = s.execWithRetry(
		ctx,
		`INSERT INTO projects (id, theme, status, outputs, events, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             theme = excluded.theme,
             status = excluded.status,
             outputs = excluded.outputs,
             events = excluded.events,
             updated_at = excluded.updated_at`,
		project.ID,
		project.Theme,
		string(project.Status),
		string(outputsJSON),
		string(eventsJSON),
		timestamp(),
		timestamp(),
	)
	s.persistWarn("update project", err)
}

func (s *Store) fetchProject(ctx context.Context, id string) *ProjectResult {
	if s.db == nil {
		return nil
	}
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT id, theme, status, outputs, events FROM projects WHERE id = ?`, id)

	var (
		project     ProjectResult
		status      string
		outputsJSON string
		eventsJSON  string
	)
	err := row.Scan(&project.ID, &project.Theme, &status, &outputsJSON, &eventsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logger.Warn("fetch project failed",
			logging.String(logging.FieldProjectID, id), logging.Error(err))
		return nil
	}

	if parsed, ok := ParseProjectStatus(status); ok {
		project.Status = parsed
	} else {
		project.Status = StatusProcessing
	}
	if err := json.Unmarshal([]byte(outputsJSON), &project.Outputs); err != nil {
		s.logger.Warn("decode project outputs failed",
			logging.String(logging.FieldProjectID, id), logging.Error(err))
		project.Outputs = map[Platform]string{}
	}
	if err := json.Unmarshal([]byte(eventsJSON), &project.Events); err != nil {
		s.logger.Warn("decode project events failed",
			logging.String(logging.FieldProjectID, id), logging.Error(err))
		project.Events = []WorkflowEvent{}
	}
	if project.Outputs == nil {
		project.Outputs = map[Platform]string{}
	}
	if project.Events == nil {
		project.Events = []WorkflowEvent{}
	}
	return &project
}
