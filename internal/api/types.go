package api

import "quadvoice/internal/store"

// GenerateResponse is returned by a batch generation.
type GenerateResponse struct {
	ProjectID string                    `json:"project_id"`
	Status    store.ProjectStatus       `json:"status"`
	Preview   map[store.Platform]string `json:"preview"`
}

// ProjectResponse is the full view of a stored project.
type ProjectResponse struct {
	ProjectID string                    `json:"project_id"`
	Theme     string                    `json:"theme"`
	Status    store.ProjectStatus       `json:"status"`
	Outputs   map[store.Platform]string `json:"outputs"`
	Events    []store.WorkflowEvent     `json:"events"`
}

// IdentityIngestResponse reports how many identity documents were stored.
type IdentityIngestResponse struct {
	Count  int      `json:"count"`
	DocIDs []string `json:"doc_ids"`
}

// StyleIngestResponse reports the stored style record for a platform.
type StyleIngestResponse struct {
	Platform store.Platform    `json:"platform"`
	Version  int               `json:"version"`
	Summary  map[string]string `json:"summary"`
}

// IdentityUpload is one raw identity document to ingest.
type IdentityUpload struct {
	Name    string
	Content string
}

func projectResponse(project *store.ProjectResult) ProjectResponse {
	return ProjectResponse{
		ProjectID: project.ID,
		Theme:     project.Theme,
		Status:    project.Status,
		Outputs:   project.Outputs,
		Events:    project.Events,
	}
}
