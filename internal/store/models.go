package store

import (
	"strings"

	"github.com/google/uuid"
)

// Platform identifies one of the four fixed publishing targets.
type Platform string

const (
	PlatformQiita Platform = "qiita"
	PlatformZenn  Platform = "zenn"
	PlatformNote  Platform = "note"
	PlatformOwned Platform = "owned"
)

var allPlatforms = []Platform{PlatformQiita, PlatformZenn, PlatformNote, PlatformOwned}

// Platforms returns the publishing targets in their canonical order. The
// angle planner and draft stage iterate in this order.
func Platforms() []Platform {
	cp := make([]Platform, len(allPlatforms))
	copy(cp, allPlatforms)
	return cp
}

// ParsePlatform converts a string into a known Platform.
func ParsePlatform(value string) (Platform, bool) {
	normalized := Platform(strings.ToLower(strings.TrimSpace(value)))
	for _, platform := range allPlatforms {
		if platform == normalized {
			return platform, true
		}
	}
	return "", false
}

// ProjectStatus represents the lifecycle of a project.
type ProjectStatus string

const (
	StatusProcessing ProjectStatus = "processing"
	StatusCompleted  ProjectStatus = "completed"
	// StatusFailed is reserved for future stages that can abort a run. No
	// current stage triggers it; the draft stage absorbs its own failures.
	StatusFailed ProjectStatus = "failed"
)

// ParseProjectStatus converts a string into a known ProjectStatus.
func ParseProjectStatus(value string) (ProjectStatus, bool) {
	switch ProjectStatus(strings.ToLower(strings.TrimSpace(value))) {
	case StatusProcessing:
		return StatusProcessing, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusFailed:
		return StatusFailed, true
	}
	return "", false
}

// Terminal reports whether a status admits no further transitions.
func (s ProjectStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IdentityDocType classifies an ingested identity document.
type IdentityDocType string

const (
	DocTypeSkill     IdentityDocType = "skill"
	DocTypeGoal      IdentityDocType = "goal"
	DocTypeKnowledge IdentityDocType = "knowledge"
)

// ParseIdentityDocType converts a string into a known IdentityDocType.
func ParseIdentityDocType(value string) (IdentityDocType, bool) {
	switch IdentityDocType(strings.ToLower(strings.TrimSpace(value))) {
	case DocTypeSkill:
		return DocTypeSkill, true
	case DocTypeGoal:
		return DocTypeGoal, true
	case DocTypeKnowledge:
		return DocTypeKnowledge, true
	}
	return "", false
}

// WorkflowEvent is an immutable progress record appended by each pipeline
// stage. Order within a project's event list is chronological and preserved.
type WorkflowEvent struct {
	Node    string        `json:"node"`
	Message string        `json:"message"`
	Status  ProjectStatus `json:"status"`
}

// ProjectResult associates a theme with its multi-platform outputs and the
// event history of the run that produced them.
type ProjectResult struct {
	ID      string              `json:"id"`
	Theme   string              `json:"theme"`
	Status  ProjectStatus       `json:"status"`
	Outputs map[Platform]string `json:"outputs"`
	Events  []WorkflowEvent     `json:"events"`
}

// Clone returns a deep copy so cached records cannot be mutated by callers.
func (r *ProjectResult) Clone() *ProjectResult {
	if r == nil {
		return nil
	}
	cp := &ProjectResult{
		ID:     r.ID,
		Theme:  r.Theme,
		Status: r.Status,
	}
	if r.Outputs != nil {
		cp.Outputs = make(map[Platform]string, len(r.Outputs))
		for platform, body := range r.Outputs {
			cp.Outputs[platform] = body
		}
	}
	if r.Events != nil {
		cp.Events = make([]WorkflowEvent, len(r.Events))
		copy(cp.Events, r.Events)
	}
	return cp
}

// IdentityDoc is one ingested identity text with its local embedding.
// Immutable once saved.
type IdentityDoc struct {
	ID        string
	Type      IdentityDocType
	Content   string
	Embedding []float64
	UserID    string
}

// PlatformStyle holds the current style rules for one platform. Saving again
// for the same platform replaces the record with version+1; no history is
// kept here.
type PlatformStyle struct {
	ID       string
	Platform Platform
	Rules    map[string]string
	Version  int
	UserID   string
}

// NewID allocates a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}
