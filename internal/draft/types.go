// Package draft holds the in-progress workflow assembled across wizard steps.
package draft

import (
	"context"
	"time"
)

// WorkflowDraft is the not-yet-submitted workflow configuration.
type WorkflowDraft struct {
	ID             string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name           string         `json:"name" yaml:"name"`
	Description    string         `json:"description" yaml:"description"`
	CustomWorkflow CustomWorkflow `json:"custom_workflow" yaml:"custom_workflow"`
	UpdatedAt      time.Time      `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// CustomWorkflow is the chosen hub and experiment.
type CustomWorkflow struct {
	HubName        string `json:"hub_name" yaml:"hub_name"`
	RepoURL        string `json:"repo_url" yaml:"repo_url"`
	RepoBranch     string `json:"repo_branch" yaml:"repo_branch"`
	ExperimentName string `json:"experiment_name" yaml:"experiment_name"`
	YAMLLink       string `json:"yaml_link" yaml:"yaml_link"`
	YAML           string `json:"yaml" yaml:"yaml"`
	Index          int    `json:"index" yaml:"index"`
}

// Store holds the current draft. Implementations serialize Merge so that
// each call replaces only the fields named in its Patch.
type Store interface {
	// Get returns the current draft, or the zero draft if none exists.
	Get(ctx context.Context) (WorkflowDraft, error)

	// Merge applies p to the current draft and returns the result.
	Merge(ctx context.Context, p Patch) (WorkflowDraft, error)

	// Reset discards the current draft.
	Reset(ctx context.Context) error
}

// Archiver is implemented by stores that keep a named copy of committed drafts.
type Archiver interface {
	Archive(ctx context.Context, d WorkflowDraft) (string, error)
}
