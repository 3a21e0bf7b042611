package app

import (
	"context"

	"github.com/chazuruo/chaosflow/internal/draft"
	cferrors "github.com/chazuruo/chaosflow/internal/errors"
	"github.com/chazuruo/chaosflow/internal/hub"
	"github.com/chazuruo/chaosflow/internal/wizard"
)

// CreateOptions drives the create-workflow step without a terminal UI.
type CreateOptions struct {
	// Hub is the hub name; empty selects the public hub.
	Hub string
	// Experiment is "<chaosName>/<experimentName>".
	Experiment string
	// Name and Description replace the draft's values when non-nil.
	Name        *string
	Description *string
}

// CreateResult is the committed draft and, for stores that keep one, the
// path of its archived copy.
type CreateResult struct {
	Draft       draft.WorkflowDraft `json:"draft" yaml:"draft"`
	ArchivePath string              `json:"archive_path,omitempty" yaml:"archive_path,omitempty"`
}

// Create runs the step against ctrl the way the TUI would: select the hub,
// wait for its charts, choose the experiment, then Next.
func (e *Env) Create(ctx context.Context, ctrl *wizard.Controller, opts CreateOptions) (*CreateResult, error) {
	if opts.Experiment == "" {
		return nil, cferrors.Invalidf("an experiment is required (use --experiment chaos/experiment)")
	}
	if _, err := hub.ParseKey(opts.Experiment); err != nil {
		return nil, err
	}
	if opts.Name != nil {
		ctrl.SetName(*opts.Name)
	}
	if opts.Description != nil {
		ctrl.SetDescription(*opts.Description)
	}

	req, err := ctrl.SelectHubByName(ctx, opts.Hub)
	if err != nil {
		return nil, err
	}
	if req != nil {
		ctrl.ApplyFetch(wizard.Fetch(ctx, e.Catalog, *req))
		if err := ctrl.FetchErr(); err != nil {
			return nil, err
		}
	}

	if err := ctrl.SelectExperiment(ctx, opts.Experiment); err != nil {
		return nil, err
	}

	d, err := ctrl.Next(ctx)
	if err != nil {
		return nil, err
	}
	return e.Commit(ctx, d)
}

// Commit archives a committed draft when the store keeps archives.
func (e *Env) Commit(ctx context.Context, d draft.WorkflowDraft) (*CreateResult, error) {
	res := &CreateResult{Draft: d}
	a, ok := e.Store.(draft.Archiver)
	if !ok {
		return res, nil
	}
	path, err := a.Archive(ctx, d)
	if err != nil {
		return nil, err
	}
	e.Logger.Debug("draft archived", "path", path)
	res.ArchivePath = path
	return res, nil
}
