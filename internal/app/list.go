package app

import (
	"context"

	cferrors "github.com/chazuruo/chaosflow/internal/errors"
	"github.com/chazuruo/chaosflow/internal/hub"
)

// HubRow is one line of the hubs listing.
type HubRow struct {
	Name        string `json:"name"`
	RepoURL     string `json:"repo_url"`
	RepoBranch  string `json:"repo_branch"`
	Public      bool   `json:"public"`
	Available   bool   `json:"available"`
	Experiments string `json:"experiments"`
}

// ExperimentRow is one line of the experiments listing.
type ExperimentRow struct {
	Key            string `json:"key"`
	ChaosName      string `json:"chaos_name"`
	ExperimentName string `json:"experiment_name"`
	YAMLLink       string `json:"yaml_link"`
}

// ListHubs returns the public hub followed by the registered hubs.
func (e *Env) ListHubs(ctx context.Context) ([]HubRow, error) {
	public, err := e.LoadPublic(ctx)
	if err != nil {
		e.Logger.Warn("public hub unavailable", "error", err)
		public.Hub.TotalExp = "-"
	}
	rows := []HubRow{hubRow(public.Hub, true)}

	hubs, err := e.RegisteredHubs(ctx)
	if err != nil {
		return rows, err
	}
	for _, h := range hubs {
		rows = append(rows, hubRow(h, false))
	}
	return rows, nil
}

func hubRow(h hub.HubDescriptor, public bool) HubRow {
	total := h.TotalExp
	if total == "" {
		total = "-"
	}
	return HubRow{
		Name:        h.HubName,
		RepoURL:     h.RepoURL,
		RepoBranch:  h.RepoBranch,
		Public:      public,
		Available:   h.IsAvailable,
		Experiments: total,
	}
}

// ListExperiments returns the experiments offered by hubName, with their
// engine locators. An empty name lists the public hub.
func (e *Env) ListExperiments(ctx context.Context, hubName string) ([]ExperimentRow, error) {
	snap, err := e.snapshot(ctx, hubName)
	if err != nil {
		return nil, err
	}

	entries := snap.Experiments()
	rows := make([]ExperimentRow, 0, len(entries))
	for _, en := range entries {
		rows = append(rows, ExperimentRow{
			Key:            en.Key(),
			ChaosName:      en.ChaosName,
			ExperimentName: en.ExperimentName,
			YAMLLink:       hub.EngineURL(snap.Hub, en.Key()),
		})
	}
	return rows, nil
}

func (e *Env) snapshot(ctx context.Context, hubName string) (hub.Snapshot, error) {
	if hubName == "" || hubName == e.Config.PublicHub.Name {
		return e.LoadPublic(ctx)
	}

	hubs, err := e.RegisteredHubs(ctx)
	if err != nil {
		return hub.Snapshot{}, err
	}
	for _, h := range hubs {
		if h.HubName != hubName {
			continue
		}
		charts, err := e.Catalog.Charts(ctx, hub.ChartsRequest{
			UserName:   e.Config.Portal.Username,
			RepoURL:    h.RepoURL,
			RepoBranch: h.RepoBranch,
			HubName:    h.HubName,
		})
		if err != nil {
			return hub.Snapshot{}, err
		}
		return hub.Snapshot{Hub: h, Charts: charts}, nil
	}
	return hub.Snapshot{}, &cferrors.HubError{Op: "select", Hub: hubName, Err: cferrors.ErrNotFound}
}
