// Package app provides high-level application logic for chaosflow commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chazuruo/chaosflow/internal/config"
	"github.com/chazuruo/chaosflow/internal/draft"
	cferrors "github.com/chazuruo/chaosflow/internal/errors"
	"github.com/chazuruo/chaosflow/internal/hub"
	"github.com/chazuruo/chaosflow/internal/logging"
	"github.com/chazuruo/chaosflow/internal/wizard"
)

// Env bundles what every command needs: config, logger, catalog and store.
type Env struct {
	Config  *config.Config
	Logger  *slog.Logger
	Catalog hub.Catalog
	Store   draft.Store

	closers []func() error
}

// Open builds an Env from cfg. The caller must Close it.
func Open(cfg *config.Config, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	store, closeStore, err := NewStore(cfg.Draft)
	if err != nil {
		return nil, err
	}

	client := hub.NewClient(cfg.Portal.URL, cfg.Token(), time.Duration(cfg.Portal.TimeoutSeconds)*time.Second)

	env := &Env{
		Config:  cfg,
		Logger:  logger,
		Catalog: client,
		Store:   store,
	}
	if closeStore != nil {
		env.closers = append(env.closers, closeStore)
	}
	return env, nil
}

// Close releases the store.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewStore opens the draft store selected by cfg.Backend. The returned
// close func is nil when the backend holds no resources.
func NewStore(cfg config.DraftConfig) (draft.Store, func() error, error) {
	switch cfg.Backend {
	case "memory":
		return draft.NewMemoryStore(draft.WorkflowDraft{}), nil, nil
	case "file":
		s, err := draft.NewFileStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case "redis":
		s := draft.NewRedisStore(cfg.RedisAddr, cfg.RedisDB, draft.WithKey(cfg.RedisKey))
		return s, s.Close, nil
	}
	return nil, nil, &cferrors.DraftError{Op: "open", Err: cferrors.Invalidf("unknown draft backend %q", cfg.Backend)}
}

// PublicHub returns the configured public hub coordinates.
func PublicHub(cfg *config.Config) hub.HubDescriptor {
	return hub.HubDescriptor{
		HubName:     cfg.PublicHub.Name,
		RepoURL:     cfg.PublicHub.RepoURL,
		RepoBranch:  cfg.PublicHub.RepoBranch,
		IsAvailable: true,
	}
}

// LoadPublic loads the public hub snapshot from the configured source.
func (e *Env) LoadPublic(ctx context.Context) (hub.Snapshot, error) {
	e.Logger.Debug("loading public hub", "source", e.Config.PublicHub.ChartsSource)
	snap, err := hub.LoadPublic(ctx, PublicHub(e.Config), e.Config.PublicHub.ChartsSource, e.Catalog, e.Config.Portal.Username)
	if err != nil {
		return snap, err
	}
	snap.Hub.TotalExp = fmt.Sprint(len(snap.Experiments()))
	return snap, nil
}

// RegisteredHubs returns the user's hubs. A hub that reuses the public
// hub's name is dropped, since names identify hubs in the wizard.
func (e *Env) RegisteredHubs(ctx context.Context) ([]hub.HubDescriptor, error) {
	hubs, err := e.Catalog.HubStatus(ctx, e.Config.Portal.Username)
	if err != nil {
		return nil, err
	}

	out := make([]hub.HubDescriptor, 0, len(hubs))
	for _, h := range hubs {
		if h.HubName == e.Config.PublicHub.Name {
			e.Logger.Warn("ignoring registered hub named like the public hub", "hub", h.HubName)
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// NewWizard prepares the create-workflow controller. A failing hub status
// query leaves only the public hub selectable; a failing public hub load
// leaves its experiment list empty.
func (e *Env) NewWizard(ctx context.Context) (*wizard.Controller, error) {
	public, err := e.LoadPublic(ctx)
	if err != nil {
		e.Logger.Warn("public hub unavailable", "error", err)
	}

	hubs, err := e.RegisteredHubs(ctx)
	if err != nil {
		e.Logger.Warn("registered hubs unavailable", "error", err)
		hubs = nil
	}

	return wizard.New(ctx, wizard.Options{
		Store:    e.Store,
		Public:   public,
		Hubs:     hubs,
		Username: e.Config.Portal.Username,
		Logger:   e.Logger,
	})
}
