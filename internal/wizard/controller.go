// Package wizard implements the create-workflow step: naming the workflow,
// choosing a hub and one of its experiments, and committing the draft.
//
// The Controller is independent of any terminal framework. Asynchronous
// chart fetches are described by FetchRequest values that the caller runs
// (see Fetch) and hands back with ApplyFetch; results from superseded
// requests are discarded.
package wizard

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/chazuruo/chaosflow/internal/draft"
	cferrors "github.com/chazuruo/chaosflow/internal/errors"
	"github.com/chazuruo/chaosflow/internal/hub"
	"github.com/chazuruo/chaosflow/internal/logging"
)

// NextStep is the wizard step reached after a successful Next.
const NextStep = 1

// State is the observable state of the step.
type State int

const (
	// StatePublicHubDefault is the initial state: public hub, nothing chosen.
	StatePublicHubDefault State = iota
	// StateHubChosen means a hub was picked but no experiment yet.
	StateHubChosen
	// StateLoading means a registered hub's charts are being fetched.
	StateLoading
	// StateExperimentChosen means Next is allowed.
	StateExperimentChosen
)

func (s State) String() string {
	switch s {
	case StatePublicHubDefault:
		return "public-hub-default"
	case StateHubChosen:
		return "hub-chosen"
	case StateLoading:
		return "loading"
	case StateExperimentChosen:
		return "experiment-chosen"
	}
	return "unknown"
}

// Options configures a Controller.
type Options struct {
	// Store holds the shared draft. Required.
	Store draft.Store
	// Public is the already-loaded public hub.
	Public hub.Snapshot
	// Hubs are the user's registered hubs.
	Hubs []hub.HubDescriptor
	// Username is sent with chart queries.
	Username string
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// FetchRequest describes a chart fetch the caller must run.
type FetchRequest struct {
	Generation uint64
	Hub        hub.HubDescriptor
	Request    hub.ChartsRequest
}

// FetchResult is the outcome of a FetchRequest, tagged with its origin.
type FetchResult struct {
	Generation uint64
	Hub        hub.HubDescriptor
	Charts     []hub.Chart
	Err        error
}

// Fetch runs req against catalog.
func Fetch(ctx context.Context, catalog hub.Catalog, req FetchRequest) FetchResult {
	charts, err := catalog.Charts(ctx, req.Request)
	return FetchResult{Generation: req.Generation, Hub: req.Hub, Charts: charts, Err: err}
}

// Controller owns the step's local state and proposes draft merges.
type Controller struct {
	store    draft.Store
	public   hub.Snapshot
	hubs     []hub.HubDescriptor
	username string
	logger   *slog.Logger
	newID    func() string

	name        string
	description string

	selection   hub.Selection
	hubChosen   bool
	experiments []hub.ExperimentEntry
	chosen      *hub.ExperimentEntry

	generation uint64
	loading    bool
	fetchErr   error
}

// New reads the current draft, selects the public hub and records its
// coordinates in the draft.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, cferrors.Invalidf("wizard needs a draft store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	d, err := opts.Store.Get(ctx)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		store:       opts.Store,
		public:      opts.Public,
		hubs:        slices.Clone(opts.Hubs),
		username:    opts.Username,
		logger:      logger,
		newID:       uuid.NewString,
		name:        d.Name,
		description: d.Description,
	}

	sel := hub.Public(opts.Public.Hub)
	if _, err := c.store.Merge(ctx, hubPatch(sel)); err != nil {
		return nil, err
	}
	c.selection = sel
	c.experiments = opts.Public.Experiments()
	return c, nil
}

// hubPatch records a hub choice and clears any experiment chosen under the
// previous hub, keeping the locator consistent with the hub fields.
func hubPatch(sel hub.Selection) draft.Patch {
	return draft.Patch{CustomWorkflow: draft.CustomPatch{
		HubName:        draft.String(sel.Hub.HubName),
		RepoURL:        draft.String(sel.Hub.RepoURL),
		RepoBranch:     draft.String(sel.Hub.RepoBranch),
		ExperimentName: draft.String(""),
		YAMLLink:       draft.String(""),
	}}
}

// HubOptions lists the selectable hubs, public first.
func (c *Controller) HubOptions() []hub.Selection {
	opts := make([]hub.Selection, 0, len(c.hubs)+1)
	opts = append(opts, hub.Public(c.public.Hub))
	for _, h := range c.hubs {
		opts = append(opts, hub.Registered(h))
	}
	return opts
}

// SelectHub switches to sel. For the public hub the experiment list is
// rebuilt immediately and nil is returned. For a registered hub the list
// is cleared and the returned request must be run and fed to ApplyFetch.
func (c *Controller) SelectHub(ctx context.Context, sel hub.Selection) (*FetchRequest, error) {
	if _, err := c.store.Merge(ctx, hubPatch(sel)); err != nil {
		return nil, err
	}

	c.generation++
	c.selection = sel
	c.hubChosen = true
	c.chosen = nil
	c.fetchErr = nil

	if sel.IsPublic() {
		c.loading = false
		c.experiments = c.public.Experiments()
		c.logger.Debug("public hub selected", "experiments", len(c.experiments))
		return nil, nil
	}

	c.loading = true
	c.experiments = nil
	req := &FetchRequest{
		Generation: c.generation,
		Hub:        sel.Hub,
		Request: hub.ChartsRequest{
			UserName:   c.username,
			RepoURL:    sel.Hub.RepoURL,
			RepoBranch: sel.Hub.RepoBranch,
			HubName:    sel.Hub.HubName,
		},
	}
	c.logger.Debug("fetching charts", "hub", sel.Hub.HubName, "generation", c.generation)
	return req, nil
}

// SelectHubByName resolves name against the public hub and the registered
// hubs, then calls SelectHub.
func (c *Controller) SelectHubByName(ctx context.Context, name string) (*FetchRequest, error) {
	if name == "" || name == c.public.Hub.HubName {
		return c.SelectHub(ctx, hub.Public(c.public.Hub))
	}
	for _, h := range c.hubs {
		if h.HubName == name {
			return c.SelectHub(ctx, hub.Registered(h))
		}
	}
	return nil, &cferrors.HubError{Op: "select", Hub: name, Err: cferrors.ErrNotFound}
}

// ApplyFetch installs a fetch result. It returns false, changing nothing,
// when the result belongs to a superseded hub selection.
func (c *Controller) ApplyFetch(res FetchResult) bool {
	if res.Generation != c.generation || c.selection.IsPublic() || res.Hub.HubName != c.selection.Hub.HubName {
		c.logger.Debug("discarding stale chart result",
			"hub", res.Hub.HubName, "generation", res.Generation, "current", c.generation)
		return false
	}

	c.loading = false
	if res.Err != nil {
		c.fetchErr = res.Err
		c.experiments = []hub.ExperimentEntry{}
		c.logger.Warn("chart fetch failed", "hub", res.Hub.HubName, "error", res.Err)
		return true
	}

	c.experiments = hub.Flatten(res.Charts)
	c.logger.Debug("charts loaded", "hub", res.Hub.HubName, "experiments", len(c.experiments))
	return true
}

// SelectExperiment chooses the entry with key "<chaosName>/<experimentName>"
// and records it with its engine locator in the draft.
func (c *Controller) SelectExperiment(ctx context.Context, key string) error {
	if c.loading {
		return cferrors.Invalidf("experiments for %q are still loading", c.selection.Name())
	}
	entry, ok := hub.Find(c.experiments, key)
	if !ok {
		return cferrors.Invalidf("experiment %q is not offered by %q", key, c.selection.Name())
	}

	link := hub.EngineURL(c.selection.Hub, entry.Key())
	if _, err := c.store.Merge(ctx, draft.Patch{CustomWorkflow: draft.CustomPatch{
		ExperimentName: draft.String(entry.Key()),
		YAMLLink:       draft.String(link),
	}}); err != nil {
		return err
	}

	c.chosen = &entry
	c.logger.Debug("experiment selected", "experiment", entry.Key(), "yaml_link", link)
	return nil
}

// SetName edits the local workflow name.
func (c *Controller) SetName(name string) { c.name = name }

// SetDescription edits the local workflow description.
func (c *Controller) SetDescription(desc string) { c.description = desc }

// Name returns the local workflow name.
func (c *Controller) Name() string { return c.name }

// Description returns the local workflow description.
func (c *Controller) Description() string { return c.description }

// Selection returns the current hub.
func (c *Controller) Selection() hub.Selection { return c.selection }

// Experiments returns a copy of the current experiment list.
func (c *Controller) Experiments() []hub.ExperimentEntry {
	return slices.Clone(c.experiments)
}

// Chosen returns the chosen experiment, if any.
func (c *Controller) Chosen() (hub.ExperimentEntry, bool) {
	if c.chosen == nil {
		return hub.ExperimentEntry{}, false
	}
	return *c.chosen, true
}

// Loading reports whether a chart fetch is in flight.
func (c *Controller) Loading() bool { return c.loading }

// FetchErr returns the last chart fetch error for the current hub.
func (c *Controller) FetchErr() error { return c.fetchErr }

// CanAdvance reports whether Next is enabled.
func (c *Controller) CanAdvance() bool { return c.chosen != nil }

// State returns the current state.
func (c *Controller) State() State {
	switch {
	case c.loading:
		return StateLoading
	case c.chosen != nil:
		return StateExperimentChosen
	case c.hubChosen:
		return StateHubChosen
	}
	return StatePublicHubDefault
}

// Next commits the edited name and description, resets the raw YAML and
// step index, and returns the committed draft. The caller then moves to
// NextStep.
func (c *Controller) Next(ctx context.Context) (draft.WorkflowDraft, error) {
	if !c.CanAdvance() {
		return draft.WorkflowDraft{}, cferrors.Invalidf("choose an experiment before continuing")
	}

	p := draft.Patch{
		IDIfEmpty:   draft.String(c.newID()),
		Name:        draft.String(c.name),
		Description: draft.String(c.description),
		CustomWorkflow: draft.CustomPatch{
			YAML:  draft.String(""),
			Index: draft.Int(-1),
		},
	}
	d, err := c.store.Merge(ctx, p)
	if err != nil {
		return draft.WorkflowDraft{}, err
	}
	c.logger.Info("workflow draft committed", "id", d.ID, "name", d.Name, "experiment", d.CustomWorkflow.ExperimentName)
	return d, nil
}
