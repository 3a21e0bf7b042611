package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/chazuruo/chaosflow/internal/draft"
	"github.com/chazuruo/chaosflow/internal/hub"
	"github.com/chazuruo/chaosflow/internal/wizard"
)

type fakeCatalog struct {
	charts map[string][]hub.Chart
	err    error
}

func (f fakeCatalog) HubStatus(context.Context, string) ([]hub.HubDescriptor, error) {
	return nil, nil
}

func (f fakeCatalog) Charts(_ context.Context, req hub.ChartsRequest) ([]hub.Chart, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.charts[req.HubName], nil
}

func newTestModel(t *testing.T) (CreateWorkflowModel, draft.Store) {
	t.Helper()
	store := draft.NewMemoryStore(draft.WorkflowDraft{})
	ctrl, err := wizard.New(context.Background(), wizard.Options{
		Store: store,
		Public: hub.Snapshot{
			Hub: hub.HubDescriptor{HubName: "Public Hub", RepoURL: "https://github.com/litmuschaos/chaos-charts", RepoBranch: "master"},
			Charts: []hub.Chart{
				{Metadata: hub.ChartMetadata{Name: "pod-delete"}, Spec: hub.ChartSpec{Experiments: []string{"pod-delete"}}},
				{Metadata: hub.ChartMetadata{Name: "generic"}, Spec: hub.ChartSpec{Experiments: []string{"node-drain", "disk-fill"}}},
			},
		},
		Hubs: []hub.HubDescriptor{
			{HubName: "myhub", RepoURL: "https://x/y", RepoBranch: "dev", IsAvailable: true},
		},
		Username: "admin",
	})
	if err != nil {
		t.Fatalf("wizard.New: %v", err)
	}
	catalog := fakeCatalog{charts: map[string][]hub.Chart{
		"myhub": {{Metadata: hub.ChartMetadata{Name: "kafka"}, Spec: hub.ChartSpec{Experiments: []string{"kafka-broker-pod-failure"}}}},
	}}
	return NewCreateWorkflow(context.Background(), ctrl, catalog, true), store
}

func send(m CreateWorkflowModel, msgs ...tea.Msg) (CreateWorkflowModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var model tea.Model
		model, cmd = m.Update(msg)
		m = model.(CreateWorkflowModel)
	}
	return m, cmd
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

// TestNewCreateWorkflow verifies the initial focus and list contents.
func TestNewCreateWorkflow(t *testing.T) {
	m, _ := newTestModel(t)

	if m.focus != focusName {
		t.Errorf("expected focus on name, got %d", m.focus)
	}
	if m.Done || m.Cancelled {
		t.Error("expected neither Done nor Cancelled")
	}

	view := m.View()
	for _, want := range []string{"Public Hub", "myhub", experimentPlaceholder, "generic/disk-fill"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

// TestCreateWorkflow_TypingUpdatesName verifies that keystrokes reach the controller.
func TestCreateWorkflow_TypingUpdatesName(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = send(m, runes("drill")...)

	if got := m.ctrl.Name(); got != "drill" {
		t.Errorf("expected name %q, got %q", "drill", got)
	}

	m, _ = send(m, key(tea.KeyTab))
	m, _ = send(m, runes("kills pods")...)
	if got := m.ctrl.Description(); got != "kills pods" {
		t.Errorf("expected description %q, got %q", "kills pods", got)
	}
}

// TestCreateWorkflow_FocusCycles verifies tab and shift+tab wrap around.
func TestCreateWorkflow_FocusCycles(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(m, key(tea.KeyShiftTab))
	if m.focus != focusNext {
		t.Errorf("expected focus to wrap to next button, got %d", m.focus)
	}
	m, _ = send(m, key(tea.KeyTab))
	if m.focus != focusName {
		t.Errorf("expected focus back on name, got %d", m.focus)
	}
}

// TestCreateWorkflow_PlaceholderNotSelectable verifies row 0 cannot be chosen.
func TestCreateWorkflow_PlaceholderNotSelectable(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = send(m, key(tea.KeyTab), key(tea.KeyTab), key(tea.KeyTab), key(tea.KeyEnter))

	if m.ctrl.CanAdvance() {
		t.Error("placeholder row must not choose an experiment")
	}
}

// TestCreateWorkflow_NextDisabled verifies Next does nothing without an experiment.
func TestCreateWorkflow_NextDisabled(t *testing.T) {
	m, store := newTestModel(t)
	m, cmd := send(m, key(tea.KeyCtrlN))

	if m.Done {
		t.Error("expected Done to be false")
	}
	if cmd != nil {
		t.Error("expected no command")
	}
	if m.status == "" {
		t.Error("expected a status message")
	}

	d, _ := store.Get(context.Background())
	if d.ID != "" {
		t.Errorf("expected no id to be assigned, got %q", d.ID)
	}
}

// TestCreateWorkflow_PublicFlow verifies choosing a public experiment and advancing.
func TestCreateWorkflow_PublicFlow(t *testing.T) {
	m, store := newTestModel(t)

	msgs := runes("drill")
	msgs = append(msgs,
		key(tea.KeyTab), key(tea.KeyTab), key(tea.KeyTab), // experiment list
		key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyEnter), // generic/node-drain
	)
	m, _ = send(m, msgs...)

	chosen, ok := m.ctrl.Chosen()
	if !ok || chosen.Key() != "generic/node-drain" {
		t.Fatalf("expected generic/node-drain to be chosen, got %+v", chosen)
	}

	m, _ = send(m, key(tea.KeyTab), key(tea.KeyEnter))
	if !m.Done || m.Committed == nil {
		t.Fatal("expected the step to be committed")
	}
	if m.Committed.ID == "" {
		t.Error("expected an id to be assigned")
	}

	d, _ := store.Get(context.Background())
	if d.Name != "drill" {
		t.Errorf("expected name %q, got %q", "drill", d.Name)
	}
	want := "https://github.com/litmuschaos/chaos-charts/raw/master/charts/generic/node-drain/engine.yaml"
	if d.CustomWorkflow.YAMLLink != want {
		t.Errorf("expected yaml link %q, got %q", want, d.CustomWorkflow.YAMLLink)
	}
	if d.CustomWorkflow.Index != -1 {
		t.Errorf("expected index -1, got %d", d.CustomWorkflow.Index)
	}
}

// TestCreateWorkflow_RegisteredHubFetch verifies the async chart load.
func TestCreateWorkflow_RegisteredHubFetch(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := send(m, key(tea.KeyTab), key(tea.KeyTab), key(tea.KeyDown), key(tea.KeyEnter))
	if !m.ctrl.Loading() {
		t.Fatal("expected a fetch to be in flight")
	}
	if !strings.Contains(m.View(), "Loading experiments from myhub") {
		t.Error("expected a loading indicator")
	}

	var loaded bool
	for _, msg := range collect(cmd) {
		if _, ok := msg.(chartsLoadedMsg); ok {
			m, _ = send(m, msg)
			loaded = true
		}
	}
	if !loaded {
		t.Fatal("expected a chartsLoadedMsg")
	}
	if m.ctrl.Loading() {
		t.Error("expected loading to finish")
	}
	if !strings.Contains(m.View(), "kafka/kafka-broker-pod-failure") {
		t.Error("expected registered hub experiments in view")
	}
}

// TestCreateWorkflow_PreselectedHubFetchesOnInit verifies a hub chosen
// before the program starts is loaded by Init with a spinner.
func TestCreateWorkflow_PreselectedHubFetchesOnInit(t *testing.T) {
	base, _ := newTestModel(t)
	req, err := base.ctrl.SelectHubByName(context.Background(), "myhub")
	if err != nil || req == nil {
		t.Fatalf("SelectHubByName: req=%v err=%v", req, err)
	}

	m := NewCreateWorkflow(context.Background(), base.ctrl, base.catalog, true).WithFetch(req)
	if !strings.Contains(m.View(), "Loading experiments from myhub") {
		t.Error("expected a loading indicator before Init runs")
	}

	var loaded bool
	for _, msg := range collect(m.Init()) {
		if _, ok := msg.(chartsLoadedMsg); ok {
			m, _ = send(m, msg)
			loaded = true
		}
	}
	if !loaded {
		t.Fatal("expected Init to issue the fetch")
	}
	if !strings.Contains(m.View(), "kafka/kafka-broker-pod-failure") {
		t.Error("expected registered hub experiments in view")
	}
}

// TestCreateWorkflow_FetchErrorShown verifies a failed fetch surfaces in
// the status line, whether it lands in Update or before the model exists.
func TestCreateWorkflow_FetchErrorShown(t *testing.T) {
	base, _ := newTestModel(t)
	ctx := context.Background()
	failing := fakeCatalog{err: errors.New("portal down")}

	req, err := base.ctrl.SelectHubByName(ctx, "myhub")
	if err != nil || req == nil {
		t.Fatalf("SelectHubByName: req=%v err=%v", req, err)
	}
	m := NewCreateWorkflow(ctx, base.ctrl, failing, true).WithFetch(req)
	for _, msg := range collect(m.Init()) {
		if _, ok := msg.(chartsLoadedMsg); ok {
			m, _ = send(m, msg)
		}
	}
	if !strings.Contains(m.View(), "Could not load experiments: portal down") {
		t.Error("expected the fetch error in the status line")
	}

	// A controller that already holds the error seeds the new model.
	seeded := NewCreateWorkflow(ctx, base.ctrl, failing, true)
	if !strings.Contains(seeded.View(), "Could not load experiments: portal down") {
		t.Error("expected the status line to start with the fetch error")
	}
}

// TestCreateWorkflow_StaleFetchIgnored verifies a late result for an old hub is dropped.
func TestCreateWorkflow_StaleFetchIgnored(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := send(m, key(tea.KeyTab), key(tea.KeyTab), key(tea.KeyDown), key(tea.KeyEnter))
	stale := collect(cmd)

	// Back to the public hub before the fetch lands.
	m, _ = send(m, key(tea.KeyUp), key(tea.KeyEnter))
	for _, msg := range stale {
		if _, ok := msg.(chartsLoadedMsg); ok {
			m, _ = send(m, msg)
		}
	}

	if got := len(m.ctrl.Experiments()); got != 3 {
		t.Errorf("expected 3 public experiments, got %d", got)
	}
}

// TestCreateWorkflow_Cancel verifies esc quits without committing.
func TestCreateWorkflow_Cancel(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := send(m, key(tea.KeyEsc))

	if !m.Cancelled {
		t.Error("expected Cancelled to be true")
	}
	if cmd == nil {
		t.Error("expected a quit command")
	}
	if m.Committed != nil {
		t.Error("expected nothing committed")
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		n, cursor, size int
		start, end      int
	}{
		{3, 0, 8, 0, 3},
		{20, 0, 8, 0, 8},
		{20, 10, 8, 6, 14},
		{20, 19, 8, 12, 20},
	}
	for _, tt := range tests {
		start, end := window(tt.n, tt.cursor, tt.size)
		if start != tt.start || end != tt.end {
			t.Errorf("window(%d, %d, %d) = %d, %d; want %d, %d", tt.n, tt.cursor, tt.size, start, end, tt.start, tt.end)
		}
	}
}

func TestCreateWorkflow_Program(t *testing.T) {
	m, store := newTestModel(t)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))
	defer tm.Quit()

	for _, r := range "drill" {
		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	time.Sleep(50 * time.Millisecond)
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlN})

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(CreateWorkflowModel)
	if !ok {
		t.Fatal("unexpected final model type")
	}
	if !final.Done {
		t.Fatal("expected the step to finish")
	}

	d, _ := store.Get(context.Background())
	if d.CustomWorkflow.ExperimentName != "pod-delete/pod-delete" {
		t.Errorf("expected pod-delete/pod-delete, got %q", d.CustomWorkflow.ExperimentName)
	}
}
