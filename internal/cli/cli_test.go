// Package cli provides tests for CLI commands.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/chaosflow/internal/config"
	cferrors "github.com/chazuruo/chaosflow/internal/errors"
	"github.com/chazuruo/chaosflow/internal/testutil"
	"github.com/chazuruo/chaosflow/internal/tui"
)

// withGlobals sets the global flags for one test.
func withGlobals(t *testing.T, cfgPath string) {
	t.Helper()
	NoTUI, ConfigPath, Verbose = true, cfgPath, false
	t.Cleanup(func() {
		NoTUI, ConfigPath, Verbose = false, "", false
	})
}

// writeTestConfig writes a config using a stub portal and a local chart dir.
func writeTestConfig(t *testing.T) (string, *config.Config) {
	t.Helper()
	tmp := t.TempDir()

	portal := testutil.NewPortal(t, testutil.PortalHub{
		ID: "1", Name: "myhub", RepoURL: "https://x/y", Branch: "dev", Available: true,
		Charts: map[string][]string{"kafka": {"kafka-broker-pod-failure"}},
	})
	charts := testutil.WriteChartDir(t, filepath.Join(tmp, "chaos-charts"), map[string][]string{
		"pod-delete": {"pod-delete"},
	})

	cfg := config.DefaultConfig()
	cfg.Portal.URL = portal.URL
	cfg.Portal.Username = "admin"
	cfg.PublicHub.ChartsSource = charts
	cfg.Draft.Backend = "file"
	cfg.Draft.Path = filepath.Join(tmp, "drafts")

	path := filepath.Join(tmp, "config.toml")
	require.NoError(t, config.Write(path, cfg))
	return path, cfg
}

func TestInitNonInteractive_WritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chaosflow", "config.toml")
	withGlobals(t, path)

	var out bytes.Buffer
	err := runInit(&out, &InitOptions{
		PortalURL: "https://portal.example.com",
		Username:  "alice",
		Backend:   "redis",
		RedisAddr: "redis:6379",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.com", cfg.Portal.URL)
	assert.Equal(t, "alice", cfg.Portal.Username)
	assert.Equal(t, "redis", cfg.Draft.Backend)
	assert.Equal(t, "redis:6379", cfg.Draft.RedisAddr)
}

func TestInitNonInteractive_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	withGlobals(t, path)

	var out bytes.Buffer
	require.NoError(t, runInit(&out, &InitOptions{}))

	err := runInit(&out, &InitOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	assert.NoError(t, runInit(&out, &InitOptions{Force: true, Username: "bob"}))
}

func TestInitNonInteractive_Invalid(t *testing.T) {
	withGlobals(t, filepath.Join(t.TempDir(), "config.toml"))

	err := runInit(&bytes.Buffer{}, &InitOptions{Backend: "etcd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draft.backend")
}

func TestHubs(t *testing.T) {
	path, _ := writeTestConfig(t)
	withGlobals(t, path)

	var out bytes.Buffer
	require.NoError(t, runHubs(context.Background(), &out, &bytes.Buffer{}, &HubsOptions{Format: "plain"}))
	assert.Equal(t, "Public Hub\nmyhub\n", out.String())
}

func TestExperiments(t *testing.T) {
	path, _ := writeTestConfig(t)
	withGlobals(t, path)

	var out bytes.Buffer
	require.NoError(t, runExperiments(context.Background(), &out, &bytes.Buffer{}, &ExperimentsOptions{Format: "json"}))

	var rows []struct {
		Key      string `json:"key"`
		YAMLLink string `json:"yaml_link"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "pod-delete/pod-delete", rows[0].Key)
	assert.Equal(t, "https://github.com/litmuschaos/chaos-charts/raw/master/charts/pod-delete/pod-delete/engine.yaml", rows[0].YAMLLink)

	out.Reset()
	require.NoError(t, runExperiments(context.Background(), &out, &bytes.Buffer{}, &ExperimentsOptions{Hub: "myhub", Format: "plain"}))
	assert.Equal(t, "kafka/kafka-broker-pod-failure\n", out.String())
}

func TestExperiments_UnknownHub(t *testing.T) {
	path, _ := writeTestConfig(t)
	withGlobals(t, path)

	err := runExperiments(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, &ExperimentsOptions{Hub: "ghost", Format: "plain"})
	assert.True(t, cferrors.IsNotFound(err))
}

func TestCreateShowReset(t *testing.T) {
	path, cfg := writeTestConfig(t)
	withGlobals(t, path)
	ctx := context.Background()

	var out bytes.Buffer
	err := runCreate(ctx, &out, &bytes.Buffer{}, &CreateOptions{
		Hub:        "myhub",
		Experiment: "kafka/kafka-broker-pod-failure",
		Name:       "Kafka Drill",
		Format:     "yaml",
		nameSet:    true,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "name: Kafka Drill")
	assert.Contains(t, out.String(), "yaml_link: https://x/y/raw/dev/charts/kafka/kafka-broker-pod-failure/engine.yaml")
	assert.FileExists(t, filepath.Join(cfg.Draft.Path, "committed", "kafka-drill.yaml"))

	out.Reset()
	require.NoError(t, runDraftShow(ctx, &out, &bytes.Buffer{}, "json"))
	assert.Contains(t, out.String(), `"hub_name": "myhub"`)
	assert.Contains(t, out.String(), `"index": -1`)

	out.Reset()
	require.NoError(t, runDraftReset(ctx, &out, &bytes.Buffer{}))
	assert.Equal(t, "Draft discarded.\n", out.String())

	out.Reset()
	require.NoError(t, runDraftShow(ctx, &out, &bytes.Buffer{}, "yaml"))
	assert.Contains(t, out.String(), `name: ""`)
}

func TestCreate_RequiresExperiment(t *testing.T) {
	path, _ := writeTestConfig(t)
	withGlobals(t, path)

	err := runCreate(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, &CreateOptions{Format: "yaml"})
	assert.True(t, cferrors.IsInvalid(err))
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runVersion(&out, &VersionOptions{Short: true}, "1.2.3", "abc", "today", "ci"))
	assert.Equal(t, "1.2.3\n", out.String())

	out.Reset()
	require.NoError(t, runVersion(&out, &VersionOptions{JSON: true}, "1.2.3", "abc", "today", "ci"))
	var info VersionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "abc", info.Commit)

	out.Reset()
	require.NoError(t, runVersion(&out, &VersionOptions{}, "1.2.3", "abc", "today", "unknown"))
	assert.Contains(t, out.String(), "chaosflow version 1.2.3")
	assert.NotContains(t, out.String(), "built by")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"canceled", cferrors.ErrCanceled, ExitCanceled},
		{"context canceled", fmt.Errorf("tui: %w", context.Canceled), ExitCanceled},
		{"invalid", cferrors.Invalidf("bad key"), ExitUsage},
		{"invalid config", &cferrors.ConfigError{Path: "c.toml", Err: cferrors.Invalidf("bad")}, ExitError},
		{"corrupt draft", &cferrors.DraftError{Op: "get", Err: cferrors.ErrInvalid}, ExitError},
		{"network", &cferrors.HubError{Op: "charts", Err: cferrors.ErrNetwork}, ExitError},
		{"plain", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestHint(t *testing.T) {
	assert.Contains(t, Hint(&cferrors.ConfigError{Path: "c.toml", Err: cferrors.ErrNotFound}), "chaosflow init")
	assert.Contains(t, Hint(&cferrors.ConfigError{Path: "c.toml", Err: cferrors.ErrInvalid}), "c.toml")
	assert.Contains(t, Hint(&cferrors.DraftError{Op: "get", Err: cferrors.ErrInvalid}), "draft reset")
	assert.Contains(t, Hint(&cferrors.DraftError{Op: "merge", Err: cferrors.ErrIO}), "[draft] path")
	assert.Contains(t, Hint(&cferrors.DraftError{Op: "merge", Err: cferrors.ErrNetwork}), "redis_addr")
	assert.Contains(t, Hint(&cferrors.HubError{Op: "select", Hub: "ghost", Err: cferrors.ErrNotFound}), "chaosflow hubs")
	assert.Contains(t, Hint(&cferrors.HubError{Op: "charts", Err: cferrors.ErrNetwork}), "[portal]")
	assert.Contains(t, Hint(&cferrors.HubError{Op: "load", Err: cferrors.ErrIO}), "charts_source")
	assert.Contains(t, Hint(cferrors.Invalidf("experiment key must be <chart>/<experiment>")), "--help")
	assert.Empty(t, Hint(errors.New("boom")))
}

func TestFlagErrorsAreUsageErrors(t *testing.T) {
	root := &cobra.Command{Use: "chaosflow", SilenceUsage: true, SilenceErrors: true}
	SetFlagErrors(root)
	root.AddCommand(&cobra.Command{Use: "hubs", RunE: func(*cobra.Command, []string) error { return nil }})
	root.SetArgs([]string{"hubs", "--bogus"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
	assert.Contains(t, err.Error(), "bogus")
}

func TestFinishCreate(t *testing.T) {
	path, _ := writeTestConfig(t)
	withGlobals(t, path)
	ctx := context.Background()

	cfg, err := loadConfig()
	require.NoError(t, err)
	env, closeEnv, err := openEnv(cfg, &bytes.Buffer{}, false)
	require.NoError(t, err)
	defer closeEnv()

	ctrl, err := env.NewWizard(ctx)
	require.NoError(t, err)
	m := tui.NewCreateWorkflow(ctx, ctrl, env.Catalog, false)

	t.Run("esc cancels", func(t *testing.T) {
		final, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		var out bytes.Buffer
		err := finishCreate(ctx, &out, env, final)
		assert.True(t, cferrors.IsCanceled(err))
		assert.Equal(t, ExitCanceled, ExitCode(err))
		assert.Equal(t, "Cancelled.\n", out.String())
	})

	t.Run("committed draft is archived", func(t *testing.T) {
		ctrl.SetName("Pod Drill")
		require.NoError(t, ctrl.SelectExperiment(ctx, "pod-delete/pod-delete"))
		d, err := ctrl.Next(ctx)
		require.NoError(t, err)

		done := m
		done.Committed = &d
		done.Done = true

		var out bytes.Buffer
		require.NoError(t, finishCreate(ctx, &out, env, done))
		assert.Contains(t, out.String(), "Experiment: pod-delete/pod-delete")
		assert.Contains(t, out.String(), filepath.Join("committed", "pod-drill.yaml"))
	})
}
