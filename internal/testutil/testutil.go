// Package testutil provides helper functions for testing.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteChartDir lays out charts like the chaos-charts repository under
// dir/charts and returns dir. charts maps a chart name to its experiments.
func WriteChartDir(t *testing.T, dir string, charts map[string][]string) string {
	t.Helper()

	for name, experiments := range charts {
		chartDir := filepath.Join(dir, "charts", name)
		if err := os.MkdirAll(chartDir, 0755); err != nil {
			t.Fatalf("failed to create chart dir: %v", err)
		}
		path := filepath.Join(chartDir, name+".chartserviceversion.yaml")
		if err := os.WriteFile(path, []byte(ChartYAML(name, experiments...)), 0644); err != nil {
			t.Fatalf("failed to write chart: %v", err)
		}
	}
	return dir
}

// ChartYAML renders one chartserviceversion document.
func ChartYAML(name string, experiments ...string) string {
	var b strings.Builder
	b.WriteString("apiVersion: litmuchaos.io/v1alpha1\n")
	b.WriteString("kind: ChartServiceVersion\n")
	fmt.Fprintf(&b, "metadata:\n  name: %s\n  version: 0.1.0\n", name)
	b.WriteString("spec:\n")
	fmt.Fprintf(&b, "  displayName: %s\n", name)
	if len(experiments) > 0 {
		b.WriteString("  experiments:\n")
		for _, e := range experiments {
			fmt.Fprintf(&b, "    - %s\n", e)
		}
	}
	return b.String()
}

// PortalHub is a registered hub served by NewPortal.
type PortalHub struct {
	ID        string
	Name      string
	RepoURL   string
	Branch    string
	Available bool
	// Charts maps a chart name to its experiments.
	Charts map[string][]string
}

// NewPortal starts a GraphQL stub answering getHubStatus with hubs and
// getCharts with the charts of the hub named in the request. The server is
// closed when the test completes.
func NewPortal(t *testing.T, hubs ...PortalHub) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string `json:"query"`
			Variables struct {
				Data json.RawMessage `json:"data"`
			} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var data map[string]any
		switch {
		case strings.Contains(req.Query, "getHubStatus"):
			status := make([]map[string]any, 0, len(hubs))
			for _, h := range hubs {
				total := 0
				for _, exps := range h.Charts {
					total += len(exps)
				}
				status = append(status, map[string]any{
					"id":          h.ID,
					"HubName":     h.Name,
					"RepoURL":     h.RepoURL,
					"RepoBranch":  h.Branch,
					"IsAvailable": h.Available,
					"TotalExp":    fmt.Sprint(total),
				})
			}
			data = map[string]any{"getHubStatus": status}

		case strings.Contains(req.Query, "getCharts"):
			var in struct {
				HubName string `json:"HubName"`
			}
			if err := json.Unmarshal(req.Variables.Data, &in); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			charts := []map[string]any{}
			for _, h := range hubs {
				if h.Name != in.HubName {
					continue
				}
				for name, exps := range h.Charts {
					charts = append(charts, map[string]any{
						"Metadata": map[string]any{"Name": name},
						"Spec":     map[string]any{"Experiments": exps},
					})
				}
			}
			data = map[string]any{"getCharts": charts}

		default:
			http.Error(w, "unknown query", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(srv.Close)
	return srv
}
