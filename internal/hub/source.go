package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	cferrors "github.com/chazuruo/chaosflow/internal/errors"
)

// Snapshot is an already-loaded hub: its coordinates and its charts.
type Snapshot struct {
	Hub    HubDescriptor
	Charts []Chart
}

// Experiments flattens the snapshot's charts.
func (s Snapshot) Experiments() []ExperimentEntry {
	return Flatten(s.Charts)
}

// LoadPublic loads the public hub snapshot. A non-empty source is read
// with LoadCharts; otherwise the charts are queried from catalog with the
// public hub's coordinates.
func LoadPublic(ctx context.Context, public HubDescriptor, source string, catalog Catalog, username string) (Snapshot, error) {
	var (
		charts []Chart
		err    error
	)
	if source != "" {
		charts, err = LoadCharts(ctx, source, http.DefaultClient)
	} else {
		charts, err = catalog.Charts(ctx, ChartsRequest{
			UserName:   username,
			RepoURL:    public.RepoURL,
			RepoBranch: public.RepoBranch,
			HubName:    public.HubName,
		})
	}
	if err != nil {
		return Snapshot{Hub: public}, err
	}
	return Snapshot{Hub: public, Charts: charts}, nil
}

// LoadCharts reads chartserviceversion documents from source, which is
// either an http(s) URL serving a multi-document YAML stream or a local
// directory laid out like the chaos-charts repository
// (<dir>[/charts]/<chart>/<chart>.chartserviceversion.yaml).
func LoadCharts(ctx context.Context, source string, client *http.Client) ([]Chart, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetchCharts(ctx, source, client)
	}
	return readChartDir(source)
}

func fetchCharts(ctx context.Context, url string, client *http.Client) ([]Chart, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &cferrors.HubError{Op: "load", Err: err}
	}
	req.Header.Set("User-Agent", "chaosflow")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &cferrors.HubError{Op: "load", Err: fmt.Errorf("%w: %v", cferrors.ErrNetwork, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &cferrors.HubError{Op: "load", Err: fmt.Errorf("%w: %s returned status %d", cferrors.ErrNetwork, url, resp.StatusCode)}
	}
	return DecodeCharts(resp.Body)
}

func readChartDir(dir string) ([]Chart, error) {
	if info, err := os.Stat(filepath.Join(dir, "charts")); err == nil && info.IsDir() {
		dir = filepath.Join(dir, "charts")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, &cferrors.HubError{Op: "load", Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
	}

	// Only category-level documents; experiment directories sit one level deeper.
	paths, err := filepath.Glob(filepath.Join(dir, "*", "*.chartserviceversion.yaml"))
	if err != nil {
		return nil, &cferrors.HubError{Op: "load", Err: err}
	}

	var charts []Chart
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, &cferrors.HubError{Op: "load", Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
		}
		docs, err := DecodeCharts(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		charts = append(charts, docs...)
	}
	return charts, nil
}

// DecodeCharts decodes a YAML stream of chartserviceversion documents.
// Documents without a metadata.name are skipped.
func DecodeCharts(r io.Reader) ([]Chart, error) {
	dec := yaml.NewDecoder(r)
	var charts []Chart
	for {
		var c Chart
		err := dec.Decode(&c)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &cferrors.HubError{Op: "decode", Err: fmt.Errorf("%w: %v", cferrors.ErrInvalid, err)}
		}
		if c.Metadata.Name == "" {
			continue
		}
		charts = append(charts, c)
	}
	return charts, nil
}
