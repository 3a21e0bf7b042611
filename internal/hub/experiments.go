package hub

import (
	"fmt"
	"strings"

	cferrors "github.com/chazuruo/chaosflow/internal/errors"
)

// Flatten returns one entry per declared experiment of each chart, in chart
// order. Charts without experiments contribute nothing. Duplicate
// experiment names under different charts are kept as distinct entries.
func Flatten(charts []Chart) []ExperimentEntry {
	total := 0
	for _, c := range charts {
		total += len(c.Spec.Experiments)
	}
	entries := make([]ExperimentEntry, 0, total)
	for _, c := range charts {
		for _, exp := range c.Spec.Experiments {
			entries = append(entries, ExperimentEntry{
				ChaosName:      c.Metadata.Name,
				ExperimentName: exp,
			})
		}
	}
	return entries
}

// EngineURL returns the engine manifest locator for an experiment path
// ("<chaosName>/<experimentName>") in the given hub:
//
//	<repoURL>/raw/<repoBranch>/charts/<experimentPath>/engine.yaml
func EngineURL(h HubDescriptor, experimentPath string) string {
	return fmt.Sprintf("%s/raw/%s/charts/%s/engine.yaml", h.RepoURL, h.RepoBranch, experimentPath)
}

// ParseKey splits "<chaosName>/<experimentName>" into an entry.
func ParseKey(key string) (ExperimentEntry, error) {
	chaos, exp, ok := strings.Cut(key, "/")
	if !ok || chaos == "" || exp == "" || strings.Contains(exp, "/") {
		return ExperimentEntry{}, cferrors.Invalidf("experiment key must be <chart>/<experiment>; got %q", key)
	}
	return ExperimentEntry{ChaosName: chaos, ExperimentName: exp}, nil
}

// Find returns the entry with the given key.
func Find(entries []ExperimentEntry, key string) (ExperimentEntry, bool) {
	for _, e := range entries {
		if e.Key() == key {
			return e, true
		}
	}
	return ExperimentEntry{}, false
}
