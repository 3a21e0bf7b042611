package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCharts() []Chart {
	return []Chart{
		{Metadata: ChartMetadata{Name: "pod-delete"}, Spec: ChartSpec{Experiments: []string{"pod-delete", "pod-network-loss"}}},
		{Metadata: ChartMetadata{Name: "empty"}},
		{Metadata: ChartMetadata{Name: "generic"}, Spec: ChartSpec{Experiments: []string{"pod-delete", "node-drain", "disk-fill"}}},
	}
}

func TestFlatten_LengthIsSumOfExperiments(t *testing.T) {
	charts := sampleCharts()
	want := 0
	for _, c := range charts {
		want += len(c.Spec.Experiments)
	}

	assert.Len(t, Flatten(charts), want)
}

func TestFlatten_KeysAndOrder(t *testing.T) {
	entries := Flatten(sampleCharts())

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key()
	}
	assert.Equal(t, []string{
		"pod-delete/pod-delete",
		"pod-delete/pod-network-loss",
		"generic/pod-delete",
		"generic/node-drain",
		"generic/disk-fill",
	}, keys)
}

func TestFlatten_NoDeduplication(t *testing.T) {
	entries := Flatten(sampleCharts())

	count := 0
	for _, e := range entries {
		if e.ExperimentName == "pod-delete" {
			count++
		}
	}
	assert.Equal(t, 2, count, "same experiment under two charts must appear twice")
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.NotNil(t, Flatten(nil))
}

func TestFlatten_DoesNotAliasInput(t *testing.T) {
	charts := sampleCharts()
	first := Flatten(charts)
	second := Flatten(charts)
	first[0].ExperimentName = "mutated"
	assert.Equal(t, "pod-delete", second[0].ExperimentName)
}

func TestEngineURL(t *testing.T) {
	tests := []struct {
		name string
		hub  HubDescriptor
		path string
		want string
	}{
		{
			name: "public hub",
			hub:  HubDescriptor{HubName: "Public Hub", RepoURL: "https://github.com/litmuschaos/chaos-charts", RepoBranch: "master"},
			path: "pod-delete/pod-delete",
			want: "https://github.com/litmuschaos/chaos-charts/raw/master/charts/pod-delete/pod-delete/engine.yaml",
		},
		{
			name: "registered hub",
			hub:  HubDescriptor{HubName: "myhub", RepoURL: "https://x/y", RepoBranch: "dev"},
			path: "generic/node-drain",
			want: "https://x/y/raw/dev/charts/generic/node-drain/engine.yaml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EngineURL(tt.hub, tt.path))
		})
	}
}

func TestParseKey(t *testing.T) {
	e, err := ParseKey("generic/pod-delete")
	require.NoError(t, err)
	assert.Equal(t, ExperimentEntry{ChaosName: "generic", ExperimentName: "pod-delete"}, e)

	for _, bad := range []string{"", "pod-delete", "/x", "x/", "a/b/c"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, "key %q", bad)
	}
}

func TestFind(t *testing.T) {
	entries := Flatten(sampleCharts())

	e, ok := Find(entries, "generic/node-drain")
	require.True(t, ok)
	assert.Equal(t, "node-drain", e.ExperimentName)

	_, ok = Find(entries, "generic/missing")
	assert.False(t, ok)
}

func TestSelection(t *testing.T) {
	pub := Public(HubDescriptor{HubName: "Public Hub"})
	reg := Registered(HubDescriptor{HubName: "Public Hub"})

	assert.True(t, pub.IsPublic())
	assert.False(t, reg.IsPublic())
	assert.False(t, pub.Equal(reg), "a registered hub sharing the public name is a different selection")
	assert.True(t, pub.Equal(Public(HubDescriptor{HubName: "Public Hub"})))
	assert.Equal(t, "Public Hub", reg.Name())
}
