// Package hub models chaos chart hubs and the experiments they publish.
package hub

// HubDescriptor identifies one catalog source.
type HubDescriptor struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	HubName     string `json:"HubName" yaml:"hub_name"`
	RepoURL     string `json:"RepoURL" yaml:"repo_url"`
	RepoBranch  string `json:"RepoBranch" yaml:"repo_branch"`
	IsAvailable bool   `json:"IsAvailable" yaml:"is_available"`
	TotalExp    string `json:"TotalExp,omitempty" yaml:"total_exp,omitempty"`
}

// Chart is a named bundle of experiments published by a hub. Field tags
// follow both the portal's GraphQL schema and chartserviceversion YAML.
type Chart struct {
	APIVersion string        `json:"ApiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Kind       string        `json:"Kind,omitempty" yaml:"kind,omitempty"`
	Metadata   ChartMetadata `json:"Metadata" yaml:"metadata"`
	Spec       ChartSpec     `json:"Spec" yaml:"spec"`
}

// ChartMetadata holds the chart's identifying name.
type ChartMetadata struct {
	Name    string `json:"Name" yaml:"name"`
	Version string `json:"Version,omitempty" yaml:"version,omitempty"`
}

// ChartSpec lists the experiments declared by a chart.
type ChartSpec struct {
	DisplayName         string   `json:"DisplayName,omitempty" yaml:"displayName,omitempty"`
	CategoryDescription string   `json:"CategoryDescription,omitempty" yaml:"categoryDescription,omitempty"`
	Experiments         []string `json:"Experiments,omitempty" yaml:"experiments,omitempty"`
}

// ExperimentEntry is one selectable experiment scoped under a chart.
type ExperimentEntry struct {
	ChaosName      string `json:"chaos_name" yaml:"chaos_name"`
	ExperimentName string `json:"experiment_name" yaml:"experiment_name"`
}

// Key returns "<chaosName>/<experimentName>", the entry's list key.
func (e ExperimentEntry) Key() string {
	return e.ChaosName + "/" + e.ExperimentName
}

// ChartsRequest is the input of a charts query.
type ChartsRequest struct {
	UserName   string `json:"UserName"`
	RepoURL    string `json:"RepoURL"`
	RepoBranch string `json:"RepoBranch"`
	HubName    string `json:"HubName"`
}
