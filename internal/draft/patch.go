package draft

// Patch is a partial draft update. Nil fields are left unchanged.
type Patch struct {
	ID             *string
	// IDIfEmpty sets ID only when the stored draft has none. Stores apply
	// it inside the same write as the rest of the patch.
	IDIfEmpty      *string
	Name           *string
	Description    *string
	CustomWorkflow CustomPatch
}

// CustomPatch is a partial CustomWorkflow update.
type CustomPatch struct {
	HubName        *string
	RepoURL        *string
	RepoBranch     *string
	ExperimentName *string
	YAMLLink       *string
	YAML           *string
	Index          *int
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Int returns a pointer to i, for building patches.
func Int(i int) *int { return &i }

// Apply returns d with every non-nil field of p written over it.
func Apply(d WorkflowDraft, p Patch) WorkflowDraft {
	set(&d.ID, p.ID)
	if p.IDIfEmpty != nil && d.ID == "" {
		d.ID = *p.IDIfEmpty
	}
	set(&d.Name, p.Name)
	set(&d.Description, p.Description)

	cw := &d.CustomWorkflow
	pc := p.CustomWorkflow
	set(&cw.HubName, pc.HubName)
	set(&cw.RepoURL, pc.RepoURL)
	set(&cw.RepoBranch, pc.RepoBranch)
	set(&cw.ExperimentName, pc.ExperimentName)
	set(&cw.YAMLLink, pc.YAMLLink)
	set(&cw.YAML, pc.YAML)
	set(&cw.Index, pc.Index)
	return d
}

// IsEmpty reports whether p changes nothing.
func (p Patch) IsEmpty() bool {
	pc := p.CustomWorkflow
	return p.ID == nil && p.IDIfEmpty == nil && p.Name == nil && p.Description == nil &&
		pc.HubName == nil && pc.RepoURL == nil && pc.RepoBranch == nil &&
		pc.ExperimentName == nil && pc.YAMLLink == nil && pc.YAML == nil && pc.Index == nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
