package hub

// SelectionKind distinguishes the built-in public hub from registered hubs.
type SelectionKind int

const (
	// KindPublic is the built-in public catalog.
	KindPublic SelectionKind = iota
	// KindRegistered is a hub the user registered with the portal.
	KindRegistered
)

// Selection is the chosen hub. The zero value is not a valid selection;
// use Public or Registered.
type Selection struct {
	Kind SelectionKind
	Hub  HubDescriptor
}

// Public selects the public catalog at the given coordinates.
func Public(h HubDescriptor) Selection {
	return Selection{Kind: KindPublic, Hub: h}
}

// Registered selects a user-registered hub.
func Registered(h HubDescriptor) Selection {
	return Selection{Kind: KindRegistered, Hub: h}
}

// IsPublic reports whether the public catalog is selected.
func (s Selection) IsPublic() bool {
	return s.Kind == KindPublic
}

// Name returns the selected hub's display name.
func (s Selection) Name() string {
	return s.Hub.HubName
}

// Equal reports whether two selections refer to the same hub.
func (s Selection) Equal(o Selection) bool {
	return s.Kind == o.Kind &&
		s.Hub.HubName == o.Hub.HubName &&
		s.Hub.RepoURL == o.Hub.RepoURL &&
		s.Hub.RepoBranch == o.Hub.RepoBranch
}
