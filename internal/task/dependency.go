package task

// DependencyType encodes which endpoints of two tasks a dependency links.
type DependencyType string

const (
	FinishToStart  DependencyType = "finish_to_start"
	StartToStart   DependencyType = "start_to_start"
	FinishToFinish DependencyType = "finish_to_finish"
	StartToFinish  DependencyType = "start_to_finish"
)

// ValidDependencyTypes returns all valid dependency types.
func ValidDependencyTypes() []DependencyType {
	return []DependencyType{FinishToStart, StartToStart, FinishToFinish, StartToFinish}
}

// IsValidDependencyType returns true if dt is a valid dependency type.
func IsValidDependencyType(dt DependencyType) bool {
	switch dt {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	default:
		return false
	}
}

// Dependency is a directed scheduling constraint between two tasks:
// From is the predecessor, To the successor. The graph formed by all
// dependencies must stay acyclic.
type Dependency struct {
	From int            `yaml:"from_id" json:"fromId"`
	To   int            `yaml:"to_id" json:"toId"`
	Type DependencyType `yaml:"type" json:"type"`

	// Lag is an offset in days applied after the predecessor constraint.
	Lag int `yaml:"lag,omitempty" json:"lag,omitempty"`
}

// Clone returns a copy of the dependency.
func (d *Dependency) Clone() *Dependency {
	c := *d
	return &c
}

// CloneDependencies deep-copies a dependency slice.
func CloneDependencies(deps []*Dependency) []*Dependency {
	out := make([]*Dependency, len(deps))
	for i, d := range deps {
		out[i] = d.Clone()
	}
	return out
}
