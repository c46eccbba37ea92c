package domain

import "strings"

// Action is a unit of work the dispatcher can perform
type Action string

const (
	ActionDelete    Action = "delete"
	ActionConfigure Action = "configure"
	ActionBuild     Action = "build"
)

// ActionOrder is the fixed execution order when several actions are requested
var ActionOrder = []Action{ActionDelete, ActionConfigure, ActionBuild}

// ActionSet is a set of requested actions.
// The zero value is an empty set that is safe to read but not to Add to;
// use NewActionSet.
type ActionSet map[Action]struct{}

// NewActionSet creates a set holding the given actions
func NewActionSet(actions ...Action) ActionSet {
	s := make(ActionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

// Add inserts a into the set
func (s ActionSet) Add(a Action) { s[a] = struct{}{} }

// Has reports whether a was requested
func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// Empty reports whether no action was requested
func (s ActionSet) Empty() bool { return len(s) == 0 }

// Ordered returns the requested actions in execution order
func (s ActionSet) Ordered() []Action {
	var out []Action
	for _, a := range ActionOrder {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// Clone returns a copy that can be modified independently
func (s ActionSet) Clone() ActionSet {
	out := make(ActionSet, len(s))
	for a := range s {
		out[a] = struct{}{}
	}
	return out
}

func (s ActionSet) String() string {
	ordered := s.Ordered()
	names := make([]string, len(ordered))
	for i, a := range ordered {
		names[i] = string(a)
	}
	return strings.Join(names, ",")
}
