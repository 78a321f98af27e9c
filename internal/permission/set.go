// Package permission computes and checks a user's effective
// permission set. Owners get a wildcard; everyone else gets the union
// of the permissions granted by their active roles.
package permission

import "net/http"

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Set is the effective permission set of a user. It is either the
// wildcard (owner) or an explicit set of (resource, action) pairs.
// The wildcard is a tag rather than an enumeration so it stays valid
// as the catalog grows.
type Set struct {
	all     bool
	granted map[grant]struct{}
}

type grant struct {
	resource string
	action   Action
}

// AllGranted returns the owner wildcard set.
func AllGranted() Set {
	return Set{all: true}
}

// Grant names one (resource, action) pair.
type Grant struct {
	Resource string
	Action   Action
}

// Explicit builds a set from enumerated grants.
func Explicit(grants []Grant) Set {
	s := Set{granted: make(map[grant]struct{}, len(grants))}
	for _, g := range grants {
		s.granted[grant{resource: g.Resource, action: g.Action}] = struct{}{}
	}
	return s
}

// Allows reports whether the set grants action on resource.
func (s Set) Allows(resource string, action Action) bool {
	if s.all {
		return true
	}
	_, ok := s.granted[grant{resource: resource, action: action}]
	return ok
}

// All reports whether the set is the owner wildcard.
func (s Set) All() bool {
	return s.all
}

// ActionForMethod maps an HTTP method to the permission action it
// requires: GET views, POST creates, PUT/PATCH update, DELETE deletes.
func ActionForMethod(method string) (Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead:
		return ActionView, true
	case http.MethodPost:
		return ActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate, true
	case http.MethodDelete:
		return ActionDelete, true
	}
	return "", false
}
