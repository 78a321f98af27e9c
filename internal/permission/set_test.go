package permission

import (
	"net/http"
	"testing"
)

func TestSetAllows(t *testing.T) {
	explicit := Explicit([]Grant{
		{Resource: "products", Action: ActionView},
		{Resource: "products", Action: ActionCreate},
		{Resource: "orders", Action: ActionView},
	})

	tests := []struct {
		name     string
		set      Set
		resource string
		action   Action
		want     bool
	}{
		{"granted pair", explicit, "products", ActionView, true},
		{"granted second action", explicit, "products", ActionCreate, true},
		{"other resource granted action", explicit, "orders", ActionView, true},
		{"action not granted", explicit, "orders", ActionDelete, false},
		{"resource not granted", explicit, "customers", ActionView, false},
		{"wildcard allows anything", AllGranted(), "customers", ActionDelete, true},
		{"wildcard allows unknown resource", AllGranted(), "reports", ActionView, true},
		{"empty set denies", Explicit(nil), "products", ActionView, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.Allows(tt.resource, tt.action); got != tt.want {
				t.Errorf("Allows(%q, %q) = %v, want %v", tt.resource, tt.action, got, tt.want)
			}
		})
	}
}

func TestAll(t *testing.T) {
	if !AllGranted().All() {
		t.Error("AllGranted().All() = false, want true")
	}
	if Explicit([]Grant{{Resource: "products", Action: ActionView}}).All() {
		t.Error("Explicit(...).All() = true, want false")
	}
}

func TestActionForMethod(t *testing.T) {
	tests := []struct {
		method string
		want   Action
		ok     bool
	}{
		{http.MethodGet, ActionView, true},
		{http.MethodHead, ActionView, true},
		{http.MethodPost, ActionCreate, true},
		{http.MethodPut, ActionUpdate, true},
		{http.MethodPatch, ActionUpdate, true},
		{http.MethodDelete, ActionDelete, true},
		{http.MethodOptions, "", false},
		{"TRACE", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, ok := ActionForMethod(tt.method)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ActionForMethod(%q) = (%q, %v), want (%q, %v)", tt.method, got, ok, tt.want, tt.ok)
			}
		})
	}
}
