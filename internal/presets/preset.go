// Package presets keeps named parameter snapshots per template package and
// persists them through a pluggable Storage.
package presets

import (
	"strings"
	"time"

	"nc-param-manager/internal/parameters"
)

// Preset is a named snapshot of a value map. Identity is (PackageName, Name).
type Preset struct {
	Name        string              `json:"name"`
	PackageName string              `json:"packageName"`
	Parameters  parameters.ValueMap `json:"parameters"`
	CreatedAt   string              `json:"createdAt"`
	Description string              `json:"description,omitempty"`
}

// Created parses CreatedAt; the zero time is returned for malformed values.
func (p Preset) Created() time.Time {
	t, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (p Preset) clone() Preset {
	p.Parameters = p.Parameters.Clone()
	return p
}

func (p Preset) matches(packageName, name string) bool {
	return p.PackageName == packageName && strings.TrimSpace(p.Name) == name
}
