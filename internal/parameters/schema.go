package parameters

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultGroupIcon is shown for groups that declare no icon.
const DefaultGroupIcon = "🔧"

// Schema is the parameter configuration of one template package.
type Schema struct {
	Groups map[string]Group `json:"groups" yaml:"groups"`
}

type Group struct {
	Name        string                `json:"name" yaml:"name"`
	Icon        string                `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  map[string]Definition `json:"parameters" yaml:"parameters"`
}

// Definition describes a single parameter.
type Definition struct {
	Type        Type    `json:"type" yaml:"type"`
	Label       string  `json:"label" yaml:"label"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Default     *Value  `json:"default,omitempty" yaml:"default,omitempty"`
	Required    bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Unit        string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Range       []Value `json:"range,omitempty" yaml:"range,omitempty"`
	Options     []Value `json:"options,omitempty" yaml:"options,omitempty"`
}

// UnmarshalJSON keeps an explicit "default": null as a null default so the
// key is still seeded by Defaults. A missing default stays nil.
func (d *Definition) UnmarshalJSON(data []byte) error {
	type plain Definition
	var raw struct {
		plain
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Definition(raw.plain)
	if raw.Default != nil {
		var v Value
		if err := json.Unmarshal(raw.Default, &v); err != nil {
			return fmt.Errorf("default: %w", err)
		}
		d.Default = &v
	}
	return nil
}

// FlatDefinition is a definition addressed by its "group.param" key.
type FlatDefinition struct {
	Key      string
	GroupKey string
	ParamKey string
	Definition
}

// GroupView is a group with its parameters resolved to flat keys.
type GroupView struct {
	Key         string
	Name        string
	Icon        string
	Description string
	Parameters  []FlatDefinition
}

// Key joins a group key and a parameter key into a value-map key.
func Key(group, param string) string {
	return group + "." + param
}

// SplitKey is the inverse of Key. ok is false when key has no group part.
func SplitKey(key string) (group, param string, ok bool) {
	idx := strings.Index(key, ".")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}

// IsEmpty reports whether the schema declares no parameters at all.
func (s *Schema) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, g := range s.Groups {
		if len(g.Parameters) > 0 {
			return false
		}
	}
	return true
}

// GroupViews returns the groups sorted by key, each with sorted parameters.
func (s *Schema) GroupViews() []GroupView {
	if s == nil {
		return nil
	}
	views := make([]GroupView, 0, len(s.Groups))
	for _, gk := range sortedKeys(s.Groups) {
		g := s.Groups[gk]
		icon := g.Icon
		if icon == "" {
			icon = DefaultGroupIcon
		}
		name := g.Name
		if name == "" {
			name = gk
		}
		view := GroupView{
			Key:         gk,
			Name:        name,
			Icon:        icon,
			Description: g.Description,
			Parameters:  make([]FlatDefinition, 0, len(g.Parameters)),
		}
		for _, pk := range sortedKeys(g.Parameters) {
			view.Parameters = append(view.Parameters, FlatDefinition{
				Key:        Key(gk, pk),
				GroupKey:   gk,
				ParamKey:   pk,
				Definition: g.Parameters[pk],
			})
		}
		views = append(views, view)
	}
	return views
}

// Flatten returns every definition in group order, then parameter order.
func (s *Schema) Flatten() []FlatDefinition {
	var flat []FlatDefinition
	for _, g := range s.GroupViews() {
		flat = append(flat, g.Parameters...)
	}
	return flat
}

// UnknownTypes returns the keys of definitions whose type tag is not one of
// KnownTypes. Such parameters are handled like strings.
func (s *Schema) UnknownTypes() []string {
	var keys []string
	for _, def := range s.Flatten() {
		if !def.Type.IsKnown() {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

// Defaults returns a value map holding only the declared defaults.
// A declared null default seeds the key with null.
func (s *Schema) Defaults() ValueMap {
	values := ValueMap{}
	for _, def := range s.Flatten() {
		if def.Default != nil {
			values[def.Key] = *def.Default
		}
	}
	return values
}

// Lookup finds the definition for a "group.param" key.
func (s *Schema) Lookup(key string) (FlatDefinition, bool) {
	if s == nil {
		return FlatDefinition{}, false
	}
	gk, pk, ok := SplitKey(key)
	if !ok {
		return FlatDefinition{}, false
	}
	g, ok := s.Groups[gk]
	if !ok {
		return FlatDefinition{}, false
	}
	def, ok := g.Parameters[pk]
	if !ok {
		return FlatDefinition{}, false
	}
	return FlatDefinition{Key: key, GroupKey: gk, ParamKey: pk, Definition: def}, true
}

// Has reports whether key is declared by the schema.
func (s *Schema) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}
