package session

import (
	"math"

	"nc-param-manager/internal/parameters"
)

// GroupStat summarizes one parameter group.
type GroupStat struct {
	Key        string `json:"key" yaml:"key"`
	Name       string `json:"name" yaml:"name"`
	Icon       string `json:"icon" yaml:"icon"`
	Total      int    `json:"total" yaml:"total"`
	Required   int    `json:"required" yaml:"required"`
	Filled     int    `json:"filled" yaml:"filled"`
	Errors     int    `json:"errors" yaml:"errors"`
	Warnings   int    `json:"warnings" yaml:"warnings"`
	Completion int    `json:"completion" yaml:"completion"`
}

func (s *Session) PackageName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packageName
}

// Schema returns the current schema, nil before the first successful load.
func (s *Session) Schema() *parameters.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Error returns the last recorded load or calculation error, "" when none.
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// Value returns the current value of key.
func (s *Session) Value(key string) (parameters.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Values returns a copy of the value map.
func (s *Session) Values() parameters.ValueMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Clone()
}

func (s *Session) Validation() parameters.ValidationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validation.Clone()
}

// CalculatedValues returns the derived values of the last calculation.
func (s *Session) CalculatedValues() parameters.ValueMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calculated.Clone()
}

func (s *Session) Groups() []parameters.GroupView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema == nil {
		return nil
	}
	return s.schema.GroupViews()
}

func (s *Session) FlatParameters() []parameters.FlatDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema == nil {
		return nil
	}
	return s.schema.Flatten()
}

func (s *Session) RequiredParameters() []parameters.FlatDefinition {
	out := []parameters.FlatDefinition{}
	for _, def := range s.FlatParameters() {
		if def.Required {
			out = append(out, def)
		}
	}
	return out
}

// FilledParameters returns the schema parameters holding a non-empty value.
func (s *Session) FilledParameters() []parameters.FlatDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema == nil {
		return nil
	}
	out := []parameters.FlatDefinition{}
	for _, def := range s.schema.Flatten() {
		if isFilled(s.values, def.Key) {
			out = append(out, def)
		}
	}
	return out
}

// CompletionPercentage is the share of required parameters that are filled,
// rounded to the nearest integer. It is 100 when nothing is required.
func (s *Session) CompletionPercentage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema == nil {
		return completion(0, 0)
	}
	required, filled := 0, 0
	for _, def := range s.schema.Flatten() {
		if !def.Required {
			continue
		}
		required++
		if isFilled(s.values, def.Key) {
			filled++
		}
	}
	return completion(required, filled)
}

func (s *Session) GroupStats() []GroupStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema == nil {
		return nil
	}

	views := s.schema.GroupViews()
	stats := make([]GroupStat, 0, len(views))
	for _, view := range views {
		stat := GroupStat{Key: view.Key, Name: view.Name, Icon: view.Icon, Total: len(view.Parameters)}
		requiredFilled := 0
		for _, def := range view.Parameters {
			filled := isFilled(s.values, def.Key)
			if filled {
				stat.Filled++
			}
			if def.Required {
				stat.Required++
				if filled {
					requiredFilled++
				}
			}
			if _, ok := s.validation.Errors[def.Key]; ok {
				stat.Errors++
			}
			if _, ok := s.validation.Warnings[def.Key]; ok {
				stat.Warnings++
			}
		}
		stat.Completion = completion(stat.Required, requiredFilled)
		stats = append(stats, stat)
	}
	return stats
}

func isFilled(values parameters.ValueMap, key string) bool {
	v, ok := values[key]
	return ok && !v.IsEmpty()
}

func completion(required, filled int) int {
	if required == 0 {
		return 100
	}
	return int(math.Round(float64(filled) / float64(required) * 100))
}
