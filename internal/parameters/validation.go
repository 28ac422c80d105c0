package parameters

// ValidationState is the last validation result reported by the service.
type ValidationState struct {
	Valid    bool              `json:"valid" yaml:"valid"`
	Errors   map[string]string `json:"errors" yaml:"errors"`
	Warnings map[string]string `json:"warnings" yaml:"warnings"`
}

// Clean returns the state of a session that has nothing to report.
func Clean() ValidationState {
	return ValidationState{Valid: true, Errors: map[string]string{}, Warnings: map[string]string{}}
}

// Normalize replaces nil maps with empty ones.
func (v ValidationState) Normalize() ValidationState {
	if v.Errors == nil {
		v.Errors = map[string]string{}
	}
	if v.Warnings == nil {
		v.Warnings = map[string]string{}
	}
	return v
}

// Clone returns a deep copy.
func (v ValidationState) Clone() ValidationState {
	out := ValidationState{
		Valid:    v.Valid,
		Errors:   make(map[string]string, len(v.Errors)),
		Warnings: make(map[string]string, len(v.Warnings)),
	}
	for k, msg := range v.Errors {
		out.Errors[k] = msg
	}
	for k, msg := range v.Warnings {
		out.Warnings[k] = msg
	}
	return out
}

func (v ValidationState) HasErrors() bool   { return len(v.Errors) > 0 }
func (v ValidationState) HasWarnings() bool { return len(v.Warnings) > 0 }
func (v ValidationState) ErrorCount() int   { return len(v.Errors) }
func (v ValidationState) WarningCount() int { return len(v.Warnings) }

// ErrorFor returns the error message recorded for key, if any.
func (v ValidationState) ErrorFor(key string) (string, bool) {
	msg, ok := v.Errors[key]
	return msg, ok
}

// WarningFor returns the warning message recorded for key, if any.
func (v ValidationState) WarningFor(key string) (string, bool) {
	msg, ok := v.Warnings[key]
	return msg, ok
}
