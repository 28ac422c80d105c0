package prepareparameters

import (
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/parameters"
	"nc-param-manager/internal/presets"
	"nc-param-manager/internal/session"
)

type Input struct {
	PackageName string                 `json:"packageName"`
	PresetName  string                 `json:"presetName,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Calculate   bool                   `json:"calculate,omitempty"`
}

type Output struct {
	PackageName          string                     `json:"packageName"`
	Parameters           parameters.ValueMap        `json:"parameters"`
	Validation           parameters.ValidationState `json:"validation"`
	CompletionPercentage int                        `json:"completionPercentage"`
	Calculated           parameters.ValueMap        `json:"calculated"`
}

// Variables is the process variable map the job completes with.
func (o *Output) Variables() map[string]interface{} {
	return map[string]interface{}{
		"packageName": o.PackageName,
		"parameters":  o.Parameters.ToMap(),
		"validation": map[string]interface{}{
			"valid":    o.Validation.Valid,
			"errors":   o.Validation.Errors,
			"warnings": o.Validation.Warnings,
		},
		"completionPercentage": o.CompletionPercentage,
		"calculated":           o.Calculated.ToMap(),
	}
}

type ServiceDependencies struct {
	Logger logger.Logger
	// Params is the parameter service, usually a *paramapi.SchemaCache.
	Params session.Service
	// Presets is nil when presets are disabled.
	Presets *presets.Store
}
