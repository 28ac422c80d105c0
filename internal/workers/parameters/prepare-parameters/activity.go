package prepareparameters

import (
	"nc-param-manager/pkg/registry"
)

// Activity describes the worker for the activity registry.
func (h *Handler) Activity() registry.Activity {
	return registry.Activity{
		ID:          WorkerName,
		DisplayName: "Prepare NC parameters",
		Description: "Loads a template package, applies an optional preset and parameters, " +
			"optionally calculates derived values and returns the validated parameter set.",
		Category:     "parameters",
		TaskType:     TaskType,
		Enabled:      h.config.Enabled,
		InputSchema:  registry.SchemaMap(inputSchema),
		OutputSchema: registry.SchemaMap(outputSchema),
		ErrorCodes: []string{
			"INVALID_INPUT",
			"PARAMETERS_REJECTED",
			"PARAM_SERVICE_UNAVAILABLE",
			"PRESET_NOT_FOUND",
			"PRESET_STORAGE_FAILED",
		},
		Timeout: h.config.Timeout.String(),
		Retries: h.config.MaxRetries,
		Tags:    []string{"nc", "parameters"},
	}
}
