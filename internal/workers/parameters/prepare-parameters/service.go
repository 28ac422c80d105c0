package prepareparameters

import (
	"context"
	"fmt"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/parameters"
	"nc-param-manager/internal/session"
)

// Service prepares one parameter set per job on a fresh session.
type Service struct {
	deps   ServiceDependencies
	config *Config
	logger logger.Logger
}

func NewService(deps ServiceDependencies, cfg *Config) *Service {
	return &Service{
		deps:   deps,
		config: cfg,
		logger: deps.Logger.Named(TaskType),
	}
}

// Execute loads the package, applies the preset and explicit parameters in
// that order, optionally calculates, then validates the final values once
// more. An invalid final state is a result, not an error.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	sess := session.New(s.deps.Params, s.logger, session.Options{
		EnablePresets:     s.deps.Presets != nil,
		ValidationTimeout: s.config.Timeout,
	},
		session.WithPresetStore(s.deps.Presets),
		session.WithNotifier(session.NewLogNotifier(s.logger)),
	)
	defer sess.WaitIdle()

	if err := sess.LoadPackage(ctx, input.PackageName); err != nil {
		return nil, err
	}

	if input.PresetName != "" {
		if _, err := sess.LoadPreset(input.PresetName); err != nil {
			return nil, err
		}
	}

	if len(input.Parameters) > 0 {
		values, err := parameters.ValueMapFrom(input.Parameters)
		if err != nil {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("parameters: %v", err))
		}
		sess.SetValues(values)
	}

	if input.Calculate {
		if _, err := sess.Calculate(ctx); err != nil {
			return nil, err
		}
	}

	sess.WaitIdle()
	state, err := sess.Validate(ctx)
	if err != nil {
		return nil, err
	}

	output := &Output{
		PackageName:          input.PackageName,
		Parameters:           sess.Values(),
		Validation:           state,
		CompletionPercentage: sess.CompletionPercentage(),
		Calculated:           sess.CalculatedValues(),
	}

	s.logger.Info("Parameters prepared", map[string]interface{}{
		"packageName": input.PackageName,
		"presetName":  input.PresetName,
		"valid":       state.Valid,
		"errors":      state.ErrorCount(),
		"warnings":    state.WarningCount(),
		"completion":  output.CompletionPercentage,
	})
	return output, nil
}
