package session

import (
	"context"
	"fmt"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/metrics"
	"nc-param-manager/internal/parameters"
)

// Calculate asks the service for derived values, stores them, merges them
// into the value map and triggers one validation. On failure nothing changes
// except the recorded error.
func (s *Session) Calculate(ctx context.Context) (parameters.ValueMap, error) {
	s.mu.Lock()
	if err := s.requirePackageLocked(); err != nil {
		s.mu.Unlock()
		s.notifier.Warning("Load a parameter config before calculating")
		return nil, err
	}
	s.loading = true
	s.lastErr = ""
	gen, pkg, values := s.loadGen, s.packageName, s.values.Clone()
	s.mu.Unlock()

	derived, err := s.service.Calculate(ctx, pkg, values)

	s.mu.Lock()
	s.loading = false
	if err == nil && gen != s.loadGen {
		err = errors.NewPreconditionFailedError(fmt.Sprintf("Package changed from %s during calculation", pkg))
	}
	if err != nil {
		s.lastErr = failureText(err, "Failed to calculate derived parameters")
		s.mu.Unlock()

		metrics.Calculations.WithLabelValues(metrics.ResultFailure).Inc()
		s.log.WithError(err).Error("Calculation failed", map[string]interface{}{"packageName": pkg})
		s.notifier.Error("Failed to calculate derived parameters")
		return nil, err
	}

	s.calculated = derived.Clone()
	s.values.Merge(derived)
	s.triggerValidationLocked()
	s.mu.Unlock()

	metrics.Calculations.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info("Derived parameters calculated", map[string]interface{}{
		"packageName": pkg,
		"count":       len(derived),
	})
	s.notifier.Success("Derived parameters calculated")
	return derived.Clone(), nil
}
