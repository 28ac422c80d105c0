package session

import (
	"context"
	"time"

	"nc-param-manager/internal/common/metrics"
	"nc-param-manager/internal/parameters"
)

// triggerValidationLocked starts a background validation of the current
// values, or (re)arms the debounce timer. Callers hold s.mu.
func (s *Session) triggerValidationLocked() {
	if s.packageName == "" {
		return
	}
	if s.opts.ValidationDebounce <= 0 {
		s.dispatchLocked(s.nextSeqLocked(), s.packageName, s.values.Clone())
		return
	}

	if s.debounce != nil && s.debounce.Stop() {
		s.debounce.Reset(s.opts.ValidationDebounce)
		return
	}
	s.debounceGen++
	gen := s.debounceGen
	s.inFlight++
	s.debounce = time.AfterFunc(s.opts.ValidationDebounce, func() {
		s.mu.Lock()
		if gen != s.debounceGen || s.packageName == "" {
			s.doneLocked()
			s.mu.Unlock()
			return
		}
		s.debounce = nil
		seq, pkg, values := s.nextSeqLocked(), s.packageName, s.values.Clone()
		s.mu.Unlock()

		s.roundTrip(seq, pkg, values)

		s.mu.Lock()
		s.doneLocked()
		s.mu.Unlock()
	})
}

func (s *Session) dispatchLocked(seq uint64, pkg string, values parameters.ValueMap) {
	s.inFlight++
	go func() {
		s.roundTrip(seq, pkg, values)

		s.mu.Lock()
		s.doneLocked()
		s.mu.Unlock()
	}()
}

func (s *Session) roundTrip(seq uint64, pkg string, values parameters.ValueMap) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ValidationTimeout)
	defer cancel()
	_, _, _ = s.validateRound(ctx, seq, pkg, values)
}

// validateRound sends values and applies the response only when seq is still
// the latest issued sequence number.
func (s *Session) validateRound(ctx context.Context, seq uint64, pkg string, values parameters.ValueMap) (parameters.ValidationState, bool, error) {
	metrics.ValidationsInFlight.Inc()
	state, err := s.service.Validate(ctx, pkg, values)
	metrics.ValidationsInFlight.Dec()

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		metrics.ValidationStale.Inc()
		metrics.ValidationRounds.WithLabelValues(metrics.ResultStale).Inc()
		s.log.Debug("Discarding stale validation response", map[string]interface{}{
			"packageName": pkg,
			"sequence":    seq,
			"latest":      s.seq,
		})
		return state, false, err
	}
	if err != nil {
		metrics.ValidationRounds.WithLabelValues(metrics.ResultFailure).Inc()
		s.log.WithError(err).Warn("Parameter validation failed", map[string]interface{}{
			"packageName": pkg,
			"sequence":    seq,
		})
		return parameters.ValidationState{}, false, err
	}

	s.validation = state.Normalize().Clone()
	metrics.ValidationRounds.WithLabelValues(metrics.ResultApplied).Inc()
	if s.validation.Valid {
		s.log.Debug("Parameters valid", map[string]interface{}{"packageName": pkg})
	} else {
		s.log.Debug("Parameters invalid", map[string]interface{}{
			"packageName": pkg,
			"errors":      s.validation.ErrorCount(),
			"warnings":    s.validation.WarningCount(),
		})
	}
	return s.validation.Clone(), true, nil
}

// Validate runs one validation round trip synchronously. The result is
// applied under the same rule as background rounds: a newer request issued
// meanwhile wins.
func (s *Session) Validate(ctx context.Context) (parameters.ValidationState, error) {
	s.mu.Lock()
	if err := s.requirePackageLocked(); err != nil {
		s.mu.Unlock()
		return parameters.ValidationState{}, err
	}
	seq, pkg, values := s.nextSeqLocked(), s.packageName, s.values.Clone()
	s.inFlight++
	s.mu.Unlock()

	state, _, err := s.validateRound(ctx, seq, pkg, values)

	s.mu.Lock()
	s.doneLocked()
	s.mu.Unlock()
	return state, err
}

// WaitIdle blocks until no validation is running or pending.
func (s *Session) WaitIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.inFlight > 0 {
		s.idle.Wait()
	}
}

func (s *Session) nextSeqLocked() uint64 {
	s.seq++
	return s.seq
}

// invalidateValidationsLocked makes every in-flight response stale and
// cancels a pending debounced round.
func (s *Session) invalidateValidationsLocked() {
	s.seq++
	if s.debounce != nil {
		if s.debounce.Stop() {
			s.doneLocked()
		}
		s.debounce = nil
	}
	s.debounceGen++
}

func (s *Session) doneLocked() {
	s.inFlight--
	if s.inFlight == 0 {
		s.idle.Broadcast()
	}
}
