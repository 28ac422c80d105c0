// Package session holds the parameter state of one template package: the
// fetched schema, the live value map, the last validation result and the
// derived values, plus the coordinators that keep them in sync with the
// parameter service.
package session

import (
	"context"
	"sync"
	"time"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/parameters"
	"nc-param-manager/internal/presets"
)

// Service is the part of the parameter service a session talks to.
// *paramapi.Client and *paramapi.SchemaCache satisfy it.
type Service interface {
	GetConfig(ctx context.Context, pkg string) (*parameters.Schema, error)
	Validate(ctx context.Context, pkg string, values parameters.ValueMap) (parameters.ValidationState, error)
	Calculate(ctx context.Context, pkg string, values parameters.ValueMap) (parameters.ValueMap, error)
}

const defaultValidationTimeout = 30 * time.Second

type Options struct {
	// EnablePresets turns on the preset operations. Without a store given
	// through WithPresetStore an in-memory one is used.
	EnablePresets bool
	// ValidationDebounce coalesces validations triggered within the window.
	// Zero validates after every mutation.
	ValidationDebounce time.Duration
	// ValidationTimeout bounds background validation round trips.
	ValidationTimeout time.Duration
}

type Option func(*Session)

func WithPresetStore(store *presets.Store) Option {
	return func(s *Session) { s.store = store }
}

func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// Session is safe for concurrent use. The mutex is never held across a
// call to the service.
type Session struct {
	service  Service
	store    *presets.Store
	notifier Notifier
	log      logger.Logger
	opts     Options

	mu          sync.Mutex
	idle        *sync.Cond
	packageName string
	schema      *parameters.Schema
	values      parameters.ValueMap
	validation  parameters.ValidationState
	calculated  parameters.ValueMap
	loading     bool
	lastErr     string

	// loadGen identifies the current LoadPackage call; only its result is applied.
	loadGen uint64
	// seq is the latest issued validation sequence number.
	seq uint64
	// inFlight counts validations running or waiting on the debounce timer.
	inFlight    int
	debounce    *time.Timer
	debounceGen uint64
}

func New(service Service, log logger.Logger, opts Options, extra ...Option) *Session {
	if opts.ValidationTimeout <= 0 {
		opts.ValidationTimeout = defaultValidationTimeout
	}
	s := &Session{
		service:    service,
		log:        log.Named("session"),
		opts:       opts,
		values:     parameters.ValueMap{},
		validation: parameters.Clean(),
		calculated: parameters.ValueMap{},
	}
	s.idle = sync.NewCond(&s.mu)
	for _, opt := range extra {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(log)
	}
	if !opts.EnablePresets {
		s.store = nil
	} else if s.store == nil {
		s.store = presets.NewStore(context.Background(), presets.NewMemoryStorage(nil), log)
	}
	return s
}

// LoadPackage fetches the schema of pkg and seeds the value map with its
// declared defaults. On failure the previous package, schema and values are
// kept and the error is recorded.
func (s *Session) LoadPackage(ctx context.Context, pkg string) error {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.loadGen++
	gen := s.loadGen
	s.mu.Unlock()

	s.log.Debug("Loading parameter config", map[string]interface{}{"packageName": pkg})
	schema, err := s.service.GetConfig(ctx, pkg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.loadGen {
		// a newer LoadPackage owns the session now
		return err
	}
	s.loading = false

	if err != nil {
		s.lastErr = failureText(err, "Failed to load parameter config")
		s.log.WithError(err).Error("Failed to load parameter config", map[string]interface{}{
			"packageName": pkg,
		})
		return err
	}

	s.invalidateValidationsLocked()
	s.packageName = pkg
	s.schema = schema
	s.values = schema.Defaults()
	s.validation = parameters.Clean()
	s.calculated = parameters.ValueMap{}

	s.log.Info("Parameter config loaded", map[string]interface{}{
		"packageName": pkg,
		"parameters":  len(schema.Flatten()),
	})
	if unknown := schema.UnknownTypes(); len(unknown) > 0 {
		s.log.Warn("Unknown parameter types, handled as strings", map[string]interface{}{
			"packageName": pkg,
			"parameters":  unknown,
		})
	}
	return nil
}

// Restore loads pkg and replaces its default map with values, as saved by
// an earlier session. An empty values map restores a reset session.
func (s *Session) Restore(ctx context.Context, pkg string, values parameters.ValueMap) error {
	if err := s.LoadPackage(ctx, pkg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values.Clone()
	s.triggerValidationLocked()
	return nil
}

// SetValue assigns one parameter and triggers validation.
func (s *Session) SetValue(key string, v parameters.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	s.triggerValidationLocked()
}

// SetValues merges values into the map and triggers a single validation.
func (s *Session) SetValues(values parameters.ValueMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Merge(values)
	s.triggerValidationLocked()
}

// Reset empties the value map and clears validation, derived values and the
// error. The schema and presets are kept; in-flight validations are dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateValidationsLocked()
	s.values = parameters.ValueMap{}
	s.validation = parameters.Clean()
	s.calculated = parameters.ValueMap{}
	s.lastErr = ""
}

func (s *Session) requirePackageLocked() error {
	if s.packageName == "" || s.schema == nil {
		return errors.NewPreconditionFailedError("Load a parameter config first")
	}
	return nil
}

// failureText is the message recorded in the session error field.
func failureText(err error, fallback string) string {
	if stdErr, ok := errors.AsStandard(err); ok && stdErr.Message != "" {
		return stdErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
