package presets

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/common/metrics"
	"nc-param-manager/internal/common/validation"
	"nc-param-manager/internal/parameters"
)

const documentSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "packageName", "parameters"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "packageName": {"type": "string", "minLength": 1},
      "parameters": {"type": "object"},
      "createdAt": {"type": "string"},
      "description": {"type": "string"}
    }
  }
}`

var documentValidator = validation.MustCompile(documentSchema)

// Store holds every preset of every package in memory. Memory is the source
// of truth: storage is read once in NewStore and rewritten in full after
// each mutation, and storage failures are logged, never returned.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	log     logger.Logger
	presets []Preset
	now     func() time.Time
}

type StoreOption func(*Store)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(ctx context.Context, storage Storage, log logger.Logger, opts ...StoreOption) *Store {
	s := &Store{
		storage: storage,
		log:     log.Named("presets"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.presets = s.read(ctx)
	return s
}

func (s *Store) read(ctx context.Context) []Preset {
	fields := map[string]interface{}{"backend": s.storage.Name()}

	data, err := s.storage.Read(ctx)
	if err != nil {
		metrics.PresetStorageErrors.WithLabelValues(s.storage.Name(), "read").Inc()
		s.log.WithError(errors.NewPresetPersistenceFailedError(s.storage.Name(), err)).
			Warn("Failed to read presets, starting empty", fields)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	result, err := documentValidator.ValidateBytes(data)
	if err != nil || !result.Valid {
		metrics.PresetStorageErrors.WithLabelValues(s.storage.Name(), "decode").Inc()
		if err == nil {
			fields["errors"] = result.GetErrorMessages()
		} else {
			fields["error"] = err.Error()
		}
		s.log.Warn("Ignoring malformed preset document", fields)
		return nil
	}

	var presets []Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		metrics.PresetStorageErrors.WithLabelValues(s.storage.Name(), "decode").Inc()
		fields["error"] = err.Error()
		s.log.Warn("Ignoring undecodable preset document", fields)
		return nil
	}
	for i := range presets {
		if presets[i].Parameters == nil {
			presets[i].Parameters = parameters.ValueMap{}
		}
	}

	fields["count"] = len(presets)
	s.log.Debug("Presets loaded", fields)
	return presets
}

// persist writes the full list. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	list := s.presets
	if list == nil {
		list = []Preset{}
	}
	data, err := json.Marshal(list)
	if err == nil {
		err = s.storage.Write(ctx, data)
	}
	if err != nil {
		metrics.PresetStorageErrors.WithLabelValues(s.storage.Name(), "write").Inc()
		s.log.WithError(errors.NewPresetPersistenceFailedError(s.storage.Name(), err)).
			Warn("Failed to persist presets", map[string]interface{}{
				"backend": s.storage.Name(),
				"count":   len(s.presets),
			})
	}
}

// Save stores a snapshot of values as (packageName, name), replacing an
// existing preset with the same trimmed name in place.
func (s *Store) Save(ctx context.Context, packageName, name, description string, values parameters.ValueMap) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		metrics.PresetOperations.WithLabelValues("save", metrics.ResultFailure).Inc()
		return Preset{}, errors.NewPreconditionFailedError("Preset name is required")
	}
	if packageName == "" {
		metrics.PresetOperations.WithLabelValues("save", metrics.ResultFailure).Inc()
		return Preset{}, errors.NewPreconditionFailedError("No template package is loaded")
	}

	preset := Preset{
		Name:        name,
		PackageName: packageName,
		Parameters:  values.Clone(),
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
		Description: strings.TrimSpace(description),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.presets {
		if s.presets[i].matches(packageName, name) {
			s.presets[i] = preset
			replaced = true
			break
		}
	}
	if !replaced {
		s.presets = append(s.presets, preset)
	}
	s.persist(ctx)

	metrics.PresetOperations.WithLabelValues("save", metrics.ResultSuccess).Inc()
	s.log.Info("Preset saved", map[string]interface{}{
		"packageName": packageName,
		"name":        name,
		"replaced":    replaced,
	})
	return preset.clone(), nil
}

// Find returns a copy of the preset, if present.
func (s *Store) Find(packageName, name string) (Preset, bool) {
	name = strings.TrimSpace(name)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.presets {
		if p.matches(packageName, name) {
			return p.clone(), true
		}
	}
	return Preset{}, false
}

// Get is Find returning a not-found error.
func (s *Store) Get(packageName, name string) (Preset, error) {
	p, ok := s.Find(packageName, name)
	if !ok {
		metrics.PresetOperations.WithLabelValues("load", metrics.ResultFailure).Inc()
		return Preset{}, errors.NewPresetNotFoundError(packageName, strings.TrimSpace(name))
	}
	metrics.PresetOperations.WithLabelValues("load", metrics.ResultSuccess).Inc()
	return p, nil
}

func (s *Store) Delete(ctx context.Context, packageName, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.presets {
		if p.matches(packageName, name) {
			s.presets = append(s.presets[:i:i], s.presets[i+1:]...)
			s.persist(ctx)
			metrics.PresetOperations.WithLabelValues("delete", metrics.ResultSuccess).Inc()
			s.log.Info("Preset deleted", map[string]interface{}{
				"packageName": packageName,
				"name":        name,
			})
			return nil
		}
	}

	metrics.PresetOperations.WithLabelValues("delete", metrics.ResultFailure).Inc()
	return errors.NewPresetNotFoundError(packageName, name)
}

// ListForPackage returns copies of the presets of one package in insertion order.
func (s *Store) ListForPackage(packageName string) []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Preset{}
	for _, p := range s.presets {
		if p.PackageName == packageName {
			out = append(out, p.clone())
		}
	}
	return out
}

// All returns copies of every preset.
func (s *Store) All() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Preset, len(s.presets))
	for i, p := range s.presets {
		out[i] = p.clone()
	}
	return out
}

// Import adds presets fetched elsewhere, replacing same-identity entries,
// and persists once.
func (s *Store) Import(ctx context.Context, incoming []Preset) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, in := range incoming {
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" || in.PackageName == "" {
			continue
		}
		in = in.clone()
		if in.CreatedAt == "" {
			in.CreatedAt = s.now().UTC().Format(time.RFC3339)
		}

		replaced := false
		for i := range s.presets {
			if s.presets[i].matches(in.PackageName, in.Name) {
				s.presets[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			s.presets = append(s.presets, in)
		}
		count++
	}
	if count > 0 {
		s.persist(ctx)
	}
	return count
}
