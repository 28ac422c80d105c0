package session

import (
	"context"
	"fmt"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/presets"
)

// PresetsEnabled reports whether the session was created with presets.
func (s *Session) PresetsEnabled() bool { return s.store != nil }

// PresetStore exposes the underlying store, nil when presets are disabled.
func (s *Session) PresetStore() *presets.Store { return s.store }

// SavePreset snapshots the current values under name for the loaded package.
func (s *Session) SavePreset(ctx context.Context, name, description string) (presets.Preset, error) {
	if s.store == nil {
		return presets.Preset{}, errors.NewPresetsDisabledError()
	}

	s.mu.Lock()
	if err := s.requirePackageLocked(); err != nil {
		s.mu.Unlock()
		s.notifier.Warning("Load a parameter config first")
		return presets.Preset{}, err
	}
	pkg, values := s.packageName, s.values.Clone()
	s.mu.Unlock()

	p, err := s.store.Save(ctx, pkg, name, description, values)
	if err != nil {
		s.notifier.Warning(failureText(err, "Failed to save preset"))
		return presets.Preset{}, err
	}
	s.notifier.Success(fmt.Sprintf("Preset %q saved", p.Name))
	return p, nil
}

// LoadPreset merges the preset's values into the map, which triggers
// validation. A missing preset leaves the session unchanged.
func (s *Session) LoadPreset(name string) (presets.Preset, error) {
	if s.store == nil {
		return presets.Preset{}, errors.NewPresetsDisabledError()
	}

	pkg := s.PackageName()
	p, err := s.store.Get(pkg, name)
	if err != nil {
		s.notifier.Warning(fmt.Sprintf("Preset not found: %s", name))
		return presets.Preset{}, err
	}

	s.SetValues(p.Parameters)
	s.notifier.Success(fmt.Sprintf("Preset %q loaded", p.Name))
	return p, nil
}

func (s *Session) DeletePreset(ctx context.Context, name string) error {
	if s.store == nil {
		return errors.NewPresetsDisabledError()
	}

	if err := s.store.Delete(ctx, s.PackageName(), name); err != nil {
		s.notifier.Warning(fmt.Sprintf("Preset not found: %s", name))
		return err
	}
	s.notifier.Success(fmt.Sprintf("Preset %q deleted", name))
	return nil
}

// Presets lists the presets of the loaded package.
func (s *Session) Presets() ([]presets.Preset, error) {
	if s.store == nil {
		return nil, errors.NewPresetsDisabledError()
	}
	return s.store.ListForPackage(s.PackageName()), nil
}
