package session

import (
	"context"
	"testing"
	"time"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/parameters"
	"nc-param-manager/internal/presets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xySchema = `{"groups": {"g": {"name": "G", "parameters": {
  "x": {"type": "number", "label": "X", "default": 1},
  "y": {"type": "number", "label": "Y", "default": 2}
}}}}`

func newPresetSession(t *testing.T) (*Session, *fakeService, *presets.MemoryStorage, *recordingNotifier) {
	t.Helper()
	svc := newFakeService(t, "p", xySchema)
	storage := presets.NewMemoryStorage(nil)
	store := presets.NewStore(context.Background(), storage, logger.NewTestLogger(t),
		presets.WithClock(func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }))
	notifier := &recordingNotifier{}
	s := newSession(t, svc, Options{EnablePresets: true}, WithPresetStore(store), WithNotifier(notifier))
	require.NoError(t, s.LoadPackage(context.Background(), "p"))
	return s, svc, storage, notifier
}

func TestSavePreset_OverwritesSameName(t *testing.T) {
	s, _, storage, _ := newPresetSession(t)
	ctx := context.Background()

	_, err := s.SavePreset(ctx, "P1", "")
	require.NoError(t, err)
	s.SetValue("g.x", parameters.Number(9))
	p, err := s.SavePreset(ctx, " P1 ", "second")
	require.NoError(t, err)
	s.WaitIdle()

	list, err := s.Presets()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "P1", list[0].Name)
	assert.Equal(t, "second", list[0].Description)
	assert.Equal(t, parameters.Number(9), list[0].Parameters["g.x"])
	assert.Equal(t, "2026-03-14T09:30:00Z", p.CreatedAt)
	assert.Equal(t, 2, storage.Writes())
}

func TestSavePreset_SnapshotIsCopy(t *testing.T) {
	s, _, _, _ := newPresetSession(t)
	ctx := context.Background()

	_, err := s.SavePreset(ctx, "P1", "")
	require.NoError(t, err)
	s.SetValue("g.x", parameters.Number(42))
	s.WaitIdle()

	list, _ := s.Presets()
	assert.Equal(t, parameters.Number(1), list[0].Parameters["g.x"])
}

func TestSavePreset_EmptyName(t *testing.T) {
	s, _, _, notifier := newPresetSession(t)

	_, err := s.SavePreset(context.Background(), "   ", "")
	assert.ErrorIs(t, err, errors.ErrPreconditionFailed)
	assert.Len(t, notifier.warnings, 1)
}

func TestDeletePreset_Missing(t *testing.T) {
	s, _, _, notifier := newPresetSession(t)
	ctx := context.Background()
	_, err := s.SavePreset(ctx, "P1", "")
	require.NoError(t, err)

	err = s.DeletePreset(ctx, "nope")
	assert.ErrorIs(t, err, errors.ErrPresetNotFound)
	list, _ := s.Presets()
	assert.Len(t, list, 1)
	assert.Len(t, notifier.warnings, 1)

	require.NoError(t, s.DeletePreset(ctx, "P1"))
	list, _ = s.Presets()
	assert.Empty(t, list)
}

func TestLoadPreset_MergesAndValidates(t *testing.T) {
	svc := newFakeService(t, "p", xySchema)
	storage := presets.NewMemoryStorage([]byte(`[{"name":"five","packageName":"p","parameters":{"g.x":5},"createdAt":"2026-01-01T00:00:00Z"}]`))
	store := presets.NewStore(context.Background(), storage, logger.NewTestLogger(t))
	s := newSession(t, svc, Options{EnablePresets: true}, WithPresetStore(store))
	require.NoError(t, s.LoadPackage(context.Background(), "p"))

	_, err := s.LoadPreset("five")
	require.NoError(t, err)
	s.WaitIdle()

	assert.Equal(t, map[string]interface{}{"g.x": 5.0, "g.y": 2.0}, s.Values().ToMap())
	assert.Equal(t, 1, svc.validations())
}

func TestLoadPreset_MissingLeavesState(t *testing.T) {
	s, svc, _, _ := newPresetSession(t)

	_, err := s.LoadPreset("ghost")
	assert.ErrorIs(t, err, errors.ErrPresetNotFound)
	s.WaitIdle()
	assert.Equal(t, map[string]interface{}{"g.x": 1.0, "g.y": 2.0}, s.Values().ToMap())
	assert.Equal(t, 0, svc.validations())
}

func TestPresets_ScopedToPackage(t *testing.T) {
	svc := newFakeService(t, "p", xySchema)
	storage := presets.NewMemoryStorage([]byte(`[
	  {"name":"a","packageName":"p","parameters":{}},
	  {"name":"b","packageName":"other","parameters":{}}
	]`))
	store := presets.NewStore(context.Background(), storage, logger.NewTestLogger(t))
	s := newSession(t, svc, Options{EnablePresets: true}, WithPresetStore(store))
	require.NoError(t, s.LoadPackage(context.Background(), "p"))

	list, err := s.Presets()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Name)

	_, err = s.LoadPreset("b")
	assert.ErrorIs(t, err, errors.ErrPresetNotFound)
}

func TestPresets_Disabled(t *testing.T) {
	svc := newFakeService(t, "p", xySchema)
	s := newSession(t, svc, Options{})
	ctx := context.Background()

	assert.False(t, s.PresetsEnabled())
	assert.Nil(t, s.PresetStore())

	_, err := s.SavePreset(ctx, "P1", "")
	assert.ErrorIs(t, err, errors.ErrPresetsDisabled)
	_, err = s.LoadPreset("P1")
	assert.ErrorIs(t, err, errors.ErrPresetsDisabled)
	assert.ErrorIs(t, s.DeletePreset(ctx, "P1"), errors.ErrPresetsDisabled)
	_, err = s.Presets()
	assert.ErrorIs(t, err, errors.ErrPresetsDisabled)
}

func TestPresets_EnabledWithoutStoreUsesMemory(t *testing.T) {
	svc := newFakeService(t, "p", xySchema)
	s := newSession(t, svc, Options{EnablePresets: true})
	require.NoError(t, s.LoadPackage(context.Background(), "p"))

	_, err := s.SavePreset(context.Background(), "P1", "")
	require.NoError(t, err)
	assert.True(t, s.PresetsEnabled())
}
