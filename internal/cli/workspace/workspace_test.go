package workspace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"nc-param-manager/internal/common/config"
	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/paramapi/paramapitest"
	"nc-param-manager/internal/parameters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const millSchema = `{"groups": {"tool": {"name": "Tool", "parameters": {
  "diameter": {"type": "length", "label": "Diameter", "default": 10},
  "flutes": {"type": "number", "label": "Flutes", "required": true}
}}}}`

func newWorkspace(t *testing.T, presetsEnabled bool) (*Workspace, *paramapitest.Server, *bytes.Buffer) {
	t.Helper()
	srv := paramapitest.NewServer()
	t.Cleanup(srv.Close)
	require.NoError(t, srv.AddPackageJSON("face-mill", millSchema))

	cfg := &config.Config{
		ParameterService: config.ParameterServiceConfig{BaseURL: srv.BaseURL(), Timeout: 2000},
		Presets: config.PresetsConfig{
			Enabled:    presetsEnabled,
			Backend:    config.PresetBackendFile,
			StorageKey: config.DefaultPresetStorageKey,
			Directory:  t.TempDir(),
		},
	}
	out := &bytes.Buffer{}
	ws, err := Open(context.Background(), cfg, logger.NewTestLogger(t), out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws, srv, out
}

func TestWorkspace_SaveAndResume(t *testing.T) {
	ws, srv, _ := newWorkspace(t, true)
	ctx := context.Background()

	s := ws.NewSession()
	require.NoError(t, s.LoadPackage(ctx, "face-mill"))
	s.SetValue("tool.flutes", parameters.Number(4))
	require.NoError(t, ws.Save(ctx, s))

	_, err := os.Stat(filepath.Join(ws.Config.Presets.Directory, config.WorkingSetKey+".json"))
	require.NoError(t, err)

	resumed, err := ws.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "face-mill", resumed.PackageName())
	assert.Equal(t, s.Values(), resumed.Values())
	assert.True(t, resumed.Validation().Valid)
	assert.True(t, resumed.PresetsEnabled())
	assert.Equal(t, 2, srv.Calls("config"))
}

func TestWorkspace_ResumeAfterReset(t *testing.T) {
	ws, _, _ := newWorkspace(t, false)
	ctx := context.Background()

	s := ws.NewSession()
	require.NoError(t, s.LoadPackage(ctx, "face-mill"))
	s.Reset()
	require.NoError(t, ws.Save(ctx, s))

	resumed, err := ws.Resume(ctx)
	require.NoError(t, err)
	assert.Empty(t, resumed.Values())
	assert.False(t, resumed.PresetsEnabled())
}

func TestWorkspace_ResumeWithoutState(t *testing.T) {
	ws, _, _ := newWorkspace(t, true)

	_, err := ws.Resume(context.Background())
	assert.Equal(t, errors.ErrCodePreconditionFailed, errors.CodeOf(err))
}

func TestWorkspace_CorruptState(t *testing.T) {
	ws, _, _ := newWorkspace(t, true)
	path := filepath.Join(ws.Config.Presets.Directory, config.WorkingSetKey+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := ws.LoadState(context.Background())
	assert.ErrorContains(t, err, "decode session state")
}

func TestWorkspace_NotifierWritesToOutput(t *testing.T) {
	ws, srv, out := newWorkspace(t, true)
	ctx := context.Background()
	srv.Fail("calculate", "Calculator offline")

	s := ws.NewSession()
	require.NoError(t, s.LoadPackage(ctx, "face-mill"))
	_, err := s.Calculate(ctx)
	require.Error(t, err)

	assert.Contains(t, out.String(), "✗ Failed to calculate derived parameters")
}

func TestFromContext(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.Error(t, err)

	ws, _, _ := newWorkspace(t, true)
	got, err := FromContext(WithWorkspace(context.Background(), ws))
	require.NoError(t, err)
	assert.Same(t, ws, got)
}
