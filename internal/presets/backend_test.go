package presets

import (
	"context"
	"path/filepath"
	"testing"

	"nc-param-manager/internal/common/config"
	commonerrors "nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/parameters"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backendConfig(backend string) *config.Config {
	return &config.Config{Presets: config.PresetsConfig{
		Enabled:    true,
		Backend:    backend,
		StorageKey: config.DefaultPresetStorageKey,
	}}
}

func TestOpenStorage_File(t *testing.T) {
	cfg := backendConfig(config.PresetBackendFile)
	cfg.Presets.Directory = t.TempDir()

	storage, closeFn, err := OpenStorage(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer closeFn()

	fs, ok := storage.(*FileStorage)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(cfg.Presets.Directory, "nc_program_parameter_presets.json"), fs.Path())
}

func TestOpenStorage_Memory(t *testing.T) {
	storage, closeFn, err := OpenStorage(context.Background(), backendConfig(config.PresetBackendMemory), logger.NewTestLogger(t))
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "memory", storage.Name())
}

func TestOpenStorage_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := backendConfig(config.PresetBackendRedis)
	cfg.Database.Redis.Address = mr.Addr()
	ctx := context.Background()

	store, closeFn, err := Open(ctx, cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer closeFn()

	_, err = store.Save(ctx, "turning-rough", "rough", "", parameters.ValueMap{"cutting.depth": parameters.Number(2)})
	require.NoError(t, err)
	assert.True(t, mr.Exists(config.DefaultPresetStorageKey))
}

func TestOpenStorage_RedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := backendConfig(config.PresetBackendRedis)
	cfg.Database.Redis.Address = addr

	_, _, err = OpenStorage(context.Background(), cfg, logger.NewTestLogger(t))
	assert.Equal(t, commonerrors.ErrCodeDatabaseConnectionFailed, commonerrors.CodeOf(err))
}

func TestOpenStorage_UnknownBackend(t *testing.T) {
	_, _, err := OpenStorage(context.Background(), backendConfig("s3"), logger.NewTestLogger(t))
	assert.ErrorContains(t, err, `unknown preset backend "s3"`)
}

func TestOpen_Disabled(t *testing.T) {
	cfg := backendConfig(config.PresetBackendMemory)
	cfg.Presets.Enabled = false

	store, closeFn, err := Open(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.NoError(t, closeFn())
}
