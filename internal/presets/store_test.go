package presets

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/parameters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, storage Storage) *Store {
	t.Helper()
	return NewStore(context.Background(), storage, logger.NewTestLogger(t), WithClock(func() time.Time { return fixedNow }))
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage(nil)
	store := newTestStore(t, storage)

	_, err := store.Save(ctx, "turning-rough", "P1", "", parameters.ValueMap{"x": parameters.Number(1)})
	require.NoError(t, err)
	saved, err := store.Save(ctx, "turning-rough", "  P1 ", "second", parameters.ValueMap{"x": parameters.Number(2)})
	require.NoError(t, err)

	list := store.ListForPackage("turning-rough")
	require.Len(t, list, 1)
	assert.Equal(t, "P1", list[0].Name)
	assert.Equal(t, "second", list[0].Description)
	assert.True(t, list[0].Parameters["x"].Equal(parameters.Number(2)))
	assert.Equal(t, "2026-03-14T09:30:00Z", saved.CreatedAt)
	assert.Equal(t, 2, storage.Writes())
}

func TestStore_SaveScopesByPackage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryStorage(nil))

	_, err := store.Save(ctx, "turning-rough", "P1", "", parameters.ValueMap{})
	require.NoError(t, err)
	_, err = store.Save(ctx, "milling-finish", "P1", "", parameters.ValueMap{})
	require.NoError(t, err)

	assert.Len(t, store.ListForPackage("turning-rough"), 1)
	assert.Len(t, store.ListForPackage("milling-finish"), 1)
	assert.Len(t, store.All(), 2)
	assert.Empty(t, store.ListForPackage("unknown"))
}

func TestStore_SavePreconditions(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage(nil)
	store := newTestStore(t, storage)

	_, err := store.Save(ctx, "turning-rough", "   ", "", nil)
	assert.True(t, stderrors.Is(err, errors.ErrPreconditionFailed))

	_, err = store.Save(ctx, "", "P1", "", nil)
	assert.True(t, stderrors.Is(err, errors.ErrPreconditionFailed))

	assert.Empty(t, store.All())
	assert.Zero(t, storage.Writes())
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryStorage(nil))

	values := parameters.ValueMap{"x": parameters.Number(1)}
	_, err := store.Save(ctx, "pkg", "P1", "", values)
	require.NoError(t, err)

	values["x"] = parameters.Number(99)
	p, ok := store.Find("pkg", "P1")
	require.True(t, ok)
	assert.True(t, p.Parameters["x"].Equal(parameters.Number(1)))

	p.Parameters["x"] = parameters.Number(42)
	again, _ := store.Find("pkg", "P1")
	assert.True(t, again.Parameters["x"].Equal(parameters.Number(1)))
}

func TestStore_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage(nil)
	store := newTestStore(t, storage)

	_, err := store.Save(ctx, "pkg", "P1", "", nil)
	require.NoError(t, err)

	err = store.Delete(ctx, "pkg", "nope")
	assert.True(t, stderrors.Is(err, errors.ErrPresetNotFound))
	assert.Len(t, store.ListForPackage("pkg"), 1)
	assert.Equal(t, 1, storage.Writes())

	require.NoError(t, store.Delete(ctx, "pkg", "P1"))
	assert.Empty(t, store.ListForPackage("pkg"))
	assert.JSONEq(t, `[]`, string(storage.Data()))
}

func TestStore_Get(t *testing.T) {
	store := newTestStore(t, NewMemoryStorage(nil))

	_, err := store.Get("pkg", "missing")
	assert.True(t, stderrors.Is(err, errors.ErrPresetNotFound))
}

func TestStore_ReadsExistingDocument(t *testing.T) {
	doc := `[{"name":"P1","packageName":"pkg","parameters":{"cutting.depth":5},"createdAt":"2025-01-01T00:00:00Z"}]`
	store := newTestStore(t, NewMemoryStorage([]byte(doc)))

	p, ok := store.Find("pkg", "P1")
	require.True(t, ok)
	assert.True(t, p.Parameters["cutting.depth"].Equal(parameters.Number(5)))
	assert.Equal(t, 2025, p.Created().Year())
}

func TestStore_IgnoresBadStorage(t *testing.T) {
	tests := []struct {
		name    string
		storage *MemoryStorage
	}{
		{"read failure", &MemoryStorage{ReadErr: stderrors.New("disk gone")}},
		{"not json", NewMemoryStorage([]byte(`{{{`))},
		{"wrong shape", NewMemoryStorage([]byte(`{"name":"P1"}`))},
		{"missing fields", NewMemoryStorage([]byte(`[{"name":"P1"}]`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, tt.storage)
			assert.Empty(t, store.All())
		})
	}
}

func TestStore_WriteFailureIsSwallowed(t *testing.T) {
	storage := &MemoryStorage{WriteErr: stderrors.New("read-only")}
	store := newTestStore(t, storage)

	_, err := store.Save(context.Background(), "pkg", "P1", "", parameters.ValueMap{})
	require.NoError(t, err)
	assert.Len(t, store.ListForPackage("pkg"), 1)
}

func TestStore_Import(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, NewMemoryStorage(nil))
	_, err := store.Save(ctx, "pkg", "P1", "old", parameters.ValueMap{})
	require.NoError(t, err)

	n := store.Import(ctx, []Preset{
		{Name: "P1", PackageName: "pkg", Description: "remote", Parameters: parameters.ValueMap{}},
		{Name: "P2", PackageName: "pkg"},
		{Name: "", PackageName: "pkg"},
	})
	assert.Equal(t, 2, n)

	list := store.ListForPackage("pkg")
	require.Len(t, list, 2)
	assert.Equal(t, "remote", list[0].Description)
	assert.Equal(t, "P2", list[1].Name)
	assert.Equal(t, "2026-03-14T09:30:00Z", list[1].CreatedAt)
}
