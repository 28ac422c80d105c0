package session

import (
	"context"
	"testing"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/parameters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			svc := newFakeService(t, "p", xySchema)
			src := newSession(t, svc, Options{})
			require.NoError(t, src.LoadPackage(context.Background(), "p"))
			src.SetValues(parameters.ValueMap{
				"g.x":    parameters.Number(7.5),
				"g.tags": parameters.Array(parameters.String("a"), parameters.String("b")),
			})
			src.WaitIdle()

			data, err := src.ExportValues(format)
			require.NoError(t, err)

			dst := newSession(t, svc, Options{})
			require.NoError(t, dst.LoadPackage(context.Background(), "p"))
			dst.Reset()
			n, err := dst.ImportValues(data, format, ImportOptions{})
			require.NoError(t, err)
			dst.WaitIdle()

			assert.Equal(t, 3, n)
			assert.True(t, src.Values().Equal(dst.Values()))
		})
	}
}

func TestImportValues_SkipUnknown(t *testing.T) {
	svc := newFakeService(t, "p", xySchema)
	s := newSession(t, svc, Options{})
	require.NoError(t, s.LoadPackage(context.Background(), "p"))

	n, err := s.ImportValues([]byte("g.x: 5\nbogus: true\n"), FormatYAML, ImportOptions{SkipUnknown: true})
	require.NoError(t, err)
	s.WaitIdle()

	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]interface{}{"g.x": 5.0, "g.y": 2.0}, s.Values().ToMap())
	assert.Equal(t, 1, svc.validations())
}

func TestImportValues_Errors(t *testing.T) {
	svc := newFakeService(t, "p", xySchema)
	s := newSession(t, svc, Options{})

	_, err := s.ImportValues([]byte(`{"g.x": 1}`), FormatJSON, ImportOptions{})
	assert.ErrorIs(t, err, errors.ErrPreconditionFailed)

	require.NoError(t, s.LoadPackage(context.Background(), "p"))
	_, err = s.ImportValues([]byte(`{not json`), FormatJSON, ImportOptions{})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))

	_, err = s.ImportValues([]byte(`{}`), Format("toml"), ImportOptions{})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatYAML, FormatFromPath("values.yaml"))
	assert.Equal(t, FormatJSON, FormatFromPath("values.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("values"))
}
