package paramapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/common/observability"
	"nc-param-manager/internal/paramapi/paramapitest"
	"nc-param-manager/internal/parameters"
	"nc-param-manager/internal/presets"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const roughSchema = `{
  "groups": {
    "cutting": {
      "name": "Cutting",
      "parameters": {
        "speed": {"type": "speed", "label": "Spindle speed", "default": 1200, "range": [100, 3000]},
        "depth": {"type": "length", "label": "Depth", "required": true},
        "coolant": {"type": "string", "label": "Coolant", "options": ["flood", "mist"]}
      }
    }
  }
}`

func newTestClient(t *testing.T) (*Client, *paramapitest.Server) {
	t.Helper()
	srv := paramapitest.NewServer()
	t.Cleanup(srv.Close)
	require.NoError(t, srv.AddPackageJSON("turning-rough", roughSchema))
	return New(srv.BaseURL(), 2*time.Second, logger.NewTestLogger(t)), srv
}

func TestClient_GetConfig(t *testing.T) {
	client, srv := newTestClient(t)

	schema, err := client.GetConfig(context.Background(), "turning-rough")
	require.NoError(t, err)
	def, ok := schema.Lookup("cutting.speed")
	require.True(t, ok)
	assert.Equal(t, parameters.TypeSpeed, def.Type)
	assert.Equal(t, 1, srv.Calls("config"))

	ids := srv.RequestIDs()
	require.Len(t, ids, 1)
	assert.NotEmpty(t, ids[0])
}

func TestClient_GetConfig_UnknownPackage(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetConfig(context.Background(), "milling")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrParamServiceRejected)
	assert.Contains(t, err.Error(), "Template package 'milling' not found")
}

func TestClient_EscapesPackageName(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"groups": {}}}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL+"/api/", time.Second, logger.NewNoOpLogger())
	_, err := client.GetConfig(context.Background(), "face mill/2")
	require.NoError(t, err)
	assert.Equal(t, "/api/parameters/face%20mill%2F2/config", gotPath)
}

func TestClient_Validate(t *testing.T) {
	client, srv := newTestClient(t)

	state, err := client.Validate(context.Background(), "turning-rough", parameters.ValueMap{
		"cutting.speed":   parameters.Number(5000),
		"cutting.coolant": parameters.String("oil"),
	})
	require.NoError(t, err)

	assert.False(t, state.Valid)
	assert.Contains(t, state.Errors, "cutting.depth")
	assert.Contains(t, state.Errors, "cutting.coolant")
	assert.Contains(t, state.Warnings, "cutting.speed")
	assert.Equal(t, parameters.Number(5000), srv.LastPayload("validate")["cutting.speed"])
}

func TestClient_Validate_NilValuesSendsEmptyObject(t *testing.T) {
	client, srv := newTestClient(t)

	_, err := client.Validate(context.Background(), "turning-rough", nil)
	require.NoError(t, err)
	assert.NotNil(t, srv.LastPayload("validate"))
}

func TestClient_Calculate_ReadsDataWhenCalculatedAbsent(t *testing.T) {
	client, srv := newTestClient(t)
	srv.SetDerived("turning-rough", parameters.ValueMap{"process.estimated_time": parameters.Number(2.5)})

	derived, err := client.Calculate(context.Background(), "turning-rough", parameters.ValueMap{})
	require.NoError(t, err)
	assert.Equal(t, parameters.Number(2.5), derived["process.estimated_time"])
}

func TestClient_Calculate_PrefersCalculated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "data": {"a": 1}, "calculated": {"a": 2}}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, time.Second, logger.NewNoOpLogger())
	derived, err := client.Calculate(context.Background(), "p", parameters.ValueMap{})
	require.NoError(t, err)
	assert.Equal(t, parameters.Number(2), derived["a"])
}

func TestClient_FailureMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantIs   error
		wantText string
	}{
		{
			name:     "error field",
			status:   http.StatusInternalServerError,
			body:     `{"success": false, "error": "calculator offline"}`,
			wantIs:   errors.ErrParamServiceRejected,
			wantText: "calculator offline",
		},
		{
			name:     "message field",
			status:   http.StatusOK,
			body:     `{"success": false, "message": "bad input"}`,
			wantIs:   errors.ErrParamServiceRejected,
			wantText: "bad input",
		},
		{
			name:     "no message",
			status:   http.StatusBadRequest,
			body:     `{"success": false}`,
			wantIs:   errors.ErrParamServiceRejected,
			wantText: "status 400",
		},
		{
			name:     "html error page",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantIs:   errors.ErrParamServiceUnavailable,
			wantText: "undecodable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			client := New(srv.URL, time.Second, logger.NewNoOpLogger())
			_, err := client.Calculate(context.Background(), "p", parameters.ValueMap{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Contains(t, err.Error(), tt.wantText)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, time.Second, logger.NewNoOpLogger())
	_, err := client.GetConfig(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrParamServiceUnavailable)
	assert.Equal(t, 3, errors.GetRetryCount(errors.CodeOf(err)))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := New(srv.URL, 50*time.Millisecond, logger.NewNoOpLogger())
	_, err := client.GetConfig(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeParamServiceTimeout, errors.CodeOf(err))
}

func TestClient_Presets(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	err := client.SavePreset(ctx, "turning-rough", presets.Preset{
		Name:        " Rough A ",
		Description: "first pass",
		Parameters:  parameters.ValueMap{"cutting.depth": parameters.Number(2)},
	})
	require.NoError(t, err)

	list, err := client.ListPresets(ctx, "turning-rough")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Rough A", list[0].Name)
	assert.Equal(t, "turning-rough", list[0].PackageName)

	p, err := client.LoadPreset(ctx, "turning-rough", "Rough A")
	require.NoError(t, err)
	assert.Equal(t, parameters.Number(2), p.Parameters["cutting.depth"])

	require.NoError(t, client.DeletePreset(ctx, "turning-rough", "Rough A"))
	assert.Empty(t, srv.RemotePresets("turning-rough"))
}

func TestClient_PresetNotFound(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.LoadPreset(ctx, "turning-rough", "missing")
	assert.ErrorIs(t, err, errors.ErrPresetNotFound)

	err = client.DeletePreset(ctx, "turning-rough", "missing")
	assert.ErrorIs(t, err, errors.ErrPresetNotFound)
}

func TestClient_SavePreset_InvalidName(t *testing.T) {
	client, srv := newTestClient(t)

	err := client.SavePreset(context.Background(), "turning-rough", presets.Preset{Name: "bad/name"})
	assert.ErrorIs(t, err, errors.ErrPreconditionFailed)
	assert.Equal(t, 0, srv.Calls("presets"))
}

func TestClient_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := observability.New("test", observability.WithRegisterer(promclient.NewRegistry()),
		observability.WithSpanProcessor(recorder), observability.WithoutGlobal())
	t.Cleanup(obs.Shutdown)

	srv := paramapitest.NewServer()
	t.Cleanup(srv.Close)
	require.NoError(t, srv.AddPackageJSON("turning-rough", roughSchema))

	client := New(srv.BaseURL(), time.Second, logger.NewNoOpLogger(), WithObservability(obs))
	_, err := client.GetConfig(context.Background(), "turning-rough")
	require.NoError(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "paramapi."+OpGetConfig, ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("param.package", "turning-rough"))
	assert.Contains(t, ended[0].Attributes(), attribute.Int("http.response.status_code", 200))
}
