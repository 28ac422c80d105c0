package session

import (
	"context"
	"testing"
	"time"

	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/paramapi"
	"nc-param-manager/internal/paramapi/paramapitest"
	"nc-param-manager/internal/parameters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const turningRough = `{
  "groups": {
    "workpiece": {
      "name": "Workpiece",
      "icon": "📦",
      "parameters": {
        "length": {"type": "length", "label": "Length", "default": 120, "unit": "mm"},
        "material": {"type": "material", "label": "Material", "default": "45#"}
      }
    },
    "cutting": {
      "name": "Cutting",
      "parameters": {
        "depth": {"type": "length", "label": "Depth of cut", "required": true, "range": [0.5, 8], "unit": "mm"},
        "feed_rate": {"type": "speed", "label": "Feed", "default": 0.25, "unit": "mm/r"},
        "mode": {"type": "string", "label": "Mode", "default": "rough", "options": ["rough", "finish"]}
      }
    }
  }
}`

func TestTurningRough_EndToEnd(t *testing.T) {
	srv := paramapitest.NewServer()
	t.Cleanup(srv.Close)
	require.NoError(t, srv.AddPackageJSON("turning-rough", turningRough))
	srv.SetDerived("turning-rough", parameters.ValueMap{"process.estimated_time": parameters.Number(480)})

	client := paramapi.New(srv.BaseURL(), 2*time.Second, logger.NewTestLogger(t))
	s := newSession(t, client, Options{EnablePresets: true})
	ctx := context.Background()

	require.NoError(t, s.LoadPackage(ctx, "turning-rough"))
	assert.Less(t, s.CompletionPercentage(), 100)

	state, err := s.Validate(ctx)
	require.NoError(t, err)
	assert.False(t, state.Valid)
	assert.Contains(t, state.Errors, "cutting.depth")

	s.SetValue("cutting.depth", parameters.Number(5))
	s.WaitIdle()
	assert.Equal(t, 100, s.CompletionPercentage())
	assert.True(t, s.Validation().Valid)

	s.SetValue("cutting.depth", parameters.Number(12))
	s.WaitIdle()
	assert.True(t, s.Validation().Valid)
	assert.Contains(t, s.Validation().Warnings, "cutting.depth")

	_, err = s.SavePreset(ctx, "deep", "")
	require.NoError(t, err)

	calls := srv.Calls("validate")
	_, err = s.Calculate(ctx)
	require.NoError(t, err)
	s.WaitIdle()
	assert.Equal(t, calls+1, srv.Calls("validate"))
	v, _ := s.Value("process.estimated_time")
	assert.Equal(t, parameters.Number(480), v)

	s.Reset()
	assert.Empty(t, s.Values())
	_, err = s.LoadPreset("deep")
	require.NoError(t, err)
	s.WaitIdle()
	v, _ = s.Value("cutting.depth")
	assert.Equal(t, parameters.Number(12), v)
}

func TestTurningRough_ServiceFailure(t *testing.T) {
	srv := paramapitest.NewServer()
	t.Cleanup(srv.Close)
	require.NoError(t, srv.AddPackageJSON("turning-rough", turningRough))

	client := paramapi.New(srv.BaseURL(), 2*time.Second, logger.NewTestLogger(t))
	s := newSession(t, client, Options{})
	ctx := context.Background()
	require.NoError(t, s.LoadPackage(ctx, "turning-rough"))

	srv.Fail("calculate", "calculator crashed")
	_, err := s.Calculate(ctx)
	require.Error(t, err)
	assert.Equal(t, "calculator crashed", s.Error())
	_, ok := s.Value("process.estimated_time")
	assert.False(t, ok)
}
