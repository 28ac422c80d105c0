package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inputSchema = `{
  "type": "object",
  "required": ["packageName"],
  "properties": {
    "packageName": {"type": "string", "minLength": 1},
    "calculate": {"type": "boolean"}
  }
}`

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(inputSchema)

	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		wantField string
	}{
		{
			name:      "valid input",
			input:     map[string]interface{}{"packageName": "turning-rough", "calculate": true},
			wantValid: true,
		},
		{
			name:      "missing package",
			input:     map[string]interface{}{"calculate": true},
			wantValid: false,
			wantField: "(root)",
		},
		{
			name:      "wrong type",
			input:     map[string]interface{}{"packageName": "p", "calculate": "yes"},
			wantValid: false,
			wantField: "calculate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Validate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.True(t, result.HasErrors(tt.wantField), "errors: %v", result.GetErrorMessages())
				assert.NotEmpty(t, result.Error())
			}
		})
	}
}

func TestSchema_ValidateBytes(t *testing.T) {
	s := MustCompile(`{"type": "array", "items": {"type": "object", "required": ["name"]}}`)

	result, err := s.ValidateBytes([]byte(`[{"name": "P1"}]`))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = s.ValidateBytes([]byte(`[{"label": "P1"}]`))
	require.NoError(t, err)
	assert.False(t, result.Valid)

	_, err = s.ValidateBytes([]byte(`not json`))
	assert.Error(t, err)
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestValidPresetName(t *testing.T) {
	assert.True(t, ValidPresetName("Rough pass-1"))
	assert.True(t, ValidPresetName("粗加工_A"))
	assert.False(t, ValidPresetName("bad/name"))
	assert.False(t, ValidPresetName(""))
}

func TestValidateTaskType(t *testing.T) {
	assert.NoError(t, ValidateTaskType("nc.parameters.prepare"))
	assert.Error(t, ValidateTaskType("prepare-parameters"))
}
