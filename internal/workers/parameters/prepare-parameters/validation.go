package prepareparameters

import "nc-param-manager/internal/common/validation"

const inputSchema = `{
  "type": "object",
  "required": ["packageName"],
  "properties": {
    "packageName": {"type": "string", "minLength": 1, "maxLength": 200},
    "presetName": {"type": "string", "maxLength": 200},
    "parameters": {"type": "object"},
    "calculate": {"type": "boolean"}
  }
}`

const outputSchema = `{
  "type": "object",
  "required": ["packageName", "parameters", "validation", "completionPercentage", "calculated"],
  "properties": {
    "packageName": {"type": "string"},
    "parameters": {"type": "object"},
    "validation": {
      "type": "object",
      "required": ["valid", "errors", "warnings"],
      "properties": {
        "valid": {"type": "boolean"},
        "errors": {"type": "object"},
        "warnings": {"type": "object"}
      }
    },
    "completionPercentage": {"type": "integer", "minimum": 0, "maximum": 100},
    "calculated": {"type": "object"}
  }
}`

var (
	inputValidator  = validation.MustCompile(inputSchema)
	outputValidator = validation.MustCompile(outputSchema)
)

func GetInputSchema() *validation.Schema  { return inputValidator }
func GetOutputSchema() *validation.Schema { return outputValidator }
