package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/parameters"

	"github.com/spf13/cobra"
)

type setOptions struct {
	rawJSON      bool
	allowUnknown bool
}

// NewSetCommand creates the set command.
func NewSetCommand() *cobra.Command {
	opts := &setOptions{}

	cmd := &cobra.Command{
		Use:   "set <group.param=value>...",
		Short: "Set parameter values",
		Long: `Assign one or more parameter values and validate the result.

Values are parsed according to the declared parameter type: numbers for
number, length, angle and speed (a trailing unit such as "5mm" is ignored),
true/false for boolean, comma-separated lists for array and JSON for object.
Use --json to pass any value as JSON.`,
		Example: `  ncparams set cutting.depth=2.5 cutting.mode=finish
  ncparams set tool.shape='{"insert":"CNMG"}'
  ncparams set --json workpiece.stock='[40, 120]'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}

			schema := s.Schema()
			values := parameters.ValueMap{}
			for _, arg := range args {
				key, v, err := parseAssignment(schema, arg, opts)
				if err != nil {
					return err
				}
				values[key] = v
			}

			s.SetValues(values)
			if err := ws.Save(cmd.Context(), s); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ok, err := renderStructured(out, ws, summarize(s)); ok {
				return err
			}
			printHeadline(out, s)
			renderValidation(out, s.Validation())
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.rawJSON, "json", false, "Parse values as JSON")
	cmd.Flags().BoolVar(&opts.allowUnknown, "allow-unknown", false, "Accept keys the schema does not declare")
	return cmd
}

func parseAssignment(schema *parameters.Schema, arg string, opts *setOptions) (string, parameters.Value, error) {
	key, text, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", parameters.Value{}, errors.NewInvalidInputError(fmt.Sprintf("expected group.param=value, got %q", arg))
	}

	def, known := schema.Lookup(key)
	if !known && !opts.allowUnknown {
		return "", parameters.Value{}, errors.NewPreconditionFailedError(fmt.Sprintf("Unknown parameter %q", key))
	}

	if opts.rawJSON {
		var v parameters.Value
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return "", parameters.Value{}, errors.NewInvalidInputError(fmt.Sprintf("%s: invalid JSON value: %v", key, err))
		}
		return key, v, nil
	}
	if !known {
		return key, parameters.String(text), nil
	}
	if def.Type.IsNumeric() {
		n, ok := parameters.ParseNumber(text)
		if !ok {
			return "", parameters.Value{}, errors.NewInvalidInputError(fmt.Sprintf("%s: %q is not a number", key, text))
		}
		return key, parameters.Number(n), nil
	}
	return key, parameters.ParseValue(text, def.Type), nil
}
