package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the working parameter set",
		Long: `Send the current values to the parameter service and print its errors and
warnings. With --strict the command fails when any error is reported, which
is convenient in scripts.`,
		Example: `  ncparams validate
  ncparams validate --strict`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}

			state, err := s.Validate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ok, err := renderStructured(out, ws, state); !ok {
				printHeadline(out, s)
				renderValidation(out, state)
			} else if err != nil {
				return err
			}
			if strict && !state.Valid {
				return fmt.Errorf("validation failed with %d errors", state.ErrorCount())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when the set is invalid")
	return cmd
}
