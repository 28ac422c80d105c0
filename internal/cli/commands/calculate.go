package commands

import (
	"github.com/spf13/cobra"
)

// NewCalculateCommand creates the calculate command.
func NewCalculateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "calculate",
		Aliases: []string{"calc"},
		Short:   "Compute derived parameters",
		Long: `Ask the parameter service for the derived values of the current set. The
derived values are merged into the working set, which is then validated
again. On failure the working set is left unchanged.`,
		Example: `  ncparams calculate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}

			derived, err := s.Calculate(cmd.Context())
			if err != nil {
				return err
			}
			if err := ws.Save(cmd.Context(), s); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ok, err := renderStructured(out, ws, derived.ToMap()); ok {
				return err
			}
			renderValues(out, derived)
			printHeadline(out, s)
			return nil
		},
	}
}
