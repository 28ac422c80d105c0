package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the working parameter set",
		Long: `Empty every value of the working set and clear the validation result. The
loaded package and the saved presets are kept. With --defaults the set is
reseeded with the declared defaults instead.`,
		Example: `  ncparams reset
  ncparams reset --defaults`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}

			if defaults {
				err = s.LoadPackage(cmd.Context(), s.PackageName())
			} else {
				s.Reset()
			}
			if err != nil {
				return err
			}
			if err := ws.Save(cmd.Context(), s); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Working set of %s reset (%d values)\n", s.PackageName(), len(s.Values()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "Reseed with the declared defaults")
	return cmd
}
