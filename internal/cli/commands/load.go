package commands

import (
	"nc-param-manager/internal/cli/workspace"

	"github.com/spf13/cobra"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "load <package>",
		Short: "Load the parameter config of a template package",
		Long: `Fetch the parameter schema of a template package and start a new working
set seeded with the declared defaults. Values of the previously loaded
package are discarded.`,
		Example: `  # Start working on a package
  ncparams load turning-rough

  # Load and validate the defaults right away
  ncparams load turning-rough --validate`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.FromContext(cmd.Context())
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			s := ws.NewSession()
			if err := s.LoadPackage(ctx, args[0]); err != nil {
				return err
			}
			if validate {
				if _, err := s.Validate(ctx); err != nil {
					return err
				}
			}
			if err := ws.Save(ctx, s); err != nil {
				return err
			}

			if ok, err := renderStructured(cmd.OutOrStdout(), ws, summarize(s)); ok {
				return err
			}
			printHeadline(cmd.OutOrStdout(), s)
			renderGroupStats(cmd.OutOrStdout(), s.GroupStats())
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the defaults after loading")
	return cmd
}
