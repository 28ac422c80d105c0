package commands

import (
	"fmt"

	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/presets"

	"github.com/spf13/cobra"
)

// NewPresetCommand creates the preset command group.
func NewPresetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage named parameter presets",
		Long: `Presets are named snapshots of the working set, scoped to the loaded
package. They are kept in the configured preset backend; push and pull copy
them to and from the parameter service.`,
	}

	cmd.AddCommand(newPresetListCommand())
	cmd.AddCommand(newPresetSaveCommand())
	cmd.AddCommand(newPresetLoadCommand())
	cmd.AddCommand(newPresetDeleteCommand())
	cmd.AddCommand(newPresetPushCommand())
	cmd.AddCommand(newPresetPullCommand())
	return cmd
}

func newPresetListCommand() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the presets of the loaded package",
		Example: `  ncparams preset list
  ncparams preset list --remote`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}

			var list []presets.Preset
			if remote {
				list, err = ws.Client.ListPresets(cmd.Context(), s.PackageName())
			} else {
				list, err = s.Presets()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ok, err := renderStructured(out, ws, list); ok {
				return err
			}
			renderPresets(out, list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "List the presets stored on the parameter service")
	return cmd
}

func newPresetSaveCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:     "save <name>",
		Short:   "Save the working set as a preset",
		Long:    `Snapshot the working set under name. An existing preset with the same name is replaced.`,
		Example: `  ncparams preset save rough-45 --description "45# steel, roughing"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := resume(cmd)
			if err != nil {
				return err
			}
			_, err = s.SavePreset(cmd.Context(), args[0], description)
			return err
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Preset description")
	return cmd
}

func newPresetLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "load <name>",
		Aliases: []string{"apply"},
		Short:   "Merge a preset into the working set",
		Example: `  ncparams preset load rough-45`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}
			if _, err := s.LoadPreset(args[0]); err != nil {
				return err
			}
			if err := ws.Save(cmd.Context(), s); err != nil {
				return err
			}
			printHeadline(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newPresetDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a preset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := resume(cmd)
			if err != nil {
				return err
			}
			return s.DeletePreset(cmd.Context(), args[0])
		},
	}
}

func newPresetPushCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "push <name>",
		Short:   "Upload a local preset to the parameter service",
		Example: `  ncparams preset push rough-45`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}
			if ws.Store == nil {
				return errors.NewPresetsDisabledError()
			}

			p, err := ws.Store.Get(s.PackageName(), args[0])
			if err != nil {
				return err
			}
			if err := ws.Client.SavePreset(cmd.Context(), s.PackageName(), p); err != nil {
				return err
			}
			ws.Notifier.Success(fmt.Sprintf("Preset %q pushed to %s", p.Name, ws.Client.BaseURL()))
			return nil
		},
	}
}

func newPresetPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull [name]",
		Short: "Copy presets from the parameter service into the local store",
		Long: `Fetch one preset, or every preset of the loaded package when no name is
given, and store them locally. Local presets with the same name are replaced.`,
		Example: `  ncparams preset pull
  ncparams preset pull rough-45`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}
			if ws.Store == nil {
				return errors.NewPresetsDisabledError()
			}

			ctx := cmd.Context()
			pkg := s.PackageName()
			var fetched []presets.Preset
			if len(args) == 1 {
				p, err := ws.Client.LoadPreset(ctx, pkg, args[0])
				if err != nil {
					return err
				}
				fetched = []presets.Preset{p}
			} else {
				fetched, err = ws.Client.ListPresets(ctx, pkg)
				if err != nil {
					return err
				}
			}

			n := ws.Store.Import(ctx, fetched)
			ws.Notifier.Success(fmt.Sprintf("Pulled %d presets for %s", n, pkg))
			return nil
		},
	}
}
