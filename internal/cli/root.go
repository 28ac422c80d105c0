// Package cli provides the ncparams command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"nc-param-manager/internal/cli/commands"
	"nc-param-manager/internal/cli/workspace"
	"nc-param-manager/internal/common/config"
	"nc-param-manager/internal/common/logger"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile    string
		baseURL    string
		presetsDir string
		output     string
		verbose    bool
		ws         *workspace.Workspace
	)

	rootCmd := &cobra.Command{
		Use:   "ncparams",
		Short: "Manage NC program template parameters",
		Long: `ncparams edits the parameter set of an NC program template package against
the parameter service: load a package, set values, validate, calculate
derived values and keep named presets.

The working set is saved between invocations under presets.directory.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip workspace setup for help, completion and version
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.ParameterService.BaseURL = baseURL
			}
			if presetsDir != "" {
				cfg.Presets.Directory = presetsDir
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			log := logger.NewStructured(level, cfg.Logging.Format).Named("ncparams")

			ws, err = workspace.Open(cmd.Context(), cfg, log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ws.Output = output
			cmd.SetContext(workspace.WithWorkspace(cmd.Context(), ws))
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if ws == nil {
				return nil
			}
			_ = ws.Logger.Sync()
			return ws.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Parameter service base URL")
	rootCmd.PersistentFlags().StringVar(&presetsDir, "presets-dir", "", "Directory for file presets and the working set")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(commands.NewSetCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewGroupsCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewCalculateCommand())
	rootCmd.AddCommand(commands.NewResetCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewPresetCommand())

	return rootCmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
