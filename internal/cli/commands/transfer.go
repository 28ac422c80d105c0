package commands

import (
	"fmt"
	"io"
	"os"

	"nc-param-manager/internal/session"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		format string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the working values as JSON or YAML",
		Example: `  ncparams export > values.json
  ncparams export --file values.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, s, err := resume(cmd)
			if err != nil {
				return err
			}

			f, err := transferFormat(format, file)
			if err != nil {
				return err
			}
			data, err := s.ExportValues(f)
			if err != nil {
				return err
			}

			if file == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(file, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", file, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d values to %s\n", len(s.Values()), file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from file extension, else json)")
	cmd.Flags().StringVar(&file, "file", "", "Write to a file instead of stdout")
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	var (
		format      string
		skipUnknown bool
	)

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Merge values from a JSON or YAML file",
		Long: `Merge a value map into the working set, the same way a preset is applied.
Pass - to read from stdin.`,
		Example: `  ncparams import values.yaml
  ncparams import --skip-unknown values.json
  cat values.json | ncparams import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}

			path := args[0]
			var data []byte
			if path == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
				path = ""
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			f, err := transferFormat(format, path)
			if err != nil {
				return err
			}
			n, err := s.ImportValues(data, f, session.ImportOptions{SkipUnknown: skipUnknown})
			if err != nil {
				return err
			}
			if err := ws.Save(cmd.Context(), s); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Imported %d values\n", n)
			printHeadline(out, s)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from file extension, else json)")
	cmd.Flags().BoolVar(&skipUnknown, "skip-unknown", false, "Drop keys the schema does not declare")
	return cmd
}

func transferFormat(flag, path string) (session.Format, error) {
	if flag != "" {
		return session.ParseFormat(flag)
	}
	return session.FormatFromPath(path), nil
}
