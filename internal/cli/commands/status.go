package commands

import (
	"fmt"

	"nc-param-manager/internal/parameters"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"show"},
		Short:   "Show the working parameter set",
		Long: `Print every parameter of the loaded package with its current value and
validation status.`,
		Example: `  ncparams status
  ncparams status --group cutting
  ncparams status --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ok, err := renderStructured(out, ws, summarize(s)); ok {
				return err
			}
			if group != "" && !hasGroup(s.Groups(), group) {
				return fmt.Errorf("package %s has no group %q", s.PackageName(), group)
			}
			printHeadline(out, s)
			renderParameters(out, s, group)
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Only show one parameter group")
	return cmd
}

// NewGroupsCommand creates the groups command.
func NewGroupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "Show completion per parameter group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, s, err := resume(cmd)
			if err != nil {
				return err
			}

			stats := s.GroupStats()
			out := cmd.OutOrStdout()
			if ok, err := renderStructured(out, ws, stats); ok {
				return err
			}
			printHeadline(out, s)
			renderGroupStats(out, stats)
			return nil
		},
	}
}

func hasGroup(views []parameters.GroupView, key string) bool {
	for _, v := range views {
		if v.Key == key {
			return true
		}
	}
	return false
}
