// Package commands holds the ncparams subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"nc-param-manager/internal/cli/workspace"
	"nc-param-manager/internal/session"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// resume returns the workspace and the session saved by the last command.
func resume(cmd *cobra.Command) (*workspace.Workspace, *session.Session, error) {
	ws, err := workspace.FromContext(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	s, err := ws.Resume(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return ws, s, nil
}

// renderStructured writes v as JSON or YAML and reports whether the
// workspace asked for one of those formats.
func renderStructured(w io.Writer, ws *workspace.Workspace, v interface{}) (bool, error) {
	switch ws.Output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = w.Write(data)
		return true, err
	case "", "table":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q (table|json|yaml)", ws.Output)
	}
}

// summary is the structured form of a session used by status and load.
type summary struct {
	PackageName          string                 `json:"packageName" yaml:"packageName"`
	CompletionPercentage int                    `json:"completionPercentage" yaml:"completionPercentage"`
	Valid                bool                   `json:"valid" yaml:"valid"`
	Errors               map[string]string      `json:"errors" yaml:"errors"`
	Warnings             map[string]string      `json:"warnings" yaml:"warnings"`
	Values               map[string]interface{} `json:"values" yaml:"values"`
}

func summarize(s *session.Session) summary {
	state := s.Validation()
	return summary{
		PackageName:          s.PackageName(),
		CompletionPercentage: s.CompletionPercentage(),
		Valid:                state.Valid,
		Errors:               state.Errors,
		Warnings:             state.Warnings,
		Values:               s.Values().ToMap(),
	}
}

func printHeadline(w io.Writer, s *session.Session) {
	state := s.Validation()
	status := "valid"
	if !state.Valid {
		status = fmt.Sprintf("%d errors", state.ErrorCount())
	}
	_, _ = fmt.Fprintf(w, "%s: %d%% complete, %s", s.PackageName(), s.CompletionPercentage(), status)
	if state.WarningCount() > 0 {
		_, _ = fmt.Fprintf(w, ", %d warnings", state.WarningCount())
	}
	_, _ = fmt.Fprintln(w)
}
