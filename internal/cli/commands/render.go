package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"nc-param-manager/internal/parameters"
	"nc-param-manager/internal/presets"
	"nc-param-manager/internal/session"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderParameters prints one row per schema parameter. An empty group
// prints every group.
func renderParameters(w io.Writer, s *session.Session, group string) {
	values := s.Values()
	state := s.Validation()

	t := newTable(w)
	t.AppendHeader(table.Row{"Key", "Label", "Type", "Value", "Unit", "Req", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "Req", Align: text.AlignCenter}})
	for _, view := range s.Groups() {
		if group != "" && view.Key != group {
			continue
		}
		for _, def := range view.Parameters {
			value := ""
			if v, ok := values[def.Key]; ok {
				value = v.Format(def.Type)
			}
			req := ""
			if def.Required {
				req = "*"
			}
			t.AppendRow(table.Row{def.Key, def.Label, string(def.Type), value, def.Unit, req, statusText(state, def.Key)})
		}
	}
	t.Render()
}

func statusText(state parameters.ValidationState, key string) string {
	if msg, ok := state.ErrorFor(key); ok {
		return "error: " + msg
	}
	if msg, ok := state.WarningFor(key); ok {
		return "warning: " + msg
	}
	return ""
}

func renderGroupStats(w io.Writer, stats []session.GroupStat) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Group", "Name", "Params", "Required", "Filled", "Errors", "Warnings", "Complete"})
	for _, st := range stats {
		t.AppendRow(table.Row{
			st.Key,
			strings.TrimSpace(st.Icon + " " + st.Name),
			st.Total, st.Required, st.Filled, st.Errors, st.Warnings,
			fmt.Sprintf("%d%%", st.Completion),
		})
	}
	t.Render()
}

// renderValidation prints the messages of state, or a single line when clean.
func renderValidation(w io.Writer, state parameters.ValidationState) {
	if len(state.Errors) == 0 && len(state.Warnings) == 0 {
		_, _ = fmt.Fprintln(w, "All parameters valid")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Key", "Level", "Message"})
	for _, key := range sortedKeys(state.Errors) {
		t.AppendRow(table.Row{key, "error", state.Errors[key]})
	}
	for _, key := range sortedKeys(state.Warnings) {
		t.AppendRow(table.Row{key, "warning", state.Warnings[key]})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d errors, %d warnings", state.ErrorCount(), state.WarningCount())})
	t.Render()
}

func renderValues(w io.Writer, values parameters.ValueMap) {
	if len(values) == 0 {
		_, _ = fmt.Fprintln(w, "(no values)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Key", "Value"})
	for _, key := range values.Keys() {
		t.AppendRow(table.Row{key, values[key].String()})
	}
	t.Render()
}

func renderPresets(w io.Writer, list []presets.Preset) {
	if len(list) == 0 {
		_, _ = fmt.Fprintln(w, "(no presets)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Description", "Values", "Created"})
	for _, p := range list {
		created := p.CreatedAt
		if ts := p.Created(); !ts.IsZero() {
			created = ts.Local().Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{p.Name, p.Description, len(p.Parameters), created})
	}
	t.Render()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
