package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
	"gopkg.in/yaml.v3"

	"github.com/chazuruo/chaosflow/internal/draft"
)

// OutputFormat names a listing format.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatPlain OutputFormat = "plain"
	FormatYAML  OutputFormat = "yaml"
)

var headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)

func newTable(w io.Writer, headers ...interface{}) table.Table {
	headerFmt := func(format string, vals ...interface{}) string {
		return headerStyle.Render(fmt.Sprintf(format, vals...))
	}
	return table.New(headers...).WithWriter(w).WithHeaderFormatter(headerFmt)
}

// PrintHubs writes rows in format.
func PrintHubs(w io.Writer, rows []HubRow, format OutputFormat) error {
	switch format {
	case FormatTable:
		tbl := newTable(w, "HUB", "REPOSITORY", "BRANCH", "AVAILABLE", "EXPERIMENTS")
		for _, r := range rows {
			name := r.Name
			if r.Public {
				name += " (public)"
			}
			tbl.AddRow(name, r.RepoURL, r.RepoBranch, yesNo(r.Available), r.Experiments)
		}
		tbl.Print()
		return nil
	case FormatJSON:
		return PrintJSON(w, rows)
	case FormatPlain:
		for _, r := range rows {
			if _, err := fmt.Fprintln(w, r.Name); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be table, json, or plain)", format)
}

// PrintExperiments writes rows in format.
func PrintExperiments(w io.Writer, rows []ExperimentRow, format OutputFormat) error {
	switch format {
	case FormatTable:
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "No experiments found.")
			return err
		}
		tbl := newTable(w, "EXPERIMENT", "ENGINE")
		for _, r := range rows {
			tbl.AddRow(r.Key, r.YAMLLink)
		}
		tbl.Print()
		_, err := fmt.Fprintf(w, "\nTotal: %d experiment(s)\n", len(rows))
		return err
	case FormatJSON:
		return PrintJSON(w, rows)
	case FormatPlain:
		for _, r := range rows {
			if _, err := fmt.Fprintln(w, r.Key); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be table, json, or plain)", format)
}

// PrintDraft writes d as YAML or JSON.
func PrintDraft(w io.Writer, d draft.WorkflowDraft, format OutputFormat) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		return PrintJSON(w, d)
	}
	return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
