package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []CLIEntity:
		formatEntitiesText(w, v)
	case CLIStats:
		formatStatsText(w, v)
	case CLIAnalysis:
		formatAnalysisText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// formatEntitiesText formats entities as aligned columns.
func formatEntitiesText(w io.Writer, entities []CLIEntity) {
	if len(entities) == 0 {
		fmt.Fprintln(w, "No entities found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tFILE\tLINE")
	for _, e := range entities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.Kind, e.Name, e.File, e.LineStart)
	}
	tw.Flush()
}

// formatStatsText formats the status payload as readable text.
func formatStatsText(w io.Writer, stats CLIStats) {
	fmt.Fprintln(w, "Memory Status")
	fmt.Fprintln(w, "=============")
	fmt.Fprintf(w, "Project:       %s\n", stats.ProjectPath)
	fmt.Fprintf(w, "Database:      %s\n", stats.Database)
	fmt.Fprintf(w, "Entities:      %d\n", stats.EntityCount)
	fmt.Fprintf(w, "Relationships: %d\n", stats.RelationshipCount)
	fmt.Fprintf(w, "Files tracked: %d\n", stats.FileCount)
}

// formatAnalysisText summarizes an analysis run and lists new entities.
func formatAnalysisText(w io.Writer, a CLIAnalysis) {
	fmt.Fprintf(w, "Analyzed %s: %d file(s), %d skipped, %d entities\n",
		a.Path, a.FilesAnalyzed, a.FilesSkipped, len(a.Entities))
	if len(a.Entities) > 0 {
		fmt.Fprintln(w)
		formatEntitiesText(w, a.Entities)
	}
}
