package main

import "github.com/jward/mnemo"

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIEntity is a JSON-friendly entity representation.
type CLIEntity struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Kind        string            `json:"kind"`
	File        string            `json:"file"`
	LineStart   int               `json:"line_start"`
	LineEnd     int               `json:"line_end"`
	ColumnStart int               `json:"column_start"`
	ColumnEnd   int               `json:"column_end"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CLIStats is the status command's payload.
type CLIStats struct {
	ProjectPath       string `json:"project_path"`
	Database          string `json:"database"`
	EntityCount       int    `json:"entity_count"`
	RelationshipCount int    `json:"relationship_count"`
	FileCount         int    `json:"file_count"`
}

// CLIAnalysis is the analyze command's payload.
type CLIAnalysis struct {
	Path          string      `json:"path"`
	FilesAnalyzed int         `json:"files_analyzed"`
	FilesSkipped  int         `json:"files_skipped"`
	Entities      []CLIEntity `json:"entities"`
}

func toCLIEntity(e *mnemo.Entity) CLIEntity {
	return CLIEntity{
		ID:          e.ID,
		Name:        e.Name,
		Kind:        e.Kind.String(),
		File:        e.FilePath,
		LineStart:   e.LineStart,
		LineEnd:     e.LineEnd,
		ColumnStart: e.ColumnStart,
		ColumnEnd:   e.ColumnEnd,
		Metadata:    e.Metadata,
	}
}

func toCLIEntities(entities []*mnemo.Entity) []CLIEntity {
	out := make([]CLIEntity, 0, len(entities))
	for _, e := range entities {
		out = append(out, toCLIEntity(e))
	}
	return out
}
