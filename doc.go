// Package mnemo builds and persists a lightweight knowledge graph of a
// source tree: named entities (functions, classes, modules, variables,
// imports) extracted by per-line pattern matching, typed relationships
// between them, and file-content hashes for change detection. It gives
// developer tooling a structured, queryable memory of a project without
// re-parsing it every time.
//
// # Pipeline
//
// For each analyzed file, mnemo reads the content, hashes it with BLAKE3,
// and skips the file if the stored snapshot already has that hash. Changed
// files are scanned line by line with a fixed pattern set chosen by file
// extension (brace syntax for JavaScript/TypeScript, indentation syntax for
// Python, systems syntax for Rust). Extracted entities are merged into the
// in-memory graph, which is then written back to SQLite as a complete
// snapshot: every save atomically replaces all persisted rows.
//
// Extraction is deliberately shallow. There is no syntax tree, no scope
// resolution, and no multi-line construct handling: every entity is a flat,
// file-scoped record positioned at a single line. The extractor never emits
// relationships; they enter the graph only through explicit insertion.
//
// # Usage
//
// Create an Engine, analyze files or directories, and query:
//
//	e, err := mnemo.New(".mnemo/memory.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	res, err := e.AnalyzeDirectory(ctx, projectPath, "src")
//
//	entities, err := e.FindByName("handleRequest")
//	entityCount, relCount, fileCount, err := e.Stats()
//
// # Queries
//
//   - [Engine.FindByName] — persisted entities by case-sensitive name
//     substring, ordered by name.
//   - [Engine.EntitiesInFile] — persisted entities for one file, ordered by
//     line.
//   - [Engine.Stats] — aggregate entity/relationship/file counts.
//   - [Engine.Load] — the full snapshot as a [Graph], whose methods cover
//     relationship queries and one-hop dependency traversal.
package mnemo
