// Package extract is the pattern-based extraction engine. It reads one
// source file, dispatches on the file extension to a language-family
// scanner, and emits flat, file-scoped entities positioned at single lines.
// There is no syntax tree and no scope tracking: each scanner applies a
// fixed set of independent per-line patterns, and a single line may satisfy
// several of them.
//
// Relationship extraction is a deliberate no-op: ParseFile always returns an
// empty relationship slice. Relationships enter the graph only through
// graph.AddRelationship.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jward/mnemo/internal/graph"
)

// Extractor holds the compiled line patterns for every language family.
// Construction fails if any pattern is malformed; extraction itself never
// fails on pattern grounds.
type Extractor struct {
	// Brace-syntax family (JavaScript, TypeScript).
	braceFunction *regexp.Regexp
	braceClass    *regexp.Regexp
	braceImport   *regexp.Regexp
	braceVariable *regexp.Regexp

	// Indentation-syntax family (Python).
	indentFunction *regexp.Regexp
	indentClass    *regexp.Regexp
	indentImport   *regexp.Regexp

	// Systems-syntax family (Rust).
	sysFunction *regexp.Regexp
	sysStruct   *regexp.Regexp
	sysTrait    *regexp.Regexp
	sysEnum     *regexp.Regexp
	sysUse      *regexp.Regexp
	sysMod      *regexp.Regexp
	sysConst    *regexp.Regexp
	sysImpl     *regexp.Regexp
}

// NewExtractor compiles all patterns. A compile failure is a construction
// error, surfaced once here rather than per file.
func NewExtractor() (*Extractor, error) {
	e := &Extractor{}
	for _, p := range []struct {
		dst  **regexp.Regexp
		expr string
	}{
		{&e.braceFunction, `^(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*\(`},
		{&e.braceClass, `^(?:export\s+)?class\s+(\w+)`},
		{&e.braceImport, `^import\s+.*?from\s+['"]([^'"]+)['"]`},
		{&e.braceVariable, `^(?:const|let|var)\s+(\w+)`},

		{&e.indentFunction, `^def\s+(\w+)\s*\(`},
		{&e.indentClass, `^class\s+(\w+)`},
		{&e.indentImport, `^(?:from\s+(\S+)\s+)?import\s+(\S+)`},

		{&e.sysFunction, `^\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`},
		{&e.sysStruct, `^\s*(?:pub\s+)?struct\s+(\w+)`},
		{&e.sysTrait, `^\s*(?:pub\s+)?trait\s+(\w+)`},
		{&e.sysEnum, `^\s*(?:pub\s+)?enum\s+(\w+)`},
		{&e.sysUse, `^\s*use\s+([^;]+);`},
		{&e.sysMod, `^\s*(?:pub\s+)?mod\s+(\w+)`},
		{&e.sysConst, `^\s*(?:pub\s+)?const\s+(\w+)`},
		{&e.sysImpl, `^\s*impl(?:<[^>]*>)?\s+(?:\w+\s+for\s+)?(\w+)`},
	} {
		re, err := regexp.Compile(p.expr)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p.expr, err)
		}
		*p.dst = re
	}
	return e, nil
}

// ParseFile reads path in full and scans it with the language family chosen
// by extension. An unrecognized extension is a normal empty result, not an
// error; an unreadable file is an I/O error.
func (e *Extractor) ParseFile(path string) ([]*graph.Entity, []*graph.Relationship, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}
	entities, relationships := e.Parse(path, content)
	return entities, relationships, nil
}

// Parse scans already-read content using the language family chosen by
// path's extension. The relationship slice is always empty; it is part of
// the signature so a future relationship pass would not change callers.
func (e *Extractor) Parse(path string, content []byte) ([]*graph.Entity, []*graph.Relationship) {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case "js", "jsx", "ts", "tsx":
		return e.scanBrace(string(content), path), nil
	case "py":
		return e.scanIndent(string(content), path), nil
	case "rs":
		return e.scanSystems(string(content), path), nil
	default:
		return nil, nil
	}
}

// Extensions lists the file extensions (without dot) that ParseFile scans.
func Extensions() []string {
	return []string{"js", "jsx", "ts", "tsx", "py", "rs"}
}

// Supported reports whether path has an extension ParseFile scans.
func Supported(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, e := range Extensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// lines splits content preserving 1-based numbering. A trailing newline does
// not produce a phantom final line.
func lines(content string) []string {
	split := strings.Split(content, "\n")
	if n := len(split); n > 0 && split[n-1] == "" {
		split = split[:n-1]
	}
	return split
}

// entityAt builds a single-line entity record. Columns span the whole line.
func entityAt(name string, kind graph.EntityKind, path string, lineNum int, line string) *graph.Entity {
	return graph.NewEntity(name, kind, path, lineNum, lineNum, 0, len(line))
}
