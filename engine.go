package mnemo

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"lukechampine.com/blake3"

	"github.com/jward/mnemo/internal/extract"
	"github.com/jward/mnemo/internal/graph"
	"github.com/jward/mnemo/internal/store"
)

// Engine orchestrates the mnemo pipeline: file reading, change detection,
// pattern extraction, graph mutation, and snapshot persistence. One Engine
// serves one database; it is not safe for concurrent use.
type Engine struct {
	store     *store.Store
	extractor *extract.Extractor

	// include/exclude are doublestar globs matched against paths relative to
	// the analyzed directory. Empty include means every supported file.
	include []string
	exclude []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPatterns restricts directory analysis to files matching one of the
// include globs and none of the exclude globs.
func WithPatterns(include, exclude []string) Option {
	return func(e *Engine) {
		e.include = include
		e.exclude = exclude
	}
}

// New creates an Engine backed by a SQLite database at dbPath. The schema is
// migrated and all extraction patterns compiled before New returns; a
// malformed pattern fails here, never during analysis.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("mnemo: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("mnemo: migrate: %w", err)
	}
	x, err := extract.NewExtractor()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("mnemo: create extractor: %w", err)
	}

	e := &Engine{store: s, extractor: x}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Init persists an empty snapshot for projectPath, establishing the database.
func (e *Engine) Init(projectPath string) error {
	if err := e.store.Save(graph.New(projectPath)); err != nil {
		return fmt.Errorf("mnemo: init: %w", err)
	}
	return nil
}

// Reset replaces the persisted snapshot with an empty graph for projectPath.
func (e *Engine) Reset(projectPath string) error {
	if err := e.store.Save(graph.New(projectPath)); err != nil {
		return fmt.Errorf("mnemo: reset: %w", err)
	}
	return nil
}

// Load reads the full persisted snapshot into a knowledge graph.
func (e *Engine) Load(projectPath string) (*Graph, error) {
	return e.store.Load(projectPath)
}

// AnalysisResult reports what one analysis pass did.
type AnalysisResult struct {
	// Entities extracted and added to the graph, in source order.
	Entities []*Entity

	// FilesAnalyzed and FilesSkipped count directory-analysis progress.
	// A file is skipped when its content hash matches the stored one.
	FilesAnalyzed int
	FilesSkipped  int
}

// HashContent returns the hex BLAKE3 digest used for change detection.
func HashContent(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// AnalyzeFile extracts entities from one file and persists the grown graph.
// Unchanged files (same content hash as the stored snapshot) are skipped.
// Re-analysis of a changed file appends fresh records; it does not replace
// the file's prior entities.
func (e *Engine) AnalyzeFile(ctx context.Context, projectPath, path string) (*AnalysisResult, error) {
	g, err := e.store.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("mnemo: load: %w", err)
	}
	res := &AnalysisResult{}
	if err := e.analyzeInto(ctx, g, path, res); err != nil {
		return nil, err
	}
	if err := e.store.Save(g); err != nil {
		return nil, fmt.Errorf("mnemo: save: %w", err)
	}
	return res, nil
}

// AnalyzeDirectory walks root, analyzes every included file, and persists
// the grown graph once at the end. Per-file extraction errors are collected
// and the walk continues; the first error is returned with a count.
func (e *Engine) AnalyzeDirectory(ctx context.Context, projectPath, root string) (*AnalysisResult, error) {
	g, err := e.store.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("mnemo: load: %w", err)
	}

	res := &AnalysisResult{}
	var errs []error
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if !e.shouldAnalyze(rel, path) {
			return nil
		}
		if err := e.analyzeInto(ctx, g, path, res); err != nil {
			errs = append(errs, fmt.Errorf("analyze %s: %w", path, err))
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("mnemo: walk %s: %w", root, walkErr)
	}

	if err := e.store.Save(g); err != nil {
		return nil, fmt.Errorf("mnemo: save: %w", err)
	}
	if len(errs) > 0 {
		return res, fmt.Errorf("mnemo: analysis had %d error(s): %w", len(errs), errs[0])
	}
	return res, nil
}

// analyzeInto hashes path, skips it when unchanged, and otherwise parses it
// and merges the results into g.
func (e *Engine) analyzeInto(ctx context.Context, g *graph.Graph, path string, res *AnalysisResult) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	hash := HashContent(content)
	if !g.HasFileChanged(path, hash) {
		res.FilesSkipped++
		return nil
	}

	entities, relationships := e.extractor.Parse(path, content)
	for _, ent := range entities {
		g.AddEntity(ent)
	}
	for _, rel := range relationships {
		g.AddRelationship(rel)
	}
	g.UpdateFileHash(path, hash)

	res.Entities = append(res.Entities, entities...)
	res.FilesAnalyzed++
	return nil
}

// shouldAnalyze applies extension support and the include/exclude globs.
// rel is the walk-relative path used for glob matching.
func (e *Engine) shouldAnalyze(rel, path string) bool {
	if !extract.Supported(path) {
		return false
	}
	for _, pattern := range e.exclude {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			return false
		}
	}
	if len(e.include) == 0 {
		return true
	}
	for _, pattern := range e.include {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			return true
		}
	}
	return false
}

// FindByName returns persisted entities whose name contains pattern,
// ordered by name.
func (e *Engine) FindByName(pattern string) ([]*Entity, error) {
	return e.store.EntitiesByName(pattern)
}

// EntitiesInFile returns persisted entities for an exact file path, ordered
// by line.
func (e *Engine) EntitiesInFile(path string) ([]*Entity, error) {
	return e.store.EntitiesInFile(path)
}

// Stats returns aggregate counts over the persisted snapshot.
func (e *Engine) Stats() (entityCount, relationshipCount, fileCount int, err error) {
	return e.store.Stats()
}
