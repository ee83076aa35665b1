// Package graph holds the in-memory knowledge graph for one project:
// entities keyed by ID, an unordered relationship set deduplicated by
// (from, to, kind) signature, and per-file content hashes for change
// detection. A Graph is created per analysis session and persisted as a
// whole snapshot by the store package.
package graph

import "strings"

// Graph is the mutable in-memory knowledge graph for one project. It is not
// safe for concurrent use; callers run one logical operation at a time.
type Graph struct {
	ProjectPath   string
	Entities      map[string]*Entity
	Relationships []*Relationship
	FileHashes    map[string]string
}

// New creates an empty graph rooted at projectPath.
func New(projectPath string) *Graph {
	return &Graph{
		ProjectPath: projectPath,
		Entities:    make(map[string]*Entity),
		FileHashes:  make(map[string]string),
	}
}

// AddEntity upserts by ID: a prior entity with the same ID is replaced.
func (g *Graph) AddEntity(e *Entity) {
	g.Entities[e.ID] = e
}

// RemoveEntity deletes the entity and cascades: every relationship whose
// from or to endpoint equals entityID is removed as well.
func (g *Graph) RemoveEntity(entityID string) {
	delete(g.Entities, entityID)
	kept := g.Relationships[:0]
	for _, r := range g.Relationships {
		if r.FromEntity != entityID && r.ToEntity != entityID {
			kept = append(kept, r)
		}
	}
	g.Relationships = kept
}

// AddRelationship inserts r unless a relationship with the same
// (from, to, kind) signature already exists; duplicates are silently
// dropped, so the first insert wins.
func (g *Graph) AddRelationship(r *Relationship) {
	sig := r.Signature()
	for _, existing := range g.Relationships {
		if existing.Signature() == sig {
			return
		}
	}
	g.Relationships = append(g.Relationships, r)
}

// FindEntitiesByName returns entities whose name contains pattern as a
// case-sensitive substring. Result order is unspecified.
func (g *Graph) FindEntitiesByName(pattern string) []*Entity {
	var matches []*Entity
	for _, e := range g.Entities {
		if strings.Contains(e.Name, pattern) {
			matches = append(matches, e)
		}
	}
	return matches
}

// FindEntitiesInFile returns entities whose file path equals filePath.
func (g *Graph) FindEntitiesInFile(filePath string) []*Entity {
	var matches []*Entity
	for _, e := range g.Entities {
		if e.FilePath == filePath {
			matches = append(matches, e)
		}
	}
	return matches
}

// FindRelationships returns relationships satisfying every filter set on q.
func (g *Graph) FindRelationships(q Query) []*Relationship {
	var matches []*Relationship
	for _, r := range g.Relationships {
		if q.Matches(r) {
			matches = append(matches, r)
		}
	}
	return matches
}

// Dependencies returns the entities that entityID points at: for each
// relationship from entityID, the target entity if it is currently present.
// Relationships whose target is missing from the entity set are skipped.
func (g *Graph) Dependencies(entityID string) []*Entity {
	var deps []*Entity
	for _, r := range g.Relationships {
		if r.FromEntity != entityID {
			continue
		}
		if target, ok := g.Entities[r.ToEntity]; ok {
			deps = append(deps, target)
		}
	}
	return deps
}

// Dependents returns the entities that point at entityID, resolved against
// the current entity set. Missing sources are skipped.
func (g *Graph) Dependents(entityID string) []*Entity {
	var deps []*Entity
	for _, r := range g.Relationships {
		if r.ToEntity != entityID {
			continue
		}
		if source, ok := g.Entities[r.FromEntity]; ok {
			deps = append(deps, source)
		}
	}
	return deps
}

// UpdateFileHash records the content hash for filePath.
func (g *Graph) UpdateFileHash(filePath, hash string) {
	g.FileHashes[filePath] = hash
}

// HasFileChanged reports whether filePath's content differs from the last
// recorded hash. A path that was never hashed is always considered changed.
func (g *Graph) HasFileChanged(filePath, currentHash string) bool {
	stored, ok := g.FileHashes[filePath]
	if !ok {
		return true
	}
	return stored != currentHash
}

// Stats summarizes the graph for status reporting.
type Stats struct {
	EntityCount       int    `json:"entity_count"`
	RelationshipCount int    `json:"relationship_count"`
	FileCount         int    `json:"file_count"`
	ProjectPath       string `json:"project_path"`
}

// Stats returns the current entity, relationship, and hashed-file counts.
func (g *Graph) Stats() Stats {
	return Stats{
		EntityCount:       len(g.Entities),
		RelationshipCount: len(g.Relationships),
		FileCount:         len(g.FileHashes),
		ProjectPath:       g.ProjectPath,
	}
}

// Clear empties all three collections. The project path is kept.
func (g *Graph) Clear() {
	g.Entities = make(map[string]*Entity)
	g.Relationships = nil
	g.FileHashes = make(map[string]string)
}
