package store

import (
	"fmt"

	"github.com/jward/mnemo/internal/graph"
)

// Save replaces the persisted snapshot with g. All rows of all three tables
// are deleted and the graph's current contents reinserted within a single
// transaction: the write commits atomically or rolls back entirely, so a
// reader never observes a partially-replaced snapshot.
func (s *Store) Save(g *graph.Graph) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save: begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"entities", "relationships", "file_hashes"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("save: clear %s: %w", table, err)
		}
	}

	entStmt, err := tx.Prepare(
		`INSERT INTO entities (id, name, entity_type, file_path, line_start, line_end,
			column_start, column_end, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save: prepare entities: %w", err)
	}
	defer entStmt.Close()
	for _, e := range g.Entities {
		_, err := entStmt.Exec(
			e.ID, e.Name, e.Kind.String(), e.FilePath,
			e.LineStart, e.LineEnd, e.ColumnStart, e.ColumnEnd,
			marshalMetadata(e.Metadata), formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("save: insert entity %q: %w", e.Name, err)
		}
	}

	relStmt, err := tx.Prepare(
		`INSERT INTO relationships (id, from_entity, to_entity, relationship_type,
			metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save: prepare relationships: %w", err)
	}
	defer relStmt.Close()
	for _, r := range g.Relationships {
		_, err := relStmt.Exec(
			r.ID, r.FromEntity, r.ToEntity, r.Kind.String(),
			marshalMetadata(r.Metadata), formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("save: insert relationship %s: %w", r.ID, err)
		}
	}

	hashStmt, err := tx.Prepare(
		"INSERT INTO file_hashes (file_path, hash, updated_at) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("save: prepare file_hashes: %w", err)
	}
	defer hashStmt.Close()
	now := formatTime(nowUTC())
	for path, hash := range g.FileHashes {
		if _, err := hashStmt.Exec(path, hash, now); err != nil {
			return fmt.Errorf("save: insert file hash %q: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}
	return nil
}

// Load reconstructs a knowledge graph from the persisted snapshot by reading
// all three tables in full. Data-quality anomalies (unrecognized kind token,
// unparsable timestamp) degrade to defaults rather than aborting the load.
func (s *Store) Load(projectPath string) (*graph.Graph, error) {
	g := graph.New(projectPath)

	rows, err := s.db.Query(
		`SELECT id, name, entity_type, file_path, line_start, line_end,
			column_start, column_end, metadata, created_at, updated_at
		 FROM entities`)
	if err != nil {
		return nil, fmt.Errorf("load: query entities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			e                    graph.Entity
			kind, meta, cat, uat string
		)
		if err := rows.Scan(
			&e.ID, &e.Name, &kind, &e.FilePath,
			&e.LineStart, &e.LineEnd, &e.ColumnStart, &e.ColumnEnd,
			&meta, &cat, &uat,
		); err != nil {
			return nil, fmt.Errorf("load: scan entity: %w", err)
		}
		e.Kind, _ = graph.ParseEntityKind(kind)
		e.Metadata = unmarshalMetadata(meta)
		e.CreatedAt = parseTime(cat)
		e.UpdatedAt = parseTime(uat)
		g.AddEntity(&e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load: entities: %w", err)
	}

	relRows, err := s.db.Query(
		`SELECT id, from_entity, to_entity, relationship_type, metadata, created_at, updated_at
		 FROM relationships`)
	if err != nil {
		return nil, fmt.Errorf("load: query relationships: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var (
			r                    graph.Relationship
			kind, meta, cat, uat string
		)
		if err := relRows.Scan(&r.ID, &r.FromEntity, &r.ToEntity, &kind, &meta, &cat, &uat); err != nil {
			return nil, fmt.Errorf("load: scan relationship: %w", err)
		}
		r.Kind, _ = graph.ParseRelationKind(kind)
		r.Metadata = unmarshalMetadata(meta)
		r.CreatedAt = parseTime(cat)
		r.UpdatedAt = parseTime(uat)
		g.AddRelationship(&r)
	}
	if err := relRows.Err(); err != nil {
		return nil, fmt.Errorf("load: relationships: %w", err)
	}

	hashRows, err := s.db.Query("SELECT file_path, hash FROM file_hashes")
	if err != nil {
		return nil, fmt.Errorf("load: query file hashes: %w", err)
	}
	defer hashRows.Close()
	for hashRows.Next() {
		var path, hash string
		if err := hashRows.Scan(&path, &hash); err != nil {
			return nil, fmt.Errorf("load: scan file hash: %w", err)
		}
		g.UpdateFileHash(path, hash)
	}
	if err := hashRows.Err(); err != nil {
		return nil, fmt.Errorf("load: file hashes: %w", err)
	}

	return g, nil
}
