package store

import (
	"fmt"

	"github.com/jward/mnemo/internal/graph"
)

const entityCols = `id, name, entity_type, file_path, line_start, line_end,
	column_start, column_end, metadata, created_at, updated_at`

func (s *Store) queryEntities(query string, args ...any) ([]*graph.Entity, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entities []*graph.Entity
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
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		e.Kind, _ = graph.ParseEntityKind(kind)
		e.Metadata = unmarshalMetadata(meta)
		e.CreatedAt = parseTime(cat)
		e.UpdatedAt = parseTime(uat)
		entities = append(entities, &e)
	}
	return entities, rows.Err()
}

// EntitiesInFile returns the persisted entities whose file path equals
// filePath exactly, ordered by line_start.
func (s *Store) EntitiesInFile(filePath string) ([]*graph.Entity, error) {
	entities, err := s.queryEntities(
		"SELECT "+entityCols+" FROM entities WHERE file_path = ? ORDER BY line_start", filePath)
	if err != nil {
		return nil, fmt.Errorf("entities in file: %w", err)
	}
	return entities, nil
}

// EntitiesByName returns the persisted entities whose name contains pattern
// as a case-sensitive substring, ordered by name. instr() is used instead of
// LIKE because SQLite's LIKE is case-insensitive for ASCII.
func (s *Store) EntitiesByName(pattern string) ([]*graph.Entity, error) {
	entities, err := s.queryEntities(
		"SELECT "+entityCols+" FROM entities WHERE instr(name, ?) > 0 ORDER BY name", pattern)
	if err != nil {
		return nil, fmt.Errorf("entities by name: %w", err)
	}
	return entities, nil
}

// Stats returns aggregate counts over the persisted snapshot: total
// entities, total relationships, and distinct hashed files.
func (s *Store) Stats() (entityCount, relationshipCount, fileCount int, err error) {
	if err = s.db.QueryRow("SELECT COUNT(*) FROM entities").Scan(&entityCount); err != nil {
		return 0, 0, 0, fmt.Errorf("stats: count entities: %w", err)
	}
	if err = s.db.QueryRow("SELECT COUNT(*) FROM relationships").Scan(&relationshipCount); err != nil {
		return 0, 0, 0, fmt.Errorf("stats: count relationships: %w", err)
	}
	if err = s.db.QueryRow("SELECT COUNT(DISTINCT file_path) FROM file_hashes").Scan(&fileCount); err != nil {
		return 0, 0, 0, fmt.Errorf("stats: count files: %w", err)
	}
	return entityCount, relationshipCount, fileCount, nil
}
