package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/mnemo/internal/graph"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func sampleGraph() *graph.Graph {
	g := graph.New("/proj")
	foo := graph.NewEntity("foo", graph.KindFunction, "src/a.py", 1, 3, 0, 12)
	foo.SetMetadata("visibility", "public")
	bar := graph.NewEntity("Bar", graph.KindClass, "src/a.py", 5, 9, 0, 11)
	baz := graph.NewEntity("baz", graph.KindFunction, "src/b.py", 2, 2, 0, 10)
	g.AddEntity(foo)
	g.AddEntity(bar)
	g.AddEntity(baz)
	g.AddRelationship(graph.NewRelationship(foo.ID, bar.ID, graph.RelationUses))
	g.AddRelationship(graph.NewRelationship(baz.ID, foo.ID, graph.RelationCalls))
	g.UpdateFileHash("src/a.py", "hash-a")
	g.UpdateFileHash("src/b.py", "hash-b")
	return g
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())

	var n int
	err := s.DB().QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'
		 AND name IN ('entities', 'relationships', 'file_hashes')`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNewStore_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	g := sampleGraph()
	require.NoError(t, s.Save(g))

	loaded, err := s.Load("/proj")
	require.NoError(t, err)
	assert.Equal(t, "/proj", loaded.ProjectPath)
	require.Len(t, loaded.Entities, 3)
	require.Len(t, loaded.Relationships, 2)
	require.Len(t, loaded.FileHashes, 2)

	for id, want := range g.Entities {
		got, ok := loaded.Entities[id]
		require.True(t, ok, "entity %s survives the round trip", want.Name)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.FilePath, got.FilePath)
		assert.Equal(t, want.LineStart, got.LineStart)
		assert.Equal(t, want.LineEnd, got.LineEnd)
		assert.Equal(t, want.ColumnStart, got.ColumnStart)
		assert.Equal(t, want.ColumnEnd, got.ColumnEnd)
		assert.Equal(t, want.Metadata, got.Metadata)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at round-trips exactly")
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
	}

	assert.Equal(t, "hash-a", loaded.FileHashes["src/a.py"])
	assert.Equal(t, "hash-b", loaded.FileHashes["src/b.py"])
}

func TestSave_IdempotentResave(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	g := sampleGraph()
	require.NoError(t, s.Save(g))
	require.NoError(t, s.Save(g))

	entityCount, relationshipCount, fileCount, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, entityCount)
	assert.Equal(t, 2, relationshipCount)
	assert.Equal(t, 2, fileCount)
}

func TestSave_ReplacesStaleRows(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Save(sampleGraph()))

	// A smaller graph saved afterwards fully replaces the old snapshot.
	small := graph.New("/proj")
	only := graph.NewEntity("only", graph.KindVariable, "src/c.py", 1, 1, 0, 8)
	small.AddEntity(only)
	require.NoError(t, s.Save(small))

	loaded, err := s.Load("/proj")
	require.NoError(t, err)
	assert.Len(t, loaded.Entities, 1)
	assert.Empty(t, loaded.Relationships)
	assert.Empty(t, loaded.FileHashes)
	assert.Contains(t, loaded.Entities, only.ID)
}

func TestSave_EmptyGraph(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Save(graph.New("/proj")))

	loaded, err := s.Load("/proj")
	require.NoError(t, err)
	assert.Empty(t, loaded.Entities)
	assert.Empty(t, loaded.Relationships)
	assert.Empty(t, loaded.FileHashes)
}

func TestEntitiesInFile_ExactPathOrderedByLine(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	g := graph.New("/proj")
	g.AddEntity(graph.NewEntity("late", graph.KindFunction, "src/a.py", 30, 32, 0, 5))
	g.AddEntity(graph.NewEntity("early", graph.KindClass, "src/a.py", 2, 10, 0, 6))
	g.AddEntity(graph.NewEntity("other", graph.KindFunction, "src/a.py.bak", 1, 1, 0, 5))
	require.NoError(t, s.Save(g))

	entities, err := s.EntitiesInFile("src/a.py")
	require.NoError(t, err)
	require.Len(t, entities, 2, "path match is exact, not prefix")
	assert.Equal(t, "early", entities[0].Name)
	assert.Equal(t, "late", entities[1].Name)
}

func TestEntitiesByName_CaseSensitiveSubstring(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	g := graph.New("/proj")
	g.AddEntity(graph.NewEntity("parseConfig", graph.KindFunction, "a.py", 1, 1, 0, 1))
	g.AddEntity(graph.NewEntity("ParseError", graph.KindClass, "a.py", 2, 2, 0, 1))
	g.AddEntity(graph.NewEntity("reparse", graph.KindFunction, "b.py", 3, 3, 0, 1))
	require.NoError(t, s.Save(g))

	entities, err := s.EntitiesByName("parse")
	require.NoError(t, err)
	require.Len(t, entities, 2, "matching is case-sensitive")
	assert.Equal(t, "parseConfig", entities[0].Name)
	assert.Equal(t, "reparse", entities[1].Name)

	entities, err = s.EntitiesByName("Parse")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "ParseError", entities[0].Name)

	entities, err = s.EntitiesByName("nomatch")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestStats_EmptyDatabase(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	entityCount, relationshipCount, fileCount, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, entityCount)
	assert.Zero(t, relationshipCount)
	assert.Zero(t, fileCount)
}

func TestLoad_UnknownKindTokensFallBack(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := formatTime(nowUTC())
	_, err := s.DB().Exec(
		`INSERT INTO entities (id, name, entity_type, file_path, line_start, line_end,
			column_start, column_end, metadata, created_at, updated_at)
		 VALUES ('e1', 'mystery', 'hologram', 'a.py', 1, 1, 0, 1, '{}', ?, ?)`, now, now)
	require.NoError(t, err)
	_, err = s.DB().Exec(
		`INSERT INTO relationships (id, from_entity, to_entity, relationship_type,
			metadata, created_at, updated_at)
		 VALUES ('r1', 'e1', 'e1', 'teleports', '{}', ?, ?)`, now, now)
	require.NoError(t, err)

	g, err := s.Load("/proj")
	require.NoError(t, err)
	require.Contains(t, g.Entities, "e1")
	assert.Equal(t, graph.KindFunction, g.Entities["e1"].Kind)
	require.Len(t, g.Relationships, 1)
	assert.Equal(t, graph.RelationReferences, g.Relationships[0].Kind)
}

func TestLoad_BadTimestampAndMetadataDegrade(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.DB().Exec(
		`INSERT INTO entities (id, name, entity_type, file_path, line_start, line_end,
			column_start, column_end, metadata, created_at, updated_at)
		 VALUES ('e1', 'foo', 'function', 'a.py', 1, 1, 0, 1, 'not json', 'not a time', '')`)
	require.NoError(t, err)

	g, err := s.Load("/proj")
	require.NoError(t, err)
	require.Contains(t, g.Entities, "e1")
	assert.True(t, g.Entities["e1"].CreatedAt.IsZero())
	assert.True(t, g.Entities["e1"].UpdatedAt.IsZero())
	assert.Empty(t, g.Entities["e1"].Metadata)
}

func TestTimeLayout_SortableAndExact(t *testing.T) {
	t.Parallel()

	earlier := time.Date(2026, 3, 9, 8, 0, 0, 5, time.UTC)
	later := time.Date(2026, 3, 9, 8, 0, 1, 0, time.UTC)
	assert.Less(t, formatTime(earlier), formatTime(later), "lexical order follows chronological order")

	round := parseTime(formatTime(earlier))
	assert.True(t, earlier.Equal(round), "nanosecond precision survives the text form")
}
