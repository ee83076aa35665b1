package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntity(name string, kind EntityKind, file string) *Entity {
	return NewEntity(name, kind, file, 1, 1, 0, 10)
}

func TestNew(t *testing.T) {
	t.Parallel()
	g := New("/test/project")
	assert.Equal(t, "/test/project", g.ProjectPath)
	assert.Empty(t, g.Entities)
	assert.Empty(t, g.Relationships)
	assert.Empty(t, g.FileHashes)
}

func TestGraph_AddEntity_UpsertsByID(t *testing.T) {
	t.Parallel()
	g := New("/test")
	e := testEntity("f", KindFunction, "a.js")
	g.AddEntity(e)
	require.Len(t, g.Entities, 1)

	// Same ID replaces; a fresh ID adds.
	replacement := *e
	replacement.Name = "g"
	g.AddEntity(&replacement)
	require.Len(t, g.Entities, 1)
	assert.Equal(t, "g", g.Entities[e.ID].Name)

	g.AddEntity(testEntity("h", KindFunction, "a.js"))
	assert.Len(t, g.Entities, 2)
}

func TestGraph_RemoveEntity_CascadesRelationships(t *testing.T) {
	t.Parallel()
	g := New("/test")
	a := testEntity("a", KindFunction, "a.js")
	b := testEntity("b", KindFunction, "b.js")
	c := testEntity("c", KindFunction, "c.js")
	g.AddEntity(a)
	g.AddEntity(b)
	g.AddEntity(c)
	g.AddRelationship(NewRelationship(a.ID, b.ID, RelationCalls))
	g.AddRelationship(NewRelationship(c.ID, a.ID, RelationCalls))
	g.AddRelationship(NewRelationship(b.ID, c.ID, RelationCalls))
	require.Len(t, g.Relationships, 3)

	g.RemoveEntity(a.ID)

	assert.NotContains(t, g.Entities, a.ID)
	require.Len(t, g.Relationships, 1)
	for _, r := range g.Relationships {
		assert.NotEqual(t, a.ID, r.FromEntity)
		assert.NotEqual(t, a.ID, r.ToEntity)
	}
}

func TestGraph_AddRelationship_DeduplicatesBySignature(t *testing.T) {
	t.Parallel()
	g := New("/test")

	first := NewRelationship("x", "y", RelationCalls)
	duplicate := NewRelationship("x", "y", RelationCalls)
	duplicate.SetMetadata("line", "42") // metadata is ignored by the dedup key

	g.AddRelationship(first)
	g.AddRelationship(duplicate)
	require.Len(t, g.Relationships, 1)
	assert.Equal(t, first.ID, g.Relationships[0].ID, "first insert wins")

	// A different kind is a different signature.
	g.AddRelationship(NewRelationship("x", "y", RelationUses))
	assert.Len(t, g.Relationships, 2)
}

func TestGraph_FindEntitiesByName_CaseSensitiveSubstring(t *testing.T) {
	t.Parallel()
	g := New("/test")
	g.AddEntity(testEntity("handleRequest", KindFunction, "a.js"))
	g.AddEntity(testEntity("requestLogger", KindFunction, "a.js"))
	g.AddEntity(testEntity("Response", KindClass, "b.js"))

	assert.Len(t, g.FindEntitiesByName("equest"), 2)
	assert.Len(t, g.FindEntitiesByName("Request"), 1)
	assert.Empty(t, g.FindEntitiesByName("REQUEST"))
}

func TestGraph_FindEntitiesInFile_ExactMatch(t *testing.T) {
	t.Parallel()
	g := New("/test")
	g.AddEntity(testEntity("a", KindFunction, "src/main.js"))
	g.AddEntity(testEntity("b", KindFunction, "src/main.js"))
	g.AddEntity(testEntity("c", KindFunction, "src/main.jsx"))

	assert.Len(t, g.FindEntitiesInFile("src/main.js"), 2)
	assert.Empty(t, g.FindEntitiesInFile("src/main"))
}

func TestGraph_FindRelationships(t *testing.T) {
	t.Parallel()
	g := New("/test")
	g.AddRelationship(NewRelationship("a", "b", RelationCalls))
	g.AddRelationship(NewRelationship("a", "c", RelationUses))
	g.AddRelationship(NewRelationship("b", "c", RelationCalls))

	assert.Len(t, g.FindRelationships(Query{}), 3)
	assert.Len(t, g.FindRelationships(Query{}.From("a")), 2)
	assert.Len(t, g.FindRelationships(Query{}.OfKind(RelationCalls)), 2)
	assert.Len(t, g.FindRelationships(Query{}.From("a").OfKind(RelationCalls)), 1)
	assert.Empty(t, g.FindRelationships(Query{}.From("c")))
}

func TestGraph_Dependencies_SkipsMissingEndpoints(t *testing.T) {
	t.Parallel()
	g := New("/test")
	a := testEntity("a", KindFunction, "a.js")
	b := testEntity("b", KindFunction, "b.js")
	g.AddEntity(a)
	g.AddEntity(b)
	g.AddRelationship(NewRelationship(a.ID, b.ID, RelationCalls))
	g.AddRelationship(NewRelationship(a.ID, "ghost", RelationCalls))

	deps := g.Dependencies(a.ID)
	require.Len(t, deps, 1, "the dangling soft reference is skipped, not an error")
	assert.Equal(t, b.ID, deps[0].ID)

	dependents := g.Dependents(b.ID)
	require.Len(t, dependents, 1)
	assert.Equal(t, a.ID, dependents[0].ID)

	assert.Empty(t, g.Dependents("ghost"), "missing source resolves to nothing")
}

func TestGraph_RelationshipMayPrecedeEntities(t *testing.T) {
	t.Parallel()
	g := New("/test")
	g.AddRelationship(NewRelationship("early-from", "early-to", RelationUses))
	require.Len(t, g.Relationships, 1)
	assert.Empty(t, g.Dependencies("early-from"))

	// Once the target exists, traversal finds it.
	target := testEntity("later", KindFunction, "z.js")
	target.ID = "early-to"
	g.AddEntity(target)
	assert.Len(t, g.Dependencies("early-from"), 1)
}

func TestGraph_FileHashChangeDetection(t *testing.T) {
	t.Parallel()
	g := New("/test")

	assert.True(t, g.HasFileChanged("a.js", "h1"), "never-hashed path is always changed")

	g.UpdateFileHash("a.js", "h1")
	assert.False(t, g.HasFileChanged("a.js", "h1"))
	assert.True(t, g.HasFileChanged("a.js", "h2"))
}

func TestGraph_Stats(t *testing.T) {
	t.Parallel()
	g := New("/proj")
	g.AddEntity(testEntity("a", KindFunction, "a.js"))
	g.AddEntity(testEntity("b", KindClass, "b.js"))
	g.AddRelationship(NewRelationship("x", "y", RelationCalls))
	g.UpdateFileHash("a.js", "h1")
	g.UpdateFileHash("b.js", "h2")
	g.UpdateFileHash("b.js", "h3") // same path, still one file

	stats := g.Stats()
	assert.Equal(t, 2, stats.EntityCount)
	assert.Equal(t, 1, stats.RelationshipCount)
	assert.Equal(t, 2, stats.FileCount)
	assert.Equal(t, "/proj", stats.ProjectPath)
}

func TestGraph_Clear(t *testing.T) {
	t.Parallel()
	g := New("/proj")
	g.AddEntity(testEntity("a", KindFunction, "a.js"))
	g.AddRelationship(NewRelationship("x", "y", RelationCalls))
	g.UpdateFileHash("a.js", "h1")

	g.Clear()

	assert.Empty(t, g.Entities)
	assert.Empty(t, g.Relationships)
	assert.Empty(t, g.FileHashes)
	assert.Equal(t, "/proj", g.ProjectPath, "project path survives a clear")
}
