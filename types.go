package mnemo

import (
	"github.com/jward/mnemo/internal/graph"
	"github.com/jward/mnemo/internal/store"
)

// Public type aliases for internal graph types used in the Engine API.
// These are Go type aliases (=) — identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Store = store.Store
type Entity = graph.Entity
type EntityKind = graph.EntityKind
type Relationship = graph.Relationship
type RelationKind = graph.RelationKind
type RelationshipQuery = graph.Query
type Graph = graph.Graph
type GraphStats = graph.Stats
