package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RelationKind classifies a directed edge between two entities. Closed set;
// each kind has a fixed lowercase persisted token.
type RelationKind string

const (
	RelationCalls      RelationKind = "calls"
	RelationImports    RelationKind = "imports"
	RelationExtends    RelationKind = "extends"
	RelationImplements RelationKind = "implements"
	RelationUses       RelationKind = "uses"
	RelationDefines    RelationKind = "defines"
	RelationReferences RelationKind = "references"
	RelationContains   RelationKind = "contains"
)

// DefaultRelationKind is substituted when decoding an unrecognized token.
const DefaultRelationKind = RelationReferences

func (k RelationKind) String() string {
	return string(k)
}

// ParseRelationKind maps a persisted token back to its kind. The second
// return is false for unrecognized tokens, in which case the first return is
// DefaultRelationKind.
func ParseRelationKind(s string) (RelationKind, bool) {
	switch RelationKind(s) {
	case RelationCalls, RelationImports, RelationExtends, RelationImplements,
		RelationUses, RelationDefines, RelationReferences, RelationContains:
		return RelationKind(s), true
	}
	return DefaultRelationKind, false
}

// Relationship is a directed, typed edge between two entity IDs. The
// endpoints are soft references: they are not validated against the live
// entity set, so a relationship may precede or outlive the entities it
// names. Traversal resolves endpoints at query time and skips missing ones.
type Relationship struct {
	ID         string
	FromEntity string
	ToEntity   string
	Kind       RelationKind
	Metadata   map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRelationship creates a relationship with a fresh unique ID and both
// timestamps set to now.
func NewRelationship(fromEntity, toEntity string, kind RelationKind) *Relationship {
	now := time.Now().UTC()
	return &Relationship{
		ID:         uuid.NewString(),
		FromEntity: fromEntity,
		ToEntity:   toEntity,
		Kind:       kind,
		Metadata:   make(map[string]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetMetadata attaches a key/value pair and refreshes UpdatedAt.
func (r *Relationship) SetMetadata(key, value string) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	r.Metadata[key] = value
	r.UpdatedAt = time.Now().UTC()
}

// Signature is the (from, to, kind) triple used as the deduplication key.
// Metadata and timestamps do not participate.
func (r *Relationship) Signature() string {
	return fmt.Sprintf("%s->%s:%s", r.FromEntity, r.ToEntity, r.Kind)
}

// Query filters relationships by an optional conjunction of from/to/kind.
// A nil field matches anything.
type Query struct {
	FromEntity *string
	ToEntity   *string
	Kind       *RelationKind
}

// From restricts the query to relationships originating at entityID.
func (q Query) From(entityID string) Query {
	q.FromEntity = &entityID
	return q
}

// To restricts the query to relationships targeting entityID.
func (q Query) To(entityID string) Query {
	q.ToEntity = &entityID
	return q
}

// OfKind restricts the query to relationships of the given kind.
func (q Query) OfKind(kind RelationKind) Query {
	q.Kind = &kind
	return q
}

// Matches reports whether r satisfies every set filter.
func (q Query) Matches(r *Relationship) bool {
	if q.FromEntity != nil && r.FromEntity != *q.FromEntity {
		return false
	}
	if q.ToEntity != nil && r.ToEntity != *q.ToEntity {
		return false
	}
	if q.Kind != nil && r.Kind != *q.Kind {
		return false
	}
	return true
}
