package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityKind classifies a code entity. The set is closed: every kind has a
// fixed lowercase token used as its persisted form.
type EntityKind string

const (
	KindFunction  EntityKind = "function"
	KindClass     EntityKind = "class"
	KindModule    EntityKind = "module"
	KindVariable  EntityKind = "variable"
	KindImport    EntityKind = "import"
	KindExport    EntityKind = "export"
	KindInterface EntityKind = "interface"
	KindType      EntityKind = "type"
	KindConstant  EntityKind = "constant"
)

// DefaultEntityKind is substituted when decoding an unrecognized kind token.
// Loading never fails on bad kind data; it degrades to this value.
const DefaultEntityKind = KindFunction

func (k EntityKind) String() string {
	return string(k)
}

// ParseEntityKind maps a persisted token back to its kind. The second return
// is false for unrecognized tokens, in which case the first return is
// DefaultEntityKind.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch EntityKind(s) {
	case KindFunction, KindClass, KindModule, KindVariable, KindImport,
		KindExport, KindInterface, KindType, KindConstant:
		return EntityKind(s), true
	}
	return DefaultEntityKind, false
}

// Entity is a named, positioned code element extracted from source.
// Lines are 1-based; columns are 0-based byte offsets within the line.
type Entity struct {
	ID          string
	Name        string
	Kind        EntityKind
	FilePath    string
	LineStart   int
	LineEnd     int
	ColumnStart int
	ColumnEnd   int
	Metadata    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEntity creates an entity with a fresh unique ID and both timestamps set
// to now. The ID is immutable for the entity's lifetime.
func NewEntity(name string, kind EntityKind, filePath string, lineStart, lineEnd, columnStart, columnEnd int) *Entity {
	now := time.Now().UTC()
	return &Entity{
		ID:          uuid.NewString(),
		Name:        name,
		Kind:        kind,
		FilePath:    filePath,
		LineStart:   lineStart,
		LineEnd:     lineEnd,
		ColumnStart: columnStart,
		ColumnEnd:   columnEnd,
		Metadata:    make(map[string]string),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdatePosition moves the entity and refreshes UpdatedAt.
func (e *Entity) UpdatePosition(lineStart, lineEnd, columnStart, columnEnd int) {
	e.LineStart = lineStart
	e.LineEnd = lineEnd
	e.ColumnStart = columnStart
	e.ColumnEnd = columnEnd
	e.UpdatedAt = time.Now().UTC()
}

// SetMetadata attaches a key/value pair and refreshes UpdatedAt.
func (e *Entity) SetMetadata(key, value string) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	e.UpdatedAt = time.Now().UTC()
}

// Signature is a human-readable identity for display and diffing. It is not
// a storage key — the ID is.
func (e *Entity) Signature() string {
	return fmt.Sprintf("%s:%s:%s:%d", e.FilePath, e.Kind, e.Name, e.LineStart)
}
