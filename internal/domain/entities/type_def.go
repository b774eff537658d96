package entities

import "time"

// TypeKind distinguishes object type definitions from fact type definitions.
type TypeKind string

const (
	TypeKindObject TypeKind = "object"
	TypeKindFact   TypeKind = "fact"
)

// TypeDef represents an object or fact type definition. Built-in defaults
// are seeded on init; users can register additional custom types.
type TypeDef struct {
	Kind        TypeKind  `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
