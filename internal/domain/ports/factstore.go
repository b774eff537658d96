// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/factgraph/internal/domain/entities"
)

// FactStore defines the interface for relational storage of objects, facts
// and their supporting records. This is the system of record: facts are
// persisted here as scalar rows plus an ordered binding list, and the search
// index is derived from it.
type FactStore interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Object operations

	// SaveObject saves an object.
	SaveObject(ctx context.Context, object *entities.Object) error

	// FindObjectByID finds an object by its ID. Returns nil if not found.
	FindObjectByID(ctx context.Context, objectID string) (*entities.Object, error)

	// FindObjectByValue finds an object by type and normalized value.
	// Returns nil if not found.
	FindObjectByValue(ctx context.Context, objectType entities.ObjectType, value string) (*entities.Object, error)

	// FindOrCreateObject finds an object by type and value or creates it.
	FindOrCreateObject(ctx context.Context, objectType entities.ObjectType, value string) (*entities.Object, error)

	// ListObjects lists objects with pagination.
	ListObjects(ctx context.Context, limit, offset int) ([]*entities.Object, error)

	// CountObjects returns the total number of objects.
	CountObjects(ctx context.Context) (int, error)

	// Fact operations

	// SaveFact saves a fact together with its bindings. Binding order is
	// preserved and returned unchanged by FindFactByID.
	SaveFact(ctx context.Context, fact *entities.StoredFact) error

	// FindFactByID finds a stored fact by its ID, bindings included.
	// Returns nil if not found.
	FindFactByID(ctx context.Context, factID string) (*entities.StoredFact, error)

	// FindFactsByObject finds all stored facts bound to the given object.
	FindFactsByObject(ctx context.Context, objectID string) ([]entities.StoredFact, error)

	// ListFacts lists stored facts with pagination, newest first.
	ListFacts(ctx context.Context, limit, offset int) ([]entities.StoredFact, error)

	// RefreshFactSeen updates a fact's last-seen timestamp.
	RefreshFactSeen(ctx context.Context, factID string) error

	// DeleteFact deletes a fact and its bindings by ID.
	DeleteFact(ctx context.Context, factID string) error

	// CountFacts returns the total number of facts.
	CountFacts(ctx context.Context) (int, error)

	// ACL operations

	// SaveAclEntry saves an ACL entry for a fact.
	SaveAclEntry(ctx context.Context, entry *entities.AclEntry) error

	// FindAclByFact finds all ACL entries for a fact, oldest first.
	FindAclByFact(ctx context.Context, factID string) ([]entities.AclEntry, error)

	// Comment operations

	// SaveComment saves a comment on a fact.
	SaveComment(ctx context.Context, comment *entities.Comment) error

	// FindCommentsByFact finds all comments on a fact, oldest first.
	FindCommentsByFact(ctx context.Context, factID string) ([]entities.Comment, error)

	// Type definitions

	// SaveTypeDef saves or updates a type definition.
	SaveTypeDef(ctx context.Context, def *entities.TypeDef) error

	// FindTypeDef finds a type definition by kind and name.
	// Returns nil if not found.
	FindTypeDef(ctx context.Context, kind entities.TypeKind, name string) (*entities.TypeDef, error)

	// ListTypeDefs lists all type definitions of a kind.
	ListTypeDefs(ctx context.Context, kind entities.TypeKind) ([]entities.TypeDef, error)

	// DeleteTypeDef deletes a type definition by kind and name.
	DeleteTypeDef(ctx context.Context, kind entities.TypeKind, name string) error

	// Versions

	// SaveVersion saves a new fact version.
	SaveVersion(ctx context.Context, version *entities.FactVersion) error

	// FindVersionsByFact finds all versions of a fact, newest first.
	FindVersionsByFact(ctx context.Context, factID string) ([]entities.FactVersion, error)

	// CountVersions counts how many versions a fact has.
	CountVersions(ctx context.Context, factID string) (int, error)

	// Audit log

	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, factID string, details map[string]any) error

	// FindAuditLog finds audit log entries for a specific fact.
	FindAuditLog(ctx context.Context, factID string) ([]entities.AuditEntry, error)
}
