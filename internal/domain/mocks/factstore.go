// Package mocks provides in-memory implementations of the domain ports for
// testing.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ersonp/factgraph/internal/domain/entities"
)

// FactStore is an in-memory mock implementation of ports.FactStore.
type FactStore struct {
	Objects  map[string]*entities.Object
	Facts    map[string]*entities.StoredFact
	ACL      map[string][]entities.AclEntry
	Comments map[string][]entities.Comment
	Types    map[string]*entities.TypeDef
	Versions map[string][]entities.FactVersion
	Audit    []entities.AuditEntry

	// Err, when set, is returned by every method.
	Err error

	nextObjectID int
}

// NewFactStore creates a new mock FactStore.
func NewFactStore() *FactStore {
	return &FactStore{
		Objects:  make(map[string]*entities.Object),
		Facts:    make(map[string]*entities.StoredFact),
		ACL:      make(map[string][]entities.AclEntry),
		Comments: make(map[string][]entities.Comment),
		Types:    make(map[string]*entities.TypeDef),
		Versions: make(map[string][]entities.FactVersion),
	}
}

// AddObject registers an object in the mock and returns it.
func (m *FactStore) AddObject(id string, objectType entities.ObjectType, value string) *entities.Object {
	object := &entities.Object{ID: id, Type: objectType, Value: value, CreatedAt: time.Now()}
	m.Objects[id] = object
	return object
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *FactStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *FactStore) Close() error {
	return nil
}

// SaveObject saves an object.
func (m *FactStore) SaveObject(_ context.Context, object *entities.Object) error {
	if m.Err != nil {
		return m.Err
	}
	m.Objects[object.ID] = object
	return nil
}

// FindObjectByID finds an object by its ID.
func (m *FactStore) FindObjectByID(_ context.Context, objectID string) (*entities.Object, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Objects[objectID], nil
}

// FindObjectByValue finds an object by type and normalized value.
func (m *FactStore) FindObjectByValue(_ context.Context, objectType entities.ObjectType, value string) (*entities.Object, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	normalized := entities.NormalizeValue(value)
	for _, object := range m.Objects {
		if object.Type == objectType && entities.NormalizeValue(object.Value) == normalized {
			return object, nil
		}
	}
	return nil, nil
}

// FindOrCreateObject finds an object by type and value or creates it.
func (m *FactStore) FindOrCreateObject(ctx context.Context, objectType entities.ObjectType, value string) (*entities.Object, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if existing, err := m.FindObjectByValue(ctx, objectType, value); err != nil || existing != nil {
		return existing, err
	}
	m.nextObjectID++
	object := &entities.Object{
		ID:        fmt.Sprintf("object-%d", m.nextObjectID),
		Type:      objectType,
		Value:     value,
		CreatedAt: time.Now(),
	}
	m.Objects[object.ID] = object
	return object, nil
}

// ListObjects lists objects with pagination.
func (m *FactStore) ListObjects(_ context.Context, limit, _ int) ([]*entities.Object, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*entities.Object, 0, len(m.Objects))
	for _, object := range m.Objects {
		result = append(result, object)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CountObjects returns the total number of objects.
func (m *FactStore) CountObjects(_ context.Context) (int, error) {
	return len(m.Objects), m.Err
}

// SaveFact saves a fact together with its bindings.
func (m *FactStore) SaveFact(_ context.Context, fact *entities.StoredFact) error {
	if m.Err != nil {
		return m.Err
	}
	m.Facts[fact.ID] = fact
	return nil
}

// FindFactByID finds a stored fact by its ID.
func (m *FactStore) FindFactByID(_ context.Context, factID string) (*entities.StoredFact, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Facts[factID], nil
}

// FindFactsByObject finds all stored facts bound to the given object.
func (m *FactStore) FindFactsByObject(_ context.Context, objectID string) ([]entities.StoredFact, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.StoredFact
	for _, fact := range m.Facts {
		for _, binding := range fact.Bindings {
			if binding.ObjectID == objectID {
				result = append(result, *fact)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListFacts lists stored facts with pagination.
func (m *FactStore) ListFacts(_ context.Context, limit, _ int) ([]entities.StoredFact, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.StoredFact, 0, len(m.Facts))
	for _, fact := range m.Facts {
		result = append(result, *fact)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// RefreshFactSeen updates a fact's last-seen timestamp.
func (m *FactStore) RefreshFactSeen(_ context.Context, factID string) error {
	if m.Err != nil {
		return m.Err
	}
	if fact, ok := m.Facts[factID]; ok {
		fact.LastSeenAt = time.Now()
	}
	return nil
}

// DeleteFact deletes a fact and its bindings by ID.
func (m *FactStore) DeleteFact(_ context.Context, factID string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Facts, factID)
	return nil
}

// CountFacts returns the total number of facts.
func (m *FactStore) CountFacts(_ context.Context) (int, error) {
	return len(m.Facts), m.Err
}

// SaveAclEntry saves an ACL entry for a fact.
func (m *FactStore) SaveAclEntry(_ context.Context, entry *entities.AclEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.ACL[entry.FactID] = append(m.ACL[entry.FactID], *entry)
	return nil
}

// FindAclByFact finds all ACL entries for a fact.
func (m *FactStore) FindAclByFact(_ context.Context, factID string) ([]entities.AclEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ACL[factID], nil
}

// SaveComment saves a comment on a fact.
func (m *FactStore) SaveComment(_ context.Context, comment *entities.Comment) error {
	if m.Err != nil {
		return m.Err
	}
	m.Comments[comment.FactID] = append(m.Comments[comment.FactID], *comment)
	return nil
}

// FindCommentsByFact finds all comments on a fact.
func (m *FactStore) FindCommentsByFact(_ context.Context, factID string) ([]entities.Comment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Comments[factID], nil
}

// SaveTypeDef saves or updates a type definition.
func (m *FactStore) SaveTypeDef(_ context.Context, def *entities.TypeDef) error {
	if m.Err != nil {
		return m.Err
	}
	m.Types[string(def.Kind)+"/"+def.Name] = def
	return nil
}

// FindTypeDef finds a type definition by kind and name.
func (m *FactStore) FindTypeDef(_ context.Context, kind entities.TypeKind, name string) (*entities.TypeDef, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Types[string(kind)+"/"+name], nil
}

// ListTypeDefs lists all type definitions of a kind.
func (m *FactStore) ListTypeDefs(_ context.Context, kind entities.TypeKind) ([]entities.TypeDef, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.TypeDef, 0, len(m.Types))
	for _, def := range m.Types {
		if def.Kind == kind {
			result = append(result, *def)
		}
	}
	// Sort by name for deterministic test results
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// DeleteTypeDef deletes a type definition by kind and name.
func (m *FactStore) DeleteTypeDef(_ context.Context, kind entities.TypeKind, name string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Types, string(kind)+"/"+name)
	return nil
}

// SaveVersion saves a new fact version.
func (m *FactStore) SaveVersion(_ context.Context, version *entities.FactVersion) error {
	if m.Err != nil {
		return m.Err
	}
	m.Versions[version.FactID] = append(m.Versions[version.FactID], *version)
	return nil
}

// FindVersionsByFact finds all versions of a fact, newest first.
func (m *FactStore) FindVersionsByFact(_ context.Context, factID string) ([]entities.FactVersion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	versions := append([]entities.FactVersion(nil), m.Versions[factID]...)
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version > versions[j].Version })
	return versions, nil
}

// CountVersions counts how many versions a fact has.
func (m *FactStore) CountVersions(_ context.Context, factID string) (int, error) {
	return len(m.Versions[factID]), m.Err
}

// LogAction logs an action to the audit log.
func (m *FactStore) LogAction(_ context.Context, action string, factID string, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:        int64(len(m.Audit) + 1),
		Action:    action,
		FactID:    factID,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// FindAuditLog finds audit log entries for a specific fact.
func (m *FactStore) FindAuditLog(_ context.Context, factID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for _, entry := range m.Audit {
		if entry.FactID == factID {
			result = append(result, entry)
		}
	}
	return result, nil
}
