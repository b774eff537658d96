package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/domain/ports"
)

// validTypeNameRegex allows alphanumeric and underscores only.
var validTypeNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// SchemaService manages object and fact type definitions.
type SchemaService struct {
	store       ports.FactStore
	cache       map[entities.TypeKind]map[string]*entities.TypeDef
	sortedNames map[entities.TypeKind][]string // cached sorted names, populated with cache
	cacheMu     sync.RWMutex
}

// NewSchemaService creates a new SchemaService.
func NewSchemaService(store ports.FactStore) *SchemaService {
	return &SchemaService{
		store:       store,
		cache:       make(map[entities.TypeKind]map[string]*entities.TypeDef),
		sortedNames: make(map[entities.TypeKind][]string),
	}
}

// LoadDefaults seeds the built-in object and fact types into the store.
// Lists once per kind and inserts only what is missing.
func (s *SchemaService) LoadDefaults(ctx context.Context) error {
	for _, defaults := range [][]entities.TypeDef{entities.DefaultObjectTypes, entities.DefaultFactTypes} {
		if len(defaults) == 0 {
			continue
		}
		existing, err := s.store.ListTypeDefs(ctx, defaults[0].Kind)
		if err != nil {
			return fmt.Errorf("listing type definitions: %w", err)
		}

		existingSet := make(map[string]bool, len(existing))
		for _, def := range existing {
			existingSet[def.Name] = true
		}

		for _, def := range defaults {
			if !existingSet[def.Name] {
				defCopy := def
				if err := s.store.SaveTypeDef(ctx, &defCopy); err != nil {
					return fmt.Errorf("seeding type %s: %w", def.Name, err)
				}
			}
		}
	}
	s.invalidateCache()
	return nil
}

// List returns all type definitions of a kind.
func (s *SchemaService) List(ctx context.Context, kind entities.TypeKind) ([]entities.TypeDef, error) {
	return s.store.ListTypeDefs(ctx, kind)
}

// Get returns a specific type definition, or nil if not found.
func (s *SchemaService) Get(ctx context.Context, kind entities.TypeKind, name string) (*entities.TypeDef, error) {
	return s.store.FindTypeDef(ctx, kind, name)
}

// Add creates a new custom type definition.
func (s *SchemaService) Add(ctx context.Context, kind entities.TypeKind, name, description string) error {
	name = strings.ToLower(strings.TrimSpace(name))

	if !validTypeNameRegex.MatchString(name) {
		return errors.New("invalid type name: must be lowercase alphanumeric with underscores, starting with a letter")
	}

	existing, err := s.store.FindTypeDef(ctx, kind, name)
	if err != nil {
		return fmt.Errorf("checking type definition: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%s type '%s' already exists", kind, name)
	}

	def := &entities.TypeDef{
		Kind:        kind,
		Name:        name,
		Description: description,
	}
	if err := s.store.SaveTypeDef(ctx, def); err != nil {
		return fmt.Errorf("saving type definition: %w", err)
	}

	s.invalidateCache()
	return nil
}

// Remove deletes a custom type definition.
func (s *SchemaService) Remove(ctx context.Context, kind entities.TypeKind, name string) error {
	if entities.IsDefaultType(kind, name) {
		return fmt.Errorf("cannot remove default %s type '%s'", kind, name)
	}

	existing, err := s.store.FindTypeDef(ctx, kind, name)
	if err != nil {
		return fmt.Errorf("checking type definition: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("%s type '%s' not found", kind, name)
	}

	if err := s.store.DeleteTypeDef(ctx, kind, name); err != nil {
		return fmt.Errorf("deleting type definition: %w", err)
	}

	s.invalidateCache()
	return nil
}

// IsValid checks if a type name exists for the kind.
func (s *SchemaService) IsValid(ctx context.Context, kind entities.TypeKind, name string) bool {
	// Fast path: check cache with read lock
	s.cacheMu.RLock()
	if kindCache, ok := s.cache[kind]; ok {
		_, found := kindCache[name]
		s.cacheMu.RUnlock()
		return found
	}
	s.cacheMu.RUnlock()

	names, err := s.loadKind(ctx, kind)
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// ValidTypeNames returns all valid type names for a kind, sorted.
// The returned slice is shared and must not be modified by callers.
func (s *SchemaService) ValidTypeNames(ctx context.Context, kind entities.TypeKind) ([]string, error) {
	s.cacheMu.RLock()
	if _, ok := s.cache[kind]; ok {
		names := s.sortedNames[kind]
		s.cacheMu.RUnlock()
		return names, nil
	}
	s.cacheMu.RUnlock()

	return s.loadKind(ctx, kind)
}

// loadKind populates the cache for a kind and returns its sorted names.
func (s *SchemaService) loadKind(ctx context.Context, kind entities.TypeKind) ([]string, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	// Double-check: another goroutine may have populated the cache
	if _, ok := s.cache[kind]; ok {
		return s.sortedNames[kind], nil
	}

	defs, err := s.store.ListTypeDefs(ctx, kind)
	if err != nil {
		return nil, err
	}

	kindCache := make(map[string]*entities.TypeDef, len(defs))
	names := make([]string, len(defs))
	for i := range defs {
		kindCache[defs[i].Name] = &defs[i]
		names[i] = defs[i].Name
	}
	sort.Strings(names)

	s.cache[kind] = kindCache
	s.sortedNames[kind] = names
	return names, nil
}

func (s *SchemaService) invalidateCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache = make(map[entities.TypeKind]map[string]*entities.TypeDef)
	s.sortedNames = make(map[entities.TypeKind][]string)
}
