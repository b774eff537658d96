package entities

import "time"

// FactType categorizes a Fact (graph edge). Validation of fact types is
// handled by SchemaService, which supports both built-in and custom
// user-defined types.
type FactType string

// Default fact types. Custom types can be added via SchemaService.
const (
	FactTypeMentions     FactType = "mentions"
	FactTypeResolvesTo   FactType = "resolves_to"
	FactTypeAlias        FactType = "alias"
	FactTypeAttributedTo FactType = "attributed_to"
	FactTypeTargets      FactType = "targets"
	FactTypeUses         FactType = "uses"
	FactTypeObservedIn   FactType = "observed_in"
	FactTypeComponentOf  FactType = "component_of"
)

// AccessMode controls who can see a Fact.
type AccessMode string

const (
	AccessModePublic    AccessMode = "public"
	AccessModeRoleBased AccessMode = "role_based"
	AccessModeExplicit  AccessMode = "explicit"
)

// IsValid reports whether m is one of the known access modes.
func (m AccessMode) IsValid() bool {
	switch m {
	case AccessModePublic, AccessModeRoleBased, AccessModeExplicit:
		return true
	}
	return false
}

// StoredFact is the persisted form of a Fact: scalar fields plus the ordered
// list of Object bindings. Binding order is part of the stored state.
type StoredFact struct {
	ID              string     `json:"id"`
	Type            FactType   `json:"type"`
	Value           string     `json:"value"`
	InReferenceToID string     `json:"in_reference_to_id,omitempty"`
	OrganizationID  string     `json:"organization_id,omitempty"`
	OriginID        string     `json:"origin_id,omitempty"`
	AddedByID       string     `json:"added_by_id,omitempty"`
	AccessMode      AccessMode `json:"access_mode"`
	Confidence      float64    `json:"confidence"`
	Trust           float64    `json:"trust"`
	CreatedAt       time.Time  `json:"created_at"`
	LastSeenAt      time.Time  `json:"last_seen_at"`
	Bindings        []Binding  `json:"bindings,omitempty"`
}

// Fact is the API-facing record of a fact: the stored scalars with bindings
// resolved into source/destination Objects, enriched with the retracted flag
// from the search index and with ACL entries and comments from the relational
// store. It is derived fresh on every conversion and never persisted.
type Fact struct {
	ID              string     `json:"id"`
	Type            FactType   `json:"type"`
	Value           string     `json:"value"`
	InReferenceToID string     `json:"in_reference_to_id,omitempty"`
	OrganizationID  string     `json:"organization_id,omitempty"`
	OriginID        string     `json:"origin_id,omitempty"`
	AddedByID       string     `json:"added_by_id,omitempty"`
	AccessMode      AccessMode `json:"access_mode"`
	Confidence      float64    `json:"confidence"`
	Trust           float64    `json:"trust"`
	CreatedAt       time.Time  `json:"created_at"`
	LastSeenAt      time.Time  `json:"last_seen_at"`

	SourceObject      *Object `json:"source_object,omitempty"`
	DestinationObject *Object `json:"destination_object,omitempty"`
	Bidirectional     bool    `json:"bidirectional,omitempty"`

	Retracted bool       `json:"retracted,omitempty"`
	ACL       []AclEntry `json:"acl,omitempty"`
	Comments  []Comment  `json:"comments,omitempty"`
}
