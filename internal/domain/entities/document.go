package entities

import "time"

// BoundObject is the denormalized form of a bound Object as stored in the
// search index, carrying the stored direction alongside the object fields.
type BoundObject struct {
	ID        string     `json:"id"`
	Type      ObjectType `json:"type"`
	Value     string     `json:"value"`
	Direction Direction  `json:"direction"`
}

// FactDocument is the search-index form of a Fact. It carries everything
// needed to answer searches without touching the relational store: the
// denormalized bound objects with directions, the retracted flag, the ACL
// subject list and the embedding of the fact text.
type FactDocument struct {
	ID              string        `json:"id"`
	Type            FactType      `json:"type"`
	Value           string        `json:"value"`
	InReferenceToID string        `json:"in_reference_to_id,omitempty"`
	OrganizationID  string        `json:"organization_id,omitempty"`
	OriginID        string        `json:"origin_id,omitempty"`
	AddedByID       string        `json:"added_by_id,omitempty"`
	AccessMode      AccessMode    `json:"access_mode"`
	Confidence      float64       `json:"confidence"`
	Trust           float64       `json:"trust"`
	CreatedAt       time.Time     `json:"created_at"`
	LastSeenAt      time.Time     `json:"last_seen_at"`
	Retracted       bool          `json:"retracted,omitempty"`
	ACL             []string      `json:"acl,omitempty"`
	Objects         []BoundObject `json:"objects,omitempty"`
	Embedding       []float32     `json:"embedding,omitempty"`
}
