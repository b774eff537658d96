package entities

// ObjectCriterion matches one bound object by ID and stored direction.
type ObjectCriterion struct {
	ObjectID  string    `json:"object_id"`
	Direction Direction `json:"direction"`
}

// ExistenceCriteria identifies a logically-equal Fact in the search index.
// It is derived from a Fact before creation to detect duplicates: two facts
// are considered the same when every field here matches, including the
// (objectID, direction) pairs.
type ExistenceCriteria struct {
	Type            FactType          `json:"type"`
	Value           string            `json:"value"`
	OriginID        string            `json:"origin_id,omitempty"`
	OrganizationID  string            `json:"organization_id,omitempty"`
	AccessMode      AccessMode        `json:"access_mode"`
	Confidence      float64           `json:"confidence"`
	InReferenceToID string            `json:"in_reference_to_id,omitempty"`
	Objects         []ObjectCriterion `json:"objects,omitempty"`
}
