package entities

import "time"

// AclEntry grants a subject access to a Fact with explicit access mode.
type AclEntry struct {
	ID        string    `json:"id"`
	FactID    string    `json:"fact_id"`
	SubjectID string    `json:"subject_id"`
	OriginID  string    `json:"origin_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
