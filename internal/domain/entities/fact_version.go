package entities

import "time"

// ChangeType indicates why a fact version was recorded.
type ChangeType string

const (
	ChangeCreation   ChangeType = "creation"
	ChangeRefresh    ChangeType = "refresh"
	ChangeRetraction ChangeType = "retraction"
)

// FactVersion represents a historical snapshot of a stored fact.
type FactVersion struct {
	ID         string     `json:"id"`
	FactID     string     `json:"fact_id"`
	Version    int        `json:"version"`
	ChangeType ChangeType `json:"change_type"`
	Data       StoredFact `json:"data"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
