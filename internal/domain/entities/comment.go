package entities

import "time"

// Comment is an analyst annotation attached to a Fact.
type Comment struct {
	ID        string    `json:"id"`
	FactID    string    `json:"fact_id"`
	ReplyToID string    `json:"reply_to_id,omitempty"`
	OriginID  string    `json:"origin_id,omitempty"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
