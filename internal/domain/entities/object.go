// Package entities contains core domain data structures.
package entities

import (
	"strings"
	"time"
)

// ObjectType categorizes an Object (graph node). Validation of types is
// handled by SchemaService, which supports both built-in and custom
// user-defined types.
type ObjectType string

// Default object types. Custom types can be added via SchemaService.
const (
	ObjectTypeIPv4        ObjectType = "ipv4"
	ObjectTypeDomain      ObjectType = "domain"
	ObjectTypeURI         ObjectType = "uri"
	ObjectTypeHash        ObjectType = "hash"
	ObjectTypeThreatActor ObjectType = "threat_actor"
	ObjectTypeTool        ObjectType = "tool"
	ObjectTypeCampaign    ObjectType = "campaign"
	ObjectTypeIncident    ObjectType = "incident"
)

// Object represents a graph node (an indicator or named entity) that Facts
// can bind to. Objects are global and deduplicated by (type, value).
type Object struct {
	ID        string     `json:"id"`
	Type      ObjectType `json:"type"`
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
}

// NormalizeValue converts an object value to its canonical lookup form.
func NormalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
