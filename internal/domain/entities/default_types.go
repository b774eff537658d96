package entities

// DefaultObjectTypes are the built-in object types seeded on init.
// These cannot be deleted by users.
var DefaultObjectTypes = []TypeDef{
	{Kind: TypeKindObject, Name: "ipv4", Description: "IPv4 addresses"},
	{Kind: TypeKindObject, Name: "domain", Description: "DNS domain names"},
	{Kind: TypeKindObject, Name: "uri", Description: "URIs and URLs"},
	{Kind: TypeKindObject, Name: "hash", Description: "File hashes (md5, sha1, sha256)"},
	{Kind: TypeKindObject, Name: "threat_actor", Description: "Named threat actors and groups"},
	{Kind: TypeKindObject, Name: "tool", Description: "Malware families and attack tools"},
	{Kind: TypeKindObject, Name: "campaign", Description: "Named attack campaigns"},
	{Kind: TypeKindObject, Name: "incident", Description: "Tracked security incidents"},
}

// DefaultFactTypes are the built-in fact types seeded on init.
var DefaultFactTypes = []TypeDef{
	{Kind: TypeKindFact, Name: "mentions", Description: "A report mentions an indicator"},
	{Kind: TypeKindFact, Name: "resolves_to", Description: "A domain resolves to an address"},
	{Kind: TypeKindFact, Name: "alias", Description: "Two objects are known aliases (symmetric)"},
	{Kind: TypeKindFact, Name: "attributed_to", Description: "Activity attributed to an actor"},
	{Kind: TypeKindFact, Name: "targets", Description: "An actor or campaign targets a victim"},
	{Kind: TypeKindFact, Name: "uses", Description: "An actor or campaign uses a tool"},
	{Kind: TypeKindFact, Name: "observed_in", Description: "An indicator observed in an incident"},
	{Kind: TypeKindFact, Name: "component_of", Description: "An object is part of another"},
}

// IsDefaultType checks if a type name is a built-in default for the kind.
func IsDefaultType(kind TypeKind, name string) bool {
	defaults := DefaultObjectTypes
	if kind == TypeKindFact {
		defaults = DefaultFactTypes
	}
	for _, t := range defaults {
		if t.Name == name {
			return true
		}
	}
	return false
}
