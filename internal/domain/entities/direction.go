package entities

// Direction records how a bound Object relates to a Fact as stored.
//
// The stored value names the role of the Fact relative to the bound Object,
// not the role of the Object itself: a binding stored with FactIsDestination
// means the bound Object is the Fact's source. Only the FactConverter is
// supposed to interpret raw Direction values.
type Direction string

const (
	// DirectionFactIsSource marks a binding whose Object is the destination.
	DirectionFactIsSource Direction = "FactIsSource"
	// DirectionFactIsDestination marks a binding whose Object is the source.
	DirectionFactIsDestination Direction = "FactIsDestination"
	// DirectionBiDirectional marks a binding where source and destination
	// roles are interchangeable.
	DirectionBiDirectional Direction = "BiDirectional"
)

// IsValid reports whether d is one of the known direction values.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionFactIsSource, DirectionFactIsDestination, DirectionBiDirectional:
		return true
	}
	return false
}

// Binding is one stored edge endpoint: an Object reference plus the stored
// directionality. The order of a Fact's binding list is significant and must
// be preserved by storage.
type Binding struct {
	ObjectID  string    `json:"object_id"`
	Direction Direction `json:"direction"`
}
