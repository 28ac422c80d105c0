// Package parameters defines the parameter schema, the typed parameter values
// and the validation state shared by the session, the API client and the
// preset store.
package parameters

// Type is the declared type tag of a parameter definition.
type Type string

const (
	TypeString     Type = "string"
	TypeNumber     Type = "number"
	TypeBoolean    Type = "boolean"
	TypeArray      Type = "array"
	TypeObject     Type = "object"
	TypeLength     Type = "length"
	TypeAngle      Type = "angle"
	TypeSpeed      Type = "speed"
	TypeCoordinate Type = "coordinate"
	TypeTool       Type = "tool"
	TypeMaterial   Type = "material"
)

// KnownTypes lists every type tag the parameter service declares.
var KnownTypes = []Type{
	TypeString,
	TypeNumber,
	TypeBoolean,
	TypeArray,
	TypeObject,
	TypeLength,
	TypeAngle,
	TypeSpeed,
	TypeCoordinate,
	TypeTool,
	TypeMaterial,
}

// IsNumeric reports whether values of t are numbers (plain or with a unit).
func (t Type) IsNumeric() bool {
	switch t {
	case TypeNumber, TypeLength, TypeAngle, TypeSpeed:
		return true
	}
	return false
}

// IsKnown reports whether t is one of KnownTypes.
func (t Type) IsKnown() bool {
	for _, known := range KnownTypes {
		if t == known {
			return true
		}
	}
	return false
}
