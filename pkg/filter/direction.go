package filter

import "strings"

// Direction selects a source/target transition pattern.
type Direction string

// Directions.
const (
	DirectionAny   Direction = ""
	SourceToNull   Direction = "source_to_null"   // Source set, target empty
	NullToTarget   Direction = "null_to_target"   // Source empty, target set
	SourceToTarget Direction = "source_to_target" // Both set
	HasSource      Direction = "has_source"
	HasTarget      Direction = "has_target"
)

// Directions lists the known directions.
func Directions() []Direction {
	return []Direction{SourceToNull, NullToTarget, SourceToTarget, HasSource, HasTarget}
}

// String returns the string representation of a Direction.
func (d Direction) String() string {
	return string(d)
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	for _, known := range Directions() {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDirection normalizes a direction name. Unknown names yield
// DirectionAny, which filters nothing.
func ParseDirection(s string) Direction {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if d.Valid() {
		return d
	}
	return DirectionAny
}
