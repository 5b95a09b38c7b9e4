package valueobjects

import "errors"

// Placement describes where dragged nodes land relative to a drop target
type Placement string

const (
	// PlacementBefore inserts as a preceding sibling of the target
	PlacementBefore Placement = "before"
	// PlacementAfter inserts as a following sibling of the target
	PlacementAfter Placement = "after"
	// PlacementInside appends as children of the target
	PlacementInside Placement = "inside"
)

// ParsePlacement validates and converts a raw placement string
func ParsePlacement(s string) (Placement, error) {
	switch Placement(s) {
	case PlacementBefore, PlacementAfter, PlacementInside:
		return Placement(s), nil
	}
	return "", errors.New("placement must be one of: before, after, inside")
}

// IsSibling reports whether the placement targets the drop target's parent
func (p Placement) IsSibling() bool {
	return p == PlacementBefore || p == PlacementAfter
}
