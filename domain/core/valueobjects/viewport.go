package valueobjects

// Viewport scale bounds. Every scale change is clamped to this range.
const (
	MinScale = 0.2
	MaxScale = 3.0
)

// Viewport is the canvas transform: the pixel offset of the tree's origin
// and the zoom scale. It is a value; controllers return new values rather
// than mutating in place.
type Viewport struct {
	Position Point   `json:"position"`
	Scale    float64 `json:"scale"`
}

// NewViewport creates a viewport at the origin with neutral zoom
func NewViewport() Viewport {
	return Viewport{Position: Point{}, Scale: 1.0}
}

// WithScale returns the viewport with the scale clamped into bounds
func (v Viewport) WithScale(scale float64) Viewport {
	v.Scale = ClampScale(scale)
	return v
}

// Translated returns the viewport panned by delta
func (v Viewport) Translated(delta Point) Viewport {
	v.Position = v.Position.Add(delta)
	return v
}

// Equals compares two viewports by value
func (v Viewport) Equals(other Viewport) bool {
	return v.Position == other.Position && v.Scale == other.Scale
}

// ClampScale bounds a zoom scale to [MinScale, MaxScale]
func ClampScale(scale float64) float64 {
	if scale < MinScale {
		return MinScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}
