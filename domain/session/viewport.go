package session

import (
	"math"

	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/valueobjects"
)

// ViewportController computes viewport transforms for zoom, pan and
// framing gestures. It is pure: every method takes the current viewport
// and returns the next one, leaving persistence and debouncing to the
// caller.
//
// Coordinate model: a canvas point c renders at screen point
// c*scale + position. All gesture math follows from keeping chosen
// points fixed under that mapping.
type ViewportController struct {
	cfg *config.DomainConfig
}

// NewViewportController creates a controller with the default limits
func NewViewportController() *ViewportController {
	return &ViewportController{cfg: config.DefaultDomainConfig()}
}

// ZoomAt changes the scale while keeping the canvas point under the
// cursor stationary on screen. The requested scale is clamped to the
// viewport bounds before the anchor math runs, so clamped zooms still
// anchor correctly.
func (c *ViewportController) ZoomAt(v valueobjects.Viewport, cursor valueobjects.Point, scale float64) valueobjects.Viewport {
	clamped := valueobjects.ClampScale(scale)
	if clamped == v.Scale {
		return v
	}

	// Canvas point currently under the cursor.
	anchor := cursor.Sub(v.Position).Scale(1 / v.Scale)

	return valueobjects.Viewport{
		Position: cursor.Sub(anchor.Scale(clamped)),
		Scale:    clamped,
	}
}

// ZoomIn zooms one step in, anchored at the cursor
func (c *ViewportController) ZoomIn(v valueobjects.Viewport, cursor valueobjects.Point) valueobjects.Viewport {
	return c.ZoomAt(v, cursor, v.Scale+c.cfg.ZoomStep)
}

// ZoomOut zooms one step out, anchored at the cursor
func (c *ViewportController) ZoomOut(v valueobjects.Viewport, cursor valueobjects.Point) valueobjects.Viewport {
	return c.ZoomAt(v, cursor, v.Scale-c.cfg.ZoomStep)
}

// PanBy translates the viewport by a screen-space delta
func (c *ViewportController) PanBy(v valueobjects.Viewport, delta valueobjects.Point) valueobjects.Viewport {
	return v.Translated(delta)
}

// FitToContent frames the content bounding box inside the window: the
// scale is the largest that fits both axes with padding, capped so
// fitting small content never zooms in past MaxFitScale, and the content
// is centered. Empty content recenters at neutral zoom.
func (c *ViewportController) FitToContent(v valueobjects.Viewport, content valueobjects.Rect, window valueobjects.Rect) valueobjects.Viewport {
	if content.IsEmpty() || window.IsEmpty() {
		return valueobjects.NewViewport()
	}

	availW := window.Width - 2*c.cfg.FitPadding
	availH := window.Height - 2*c.cfg.FitPadding
	if availW <= 0 || availH <= 0 {
		availW = window.Width
		availH = window.Height
	}

	scale := math.Min(availW/content.Width, availH/content.Height)
	scale = math.Min(scale, c.cfg.MaxFitScale)
	scale = valueobjects.ClampScale(scale)

	center := content.Center()
	return valueobjects.Viewport{
		Position: valueobjects.Point{
			X: window.Width/2 - center.X*scale,
			Y: window.Height/2 - center.Y*scale,
		},
		Scale: scale,
	}
}

// RecenterOnRoot positions the root node horizontally centered and a
// fixed distance below the top edge, keeping the current scale.
func (c *ViewportController) RecenterOnRoot(v valueobjects.Viewport, root valueobjects.Rect, window valueobjects.Rect) valueobjects.Viewport {
	center := root.Center()
	return valueobjects.Viewport{
		Position: valueobjects.Point{
			X: window.Width/2 - center.X*v.Scale,
			Y: c.cfg.RecenterAnchorY - root.Y*v.Scale,
		},
		Scale: v.Scale,
	}
}

// CompensateCollapse keeps the toggled node visually stationary when a
// collapse or expand reflows the layout. anchorBefore and anchorAfter
// are the node's canvas position before and after the reflow.
func (c *ViewportController) CompensateCollapse(v valueobjects.Viewport, anchorBefore, anchorAfter valueobjects.Point) valueobjects.Viewport {
	shift := anchorBefore.Sub(anchorAfter).Scale(v.Scale)
	return v.Translated(shift)
}
