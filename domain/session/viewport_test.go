package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mindmap-backend/domain/core/valueobjects"
)

func TestZoomAtKeepsCursorPointStationary(t *testing.T) {
	c := NewViewportController()
	v := valueobjects.NewViewport()

	// Zooming 1.0 -> 1.5 at cursor (100,100) from the origin must land
	// the position at (-50,-50).
	zoomed := c.ZoomAt(v, valueobjects.Point{X: 100, Y: 100}, 1.5)

	assert.InDelta(t, 1.5, zoomed.Scale, 1e-9)
	assert.InDelta(t, -50, zoomed.Position.X, 1e-9)
	assert.InDelta(t, -50, zoomed.Position.Y, 1e-9)
}

func TestZoomAtRoundTripsUnderCursor(t *testing.T) {
	c := NewViewportController()
	v := valueobjects.Viewport{Position: valueobjects.Point{X: 37, Y: -12}, Scale: 0.8}
	cursor := valueobjects.Point{X: 420, Y: 260}

	canvasUnderCursor := func(v valueobjects.Viewport) valueobjects.Point {
		return cursor.Sub(v.Position).Scale(1 / v.Scale)
	}

	before := canvasUnderCursor(v)
	zoomed := c.ZoomAt(v, cursor, 1.7)
	after := canvasUnderCursor(zoomed)

	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestZoomAtClampsScale(t *testing.T) {
	c := NewViewportController()
	v := valueobjects.NewViewport()
	cursor := valueobjects.Point{X: 50, Y: 50}

	tooFar := c.ZoomAt(v, cursor, 99)
	assert.Equal(t, valueobjects.MaxScale, tooFar.Scale)

	tooClose := c.ZoomAt(v, cursor, 0.01)
	assert.Equal(t, valueobjects.MinScale, tooClose.Scale)

	// Already at the bound: no movement at all.
	atMax := valueobjects.Viewport{Scale: valueobjects.MaxScale}
	assert.Equal(t, atMax, c.ZoomAt(atMax, cursor, 99))
}

func TestZoomStepsAreSymmetric(t *testing.T) {
	c := NewViewportController()
	v := valueobjects.Viewport{Position: valueobjects.Point{X: 10, Y: 20}, Scale: 1.0}
	cursor := valueobjects.Point{X: 300, Y: 200}

	back := c.ZoomOut(c.ZoomIn(v, cursor), cursor)

	assert.InDelta(t, v.Scale, back.Scale, 1e-9)
	assert.InDelta(t, v.Position.X, back.Position.X, 1e-9)
	assert.InDelta(t, v.Position.Y, back.Position.Y, 1e-9)
}

func TestPanBy(t *testing.T) {
	c := NewViewportController()
	v := valueobjects.Viewport{Position: valueobjects.Point{X: 5, Y: 5}, Scale: 1.3}

	panned := c.PanBy(v, valueobjects.Point{X: -15, Y: 40})

	assert.Equal(t, valueobjects.Point{X: -10, Y: 45}, panned.Position)
	assert.Equal(t, 1.3, panned.Scale, "pan never changes scale")
}

func TestFitToContent(t *testing.T) {
	c := NewViewportController()
	window := valueobjects.Rect{Width: 1280, Height: 800}

	t.Run("large content zooms out to fit", func(t *testing.T) {
		content := valueobjects.Rect{X: -1000, Y: -1000, Width: 4000, Height: 2000}
		fitted := c.FitToContent(valueobjects.NewViewport(), content, window)

		assert.Less(t, fitted.Scale, 1.0)

		// Content center lands on the window center.
		center := content.Center()
		assert.InDelta(t, window.Width/2, center.X*fitted.Scale+fitted.Position.X, 1e-9)
		assert.InDelta(t, window.Height/2, center.Y*fitted.Scale+fitted.Position.Y, 1e-9)
	})

	t.Run("small content is capped at the fit ceiling", func(t *testing.T) {
		content := valueobjects.Rect{X: 0, Y: 0, Width: 50, Height: 30}
		fitted := c.FitToContent(valueobjects.NewViewport(), content, window)

		assert.Equal(t, 2.0, fitted.Scale)
	})

	t.Run("empty content resets to neutral", func(t *testing.T) {
		fitted := c.FitToContent(
			valueobjects.Viewport{Position: valueobjects.Point{X: 9, Y: 9}, Scale: 2.5},
			valueobjects.Rect{}, window)

		assert.Equal(t, valueobjects.NewViewport(), fitted)
	})
}

func TestRecenterOnRoot(t *testing.T) {
	c := NewViewportController()
	window := valueobjects.Rect{Width: 1000, Height: 700}
	root := valueobjects.Rect{X: 300, Y: 150, Width: 200, Height: 40}
	v := valueobjects.Viewport{Position: valueobjects.Point{X: -999, Y: 999}, Scale: 1.5}

	centered := c.RecenterOnRoot(v, root, window)

	assert.Equal(t, 1.5, centered.Scale, "recentering keeps the current scale")
	// Root center x on the window's vertical midline.
	assert.InDelta(t, window.Width/2, root.Center().X*1.5+centered.Position.X, 1e-9)
	// Root top edge anchored a fixed distance below the window top.
	assert.InDelta(t, 100, root.Y*1.5+centered.Position.Y, 1e-9)
}

func TestCompensateCollapseKeepsAnchorStationary(t *testing.T) {
	c := NewViewportController()
	v := valueobjects.Viewport{Position: valueobjects.Point{X: 20, Y: -30}, Scale: 2.0}

	before := valueobjects.Point{X: 400, Y: 300}
	after := valueobjects.Point{X: 340, Y: 300}

	adjusted := c.CompensateCollapse(v, before, after)

	screen := func(v valueobjects.Viewport, p valueobjects.Point) valueobjects.Point {
		return p.Scale(v.Scale).Add(v.Position)
	}
	assert.Equal(t, screen(v, before), screen(adjusted, after))
	assert.Equal(t, v.Scale, adjusted.Scale)
}
