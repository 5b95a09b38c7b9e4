package commands

import (
	"mindmap-backend/pkg/utils"
)

// Viewport gesture names accepted by ViewportGestureCommand
const (
	GestureZoom       = "zoom"
	GestureZoomIn     = "zoom_in"
	GestureZoomOut    = "zoom_out"
	GesturePan        = "pan"
	GestureFit        = "fit"
	GestureRecenter   = "recenter"
	GestureCompensate = "compensate"
)

// PointPayload is the wire shape of a canvas point
type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ViewportGestureCommand applies one viewport gesture to the session
// viewport. Which payload fields are required depends on the gesture:
// zooms take the cursor (and an absolute scale for plain zoom), pan
// takes a delta, fit takes the content and window rectangles, recenter
// takes the root and window rectangles, compensate takes the toggled
// node's canvas position before and after the layout reflow.
type ViewportGestureCommand struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	Gesture    string `json:"gesture" validate:"required,oneof=zoom zoom_in zoom_out pan fit recenter compensate"`

	Cursor  *PointPayload `json:"cursor,omitempty"`
	Scale   float64       `json:"scale,omitempty" validate:"omitempty,gt=0"`
	Delta   *PointPayload `json:"delta,omitempty"`
	Content *RectPayload  `json:"content,omitempty"`
	Root    *RectPayload  `json:"root,omitempty"`
	Window  *RectPayload  `json:"window,omitempty"`
	Before  *PointPayload `json:"before,omitempty"`
	After   *PointPayload `json:"after,omitempty"`
}

// Validate checks the command fields
func (c ViewportGestureCommand) Validate() error {
	return utils.ValidateStruct(c)
}
