package handlers

import (
	"context"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/services"
	"mindmap-backend/domain/core/valueobjects"
	domainsession "mindmap-backend/domain/session"
	pkgerrors "mindmap-backend/pkg/errors"
)

// ViewportGestureHandler applies pan, zoom, fit, recenter and collapse
// compensation gestures to the session viewport. The resulting
// transform is stored on the document and persisted through the
// debounced saver, so a gesture burst coalesces into one write.
type ViewportGestureHandler struct {
	controller *domainsession.ViewportController
	sessions   *services.SessionManager
	saver      *services.ViewportSaver
}

// NewViewportGestureHandler creates a new handler instance
func NewViewportGestureHandler(
	sessions *services.SessionManager,
	saver *services.ViewportSaver,
) *ViewportGestureHandler {
	return &ViewportGestureHandler{
		controller: domainsession.NewViewportController(),
		sessions:   sessions,
		saver:      saver,
	}
}

// Handle runs the gesture math and returns the stored viewport
func (h *ViewportGestureHandler) Handle(ctx context.Context, cmd commands.ViewportGestureCommand) (valueobjects.Viewport, error) {
	sess, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return valueobjects.Viewport{}, err
	}

	next, err := sess.ApplyViewportGesture(func(v valueobjects.Viewport) (valueobjects.Viewport, error) {
		switch cmd.Gesture {
		case commands.GestureZoom:
			if cmd.Cursor == nil || cmd.Scale == 0 {
				return v, pkgerrors.NewValidationError("zoom requires cursor and scale")
			}
			return h.controller.ZoomAt(v, point(*cmd.Cursor), cmd.Scale), nil

		case commands.GestureZoomIn:
			if cmd.Cursor == nil {
				return v, pkgerrors.NewValidationError("zoom_in requires cursor")
			}
			return h.controller.ZoomIn(v, point(*cmd.Cursor)), nil

		case commands.GestureZoomOut:
			if cmd.Cursor == nil {
				return v, pkgerrors.NewValidationError("zoom_out requires cursor")
			}
			return h.controller.ZoomOut(v, point(*cmd.Cursor)), nil

		case commands.GesturePan:
			if cmd.Delta == nil {
				return v, pkgerrors.NewValidationError("pan requires delta")
			}
			return h.controller.PanBy(v, point(*cmd.Delta)), nil

		case commands.GestureFit:
			if cmd.Content == nil || cmd.Window == nil {
				return v, pkgerrors.NewValidationError("fit requires content and window")
			}
			return h.controller.FitToContent(v, rect(*cmd.Content), rect(*cmd.Window)), nil

		case commands.GestureRecenter:
			if cmd.Root == nil || cmd.Window == nil {
				return v, pkgerrors.NewValidationError("recenter requires root and window")
			}
			return h.controller.RecenterOnRoot(v, rect(*cmd.Root), rect(*cmd.Window)), nil

		case commands.GestureCompensate:
			if cmd.Before == nil || cmd.After == nil {
				return v, pkgerrors.NewValidationError("compensate requires before and after")
			}
			return h.controller.CompensateCollapse(v, point(*cmd.Before), point(*cmd.After)), nil

		default:
			return v, pkgerrors.NewValidationError("unknown viewport gesture")
		}
	})
	if err != nil {
		return valueobjects.Viewport{}, err
	}

	h.saver.Schedule(cmd.OwnerID, sess.Document())
	return next, nil
}

func point(p commands.PointPayload) valueobjects.Point {
	return valueobjects.Point{X: p.X, Y: p.Y}
}

func rect(r commands.RectPayload) valueobjects.Rect {
	return valueobjects.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
