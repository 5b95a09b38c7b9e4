package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/ports"
	"mindmap-backend/application/services"
	"mindmap-backend/domain/core/aggregates"
	pkgerrors "mindmap-backend/pkg/errors"
)

// viewportRepo counts debounced viewport writes
type viewportRepo struct {
	mu     sync.Mutex
	writes int
}

func (r *viewportRepo) Save(ctx context.Context, doc *aggregates.Document) error { return nil }

func (r *viewportRepo) GetByID(ctx context.Context, ownerID string, id aggregates.DocumentID) (*aggregates.Document, error) {
	return nil, pkgerrors.NewNotFoundError("document")
}

func (r *viewportRepo) ListByOwner(ctx context.Context, ownerID string) ([]ports.DocumentSummary, error) {
	return nil, nil
}

func (r *viewportRepo) Delete(ctx context.Context, ownerID string, id aggregates.DocumentID) error {
	return nil
}

func (r *viewportRepo) SaveViewport(ctx context.Context, doc *aggregates.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	return nil
}

func (r *viewportRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func newGestureFixture(t *testing.T) (*ViewportGestureHandler, *viewportRepo, *aggregates.Document) {
	t.Helper()

	repo := &viewportRepo{}
	sessions := services.NewSessionManager(repo, zap.NewNop())
	saver := services.NewViewportSaverWithDelay(repo, zap.NewNop(), 10*time.Millisecond)
	t.Cleanup(saver.Stop)

	doc, err := aggregates.NewDocument("user-1", "Gestures")
	require.NoError(t, err)
	sessions.Adopt("user-1", doc)

	return NewViewportGestureHandler(sessions, saver), repo, doc
}

func gestureCmd(doc *aggregates.Document, gesture string) commands.ViewportGestureCommand {
	return commands.ViewportGestureCommand{
		OwnerID:    "user-1",
		DocumentID: doc.ID().String(),
		Gesture:    gesture,
	}
}

func TestZoomGestureKeepsCursorPointStationary(t *testing.T) {
	h, _, doc := newGestureFixture(t)

	cmd := gestureCmd(doc, commands.GestureZoom)
	cmd.Cursor = &commands.PointPayload{X: 100, Y: 100}
	cmd.Scale = 1.5

	// From scale 1 at the origin, zooming to 1.5 at (100,100) must land
	// the offset on (-50,-50) so the cursor point does not move.
	v, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.InDelta(t, -50.0, v.Position.X, 1e-9)
	assert.InDelta(t, -50.0, v.Position.Y, 1e-9)
	assert.InDelta(t, 1.5, v.Scale, 1e-9)
	assert.True(t, doc.Viewport().Equals(v), "the transform sticks to the document")
}

func TestPanGestureAccumulates(t *testing.T) {
	h, _, doc := newGestureFixture(t)

	cmd := gestureCmd(doc, commands.GesturePan)
	cmd.Delta = &commands.PointPayload{X: 30, Y: -10}
	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	v, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 60.0, v.Position.X)
	assert.Equal(t, -20.0, v.Position.Y)
}

func TestFitGestureCapsZoomForSmallContent(t *testing.T) {
	h, _, doc := newGestureFixture(t)

	cmd := gestureCmd(doc, commands.GestureFit)
	cmd.Content = &commands.RectPayload{X: 0, Y: 0, Width: 10, Height: 10}
	cmd.Window = &commands.RectPayload{Width: 1000, Height: 1000}

	v, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 2.0, v.Scale, "fitting tiny content never zooms past the fit cap")
}

func TestGestureWithMissingPayloadIsRejected(t *testing.T) {
	h, _, doc := newGestureFixture(t)
	before := doc.Viewport()

	_, err := h.Handle(context.Background(), gestureCmd(doc, commands.GestureZoom))

	assert.True(t, pkgerrors.IsValidation(err))
	assert.True(t, doc.Viewport().Equals(before), "a rejected gesture changes nothing")
}

func TestGestureSchedulesDebouncedSave(t *testing.T) {
	h, repo, doc := newGestureFixture(t)

	cmd := gestureCmd(doc, commands.GesturePan)
	cmd.Delta = &commands.PointPayload{X: 5, Y: 5}
	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return repo.writeCount() == 1 },
		time.Second, 5*time.Millisecond)
}
