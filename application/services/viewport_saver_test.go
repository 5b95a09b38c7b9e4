package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// recordingRepo counts viewport writes and remembers the last one
type recordingRepo struct {
	mu             sync.Mutex
	viewportWrites int
	lastViewport   valueobjects.Viewport
}

func (r *recordingRepo) Save(ctx context.Context, doc *aggregates.Document) error { return nil }

func (r *recordingRepo) GetByID(ctx context.Context, ownerID string, id aggregates.DocumentID) (*aggregates.Document, error) {
	return nil, pkgerrors.NewNotFoundError("document")
}

func (r *recordingRepo) ListByOwner(ctx context.Context, ownerID string) ([]ports.DocumentSummary, error) {
	return nil, nil
}

func (r *recordingRepo) Delete(ctx context.Context, ownerID string, id aggregates.DocumentID) error {
	return nil
}

func (r *recordingRepo) SaveViewport(ctx context.Context, doc *aggregates.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewportWrites++
	r.lastViewport = doc.Viewport()
	return nil
}

func (r *recordingRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewportWrites
}

func (r *recordingRepo) last() valueobjects.Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastViewport
}

func newSaverFixture(t *testing.T, delay time.Duration) (*ViewportSaver, *recordingRepo, *aggregates.Document) {
	t.Helper()

	repo := &recordingRepo{}
	saver := NewViewportSaverWithDelay(repo, zap.NewNop(), delay)
	doc, err := aggregates.NewDocument("user-1", "Saver")
	require.NoError(t, err)
	return saver, repo, doc
}

func TestViewportSaverCoalescesBurstsIntoOneWrite(t *testing.T) {
	saver, repo, doc := newSaverFixture(t, 30*time.Millisecond)

	// A pan gesture: many updates inside one debounce window.
	for i := 0; i < 10; i++ {
		doc.SetViewport(valueobjects.Viewport{
			Position: valueobjects.Point{X: float64(i * 10)},
			Scale:    1.0,
		})
		saver.Schedule("user-1", doc)
	}

	assert.Eventually(t, func() bool { return repo.writes() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, 90.0, repo.last().Position.X, "only the latest viewport is written")
	assert.Equal(t, 0, saver.PendingCount())
}

func TestViewportSaverFlushWritesImmediately(t *testing.T) {
	saver, repo, doc := newSaverFixture(t, time.Hour)

	doc.SetViewport(valueobjects.Viewport{Position: valueobjects.Point{X: 5, Y: 7}, Scale: 1.2})
	saver.Schedule("user-1", doc)
	require.Equal(t, 1, saver.PendingCount())

	saver.Flush("user-1", doc)

	assert.Equal(t, 1, repo.writes())
	assert.Equal(t, 0, saver.PendingCount())
	assert.Equal(t, 1.2, repo.last().Scale)
}

func TestViewportSaverStopCancelsPending(t *testing.T) {
	saver, repo, doc := newSaverFixture(t, 20*time.Millisecond)

	saver.Schedule("user-1", doc)
	saver.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, repo.writes())
}

func TestViewportSaverTracksDocumentsIndependently(t *testing.T) {
	saver, repo, doc := newSaverFixture(t, 20*time.Millisecond)
	other, err := aggregates.NewDocument("user-1", "Other")
	require.NoError(t, err)

	saver.Schedule("user-1", doc)
	saver.Schedule("user-1", other)

	assert.Eventually(t, func() bool { return repo.writes() == 2 },
		time.Second, 5*time.Millisecond)
}
