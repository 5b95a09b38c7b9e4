package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/aggregates"
)

// ViewportSaver coalesces the stream of viewport updates produced by
// continuous pan and zoom gestures into at most one repository write per
// debounce window per document. A newer update supersedes the pending
// one; only the latest viewport ever reaches storage.
type ViewportSaver struct {
	mu      sync.Mutex
	pending map[string]*pendingSave
	repo    ports.DocumentRepository
	delay   time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

type pendingSave struct {
	timer   *time.Timer
	ownerID string
	doc     *aggregates.Document
}

// NewViewportSaver creates a saver with the default debounce window
func NewViewportSaver(repo ports.DocumentRepository, logger *zap.Logger) *ViewportSaver {
	return NewViewportSaverWithDelay(repo, logger, config.DefaultDomainConfig().ViewportSaveDebounce)
}

// NewViewportSaverWithDelay creates a saver with a custom debounce window
func NewViewportSaverWithDelay(repo ports.DocumentRepository, logger *zap.Logger, delay time.Duration) *ViewportSaver {
	return &ViewportSaver{
		pending: make(map[string]*pendingSave),
		repo:    repo,
		delay:   delay,
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

// Schedule queues a debounced write of the document's current viewport.
// A pending write for the same document is cancelled and replaced.
func (s *ViewportSaver) Schedule(ownerID string, doc *aggregates.Document) {
	key := sessionKey(ownerID, doc.ID())

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}
	s.pending[key] = &pendingSave{
		ownerID: ownerID,
		doc:     doc,
		timer: time.AfterFunc(s.delay, func() {
			s.mu.Lock()
			delete(s.pending, key)
			s.mu.Unlock()
			s.write(ownerID, doc)
		}),
	}
}

// Flush writes the document's viewport immediately, cancelling any
// pending debounced write. Called when a session closes so the last
// viewport is never lost to the debounce window.
func (s *ViewportSaver) Flush(ownerID string, doc *aggregates.Document) {
	key := sessionKey(ownerID, doc.ID())

	s.mu.Lock()
	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()

	s.write(ownerID, doc)
}

// FlushAll writes every pending viewport immediately. Called on
// shutdown so debounced updates survive the process exit.
func (s *ViewportSaver) FlushAll() {
	s.mu.Lock()
	drained := make([]*pendingSave, 0, len(s.pending))
	for key, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, key)
		drained = append(drained, p)
	}
	s.mu.Unlock()

	for _, p := range drained {
		s.write(p.ownerID, p.doc)
	}
}

// Stop cancels all pending writes without flushing them
func (s *ViewportSaver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, key)
	}
}

// PendingCount returns the number of queued writes
func (s *ViewportSaver) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *ViewportSaver) write(ownerID string, doc *aggregates.Document) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.repo.SaveViewport(ctx, doc); err != nil {
		s.logger.Error("viewport save failed",
			zap.String("document_id", doc.ID().String()),
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("viewport saved",
		zap.String("document_id", doc.ID().String()),
		zap.Float64("scale", doc.Viewport().Scale),
	)
}
