package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/application/services"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/pkg/observability"
)

// mutationPipeline carries the shared tail of every tree mutation:
// persist the document, publish its events, record metrics. Handlers
// run the domain operation through the session first so history and
// selection stay consistent, then hand the document here.
type mutationPipeline struct {
	repo      ports.DocumentRepository
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func newMutationPipeline(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) mutationPipeline {
	return mutationPipeline{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// commit saves the mutated document and publishes its pending events.
// Publish failures are logged, never propagated: the mutation is already
// durable and the events are advisory fan-out.
func (p mutationPipeline) commit(ctx context.Context, operation string, doc *aggregates.Document, started time.Time) error {
	if err := p.repo.Save(ctx, doc); err != nil {
		return err
	}

	events := doc.GetUncommittedEvents()
	if len(events) > 0 {
		if err := p.publisher.PublishBatch(ctx, events); err != nil {
			p.logger.Warn("event publication failed",
				zap.String("document_id", doc.ID().String()),
				zap.Int("event_count", len(events)),
				zap.Error(err),
			)
		}
		doc.MarkEventsAsCommitted()
	}

	p.metrics.RecordMutation(ctx, operation, time.Since(started))
	return nil
}

// reject records a structural rejection without touching the document
func (p mutationPipeline) reject(ctx context.Context, operation string, doc *aggregates.Document, err error) {
	p.metrics.RecordRejection(ctx, operation)
	p.logger.Info("structural rejection",
		zap.String("operation", operation),
		zap.String("document_id", doc.ID().String()),
		zap.Error(err),
	)
}

// acquire is a tiny shorthand for resolving the editor session
func acquire(ctx context.Context, sessions *services.SessionManager, ownerID, documentID string) (*services.EditorSession, error) {
	return sessions.Acquire(ctx, ownerID, aggregates.DocumentID(documentID))
}
