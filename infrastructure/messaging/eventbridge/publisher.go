package eventbridge

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/events"
	pkgerrors "mindmap-backend/pkg/errors"
)

const source = "mindmap.editor"

// Publisher sends domain events to an EventBridge bus. Event types map
// to EventBridge detail types one to one, so consumers can filter on
// "node.deleted" or "document.tree_imported" directly.
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates an EventBridge publisher
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events in chunks of the EventBridge limit
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	const maxEntries = 10

	for start := 0; start < len(batch); start += maxEntries {
		end := start + maxEntries
		if end > len(batch) {
			end = len(batch)
		}

		entries := make([]types.PutEventsRequestEntry, 0, end-start)
		for _, event := range batch[start:end] {
			detail, err := json.Marshal(event)
			if err != nil {
				return pkgerrors.Wrap(err, "failed to serialize event")
			}
			entries = append(entries, types.PutEventsRequestEntry{
				EventBusName: aws.String(p.busName),
				Source:       aws.String(source),
				DetailType:   aws.String(event.GetEventType()),
				Detail:       aws.String(string(detail)),
			})
		}

		result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
		if err != nil {
			return pkgerrors.NewExternalError("eventbridge", err)
		}
		if result.FailedEntryCount > 0 {
			p.logger.Warn("some events failed to publish",
				zap.Int32("failed_count", result.FailedEntryCount),
			)
		}
	}

	return nil
}

// NopPublisher drops events. Used in development when no bus is
// configured; mutations stay fully functional without fan-out.
type NopPublisher struct{}

// NewNopPublisher creates a publisher that discards everything
func NewNopPublisher() ports.EventPublisher {
	return NopPublisher{}
}

// Publish drops the event
func (NopPublisher) Publish(ctx context.Context, event events.DomainEvent) error { return nil }

// PublishBatch drops the events
func (NopPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error { return nil }
