package ports

import (
	"context"

	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/events"
)

// DocumentRepository defines the persistence port for documents.
// This is a port in hexagonal architecture; the domain does not know
// about the implementation.
type DocumentRepository interface {
	// Save persists a document (create or update)
	Save(ctx context.Context, doc *aggregates.Document) error

	// GetByID retrieves one of the owner's documents by id
	GetByID(ctx context.Context, ownerID string, id aggregates.DocumentID) (*aggregates.Document, error)

	// ListByOwner retrieves metadata for all of the owner's documents
	ListByOwner(ctx context.Context, ownerID string) ([]DocumentSummary, error)

	// Delete removes a document permanently
	Delete(ctx context.Context, ownerID string, id aggregates.DocumentID) error

	// SaveViewport persists only the viewport transform, leaving the
	// tree untouched. Split out so debounced viewport writes never race
	// with structural saves over the whole item.
	SaveViewport(ctx context.Context, doc *aggregates.Document) error
}

// DocumentSummary is the listing projection: enough to render a document
// picker without loading any trees.
type DocumentSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail,omitempty"`
	NodeCount int    `json:"node_count"`
	UpdatedAt string `json:"updated_at"`
}

// DocumentCodec converts between a node tree and an external byte format
type DocumentCodec interface {
	// Format returns the codec's format identifier, e.g. "json"
	Format() string

	// Encode serializes the tree
	Encode(root *entities.Node) ([]byte, error)

	// Decode parses bytes into a tree. Malformed input yields an
	// import-format error and never a partial tree.
	Decode(data []byte) (*entities.Node, error)
}

// CodecRegistry resolves codecs by format identifier
type CodecRegistry interface {
	Lookup(format string) (DocumentCodec, error)
	Formats() []string
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
