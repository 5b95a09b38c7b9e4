package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/aggregates"
	pkgerrors "mindmap-backend/pkg/errors"
)

// DocumentRepository is an in-memory ports.DocumentRepository used for
// local development and tests. Stored documents are deep-copied on the
// way in and out so callers can never mutate the store through a shared
// tree pointer.
type DocumentRepository struct {
	mu    sync.RWMutex
	items map[string]*stored
}

type stored struct {
	doc       *aggregates.Document
	updatedAt time.Time
}

// NewDocumentRepository creates an empty in-memory repository
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{items: make(map[string]*stored)}
}

func key(ownerID string, id aggregates.DocumentID) string {
	return ownerID + "/" + id.String()
}

// Save persists a deep copy of the document
func (r *DocumentRepository) Save(ctx context.Context, doc *aggregates.Document) error {
	copied, err := snapshot(doc)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key(doc.OwnerID(), doc.ID())] = &stored{
		doc:       copied,
		updatedAt: doc.UpdatedAt(),
	}
	return nil
}

// GetByID returns a deep copy of the stored document
func (r *DocumentRepository) GetByID(ctx context.Context, ownerID string, id aggregates.DocumentID) (*aggregates.Document, error) {
	r.mu.RLock()
	item, ok := r.items[key(ownerID, id)]
	r.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.NewNotFoundError("document")
	}
	return snapshot(item.doc)
}

// ListByOwner returns summaries sorted by most recently updated
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]ports.DocumentSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*stored
	for _, item := range r.items {
		if item.doc.OwnerID() == ownerID {
			matches = append(matches, item)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].updatedAt.After(matches[j].updatedAt)
	})

	summaries := make([]ports.DocumentSummary, len(matches))
	for i, item := range matches {
		summaries[i] = ports.DocumentSummary{
			ID:        item.doc.ID().String(),
			Name:      item.doc.Name(),
			Thumbnail: item.doc.Thumbnail(),
			NodeCount: item.doc.NodeCount(),
			UpdatedAt: item.updatedAt.Format(time.RFC3339),
		}
	}
	return summaries, nil
}

// Delete removes a document
func (r *DocumentRepository) Delete(ctx context.Context, ownerID string, id aggregates.DocumentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(ownerID, id)
	if _, ok := r.items[k]; !ok {
		return pkgerrors.NewNotFoundError("document")
	}
	delete(r.items, k)
	return nil
}

// SaveViewport updates only the viewport of a stored document
func (r *DocumentRepository) SaveViewport(ctx context.Context, doc *aggregates.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[key(doc.OwnerID(), doc.ID())]
	if !ok {
		return pkgerrors.NewNotFoundError("document")
	}
	item.doc.SetViewport(doc.Viewport())
	item.updatedAt = time.Now()
	return nil
}

// Len returns the number of stored documents
func (r *DocumentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// snapshot rebuilds a detached copy of the document with a cloned tree
func snapshot(doc *aggregates.Document) (*aggregates.Document, error) {
	return aggregates.ReconstructDocument(
		doc.ID(),
		doc.OwnerID(),
		doc.Name(),
		doc.Root().Clone(),
		doc.Viewport(),
		doc.Thumbnail(),
		doc.CreatedAt(),
		doc.UpdatedAt(),
		doc.Version(),
	)
}
