package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/application/queries"
	"mindmap-backend/application/services"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/pkg/utils"
)

// GetDocumentHandler loads a full document for the editor
type GetDocumentHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewGetDocumentHandler creates a new handler instance
func NewGetDocumentHandler(sessions *services.SessionManager, logger *zap.Logger) *GetDocumentHandler {
	return &GetDocumentHandler{sessions: sessions, logger: logger}
}

// Handle opens (or reuses) the editor session and projects the document.
// Reading through the session means an open editor always sees its own
// unsaved viewport rather than the persisted one.
func (h *GetDocumentHandler) Handle(ctx context.Context, query queries.GetDocumentQuery) (*queries.DocumentView, error) {
	session, err := h.sessions.Acquire(ctx, query.OwnerID, aggregates.DocumentID(query.DocumentID))
	if err != nil {
		return nil, err
	}

	doc := session.Document()
	return &queries.DocumentView{
		ID:        doc.ID().String(),
		Name:      doc.Name(),
		Root:      doc.Root(),
		Viewport:  doc.Viewport(),
		NodeCount: doc.NodeCount(),
		Version:   doc.Version(),
		UpdatedAt: utils.NowRFC3339(),
	}, nil
}

// ListDocumentsHandler lists the owner's documents
type ListDocumentsHandler struct {
	repo   ports.DocumentRepository
	logger *zap.Logger
}

// NewListDocumentsHandler creates a new handler instance
func NewListDocumentsHandler(repo ports.DocumentRepository, logger *zap.Logger) *ListDocumentsHandler {
	return &ListDocumentsHandler{repo: repo, logger: logger}
}

// Handle returns document summaries without loading any trees
func (h *ListDocumentsHandler) Handle(ctx context.Context, query queries.ListDocumentsQuery) ([]ports.DocumentSummary, error) {
	summaries, err := h.repo.ListByOwner(ctx, query.OwnerID)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("documents listed",
		zap.String("owner_id", query.OwnerID),
		zap.Int("count", len(summaries)),
	)
	return summaries, nil
}

// ExportDocumentHandler serializes a document's tree
type ExportDocumentHandler struct {
	sessions *services.SessionManager
	codecs   ports.CodecRegistry
}

// NewExportDocumentHandler creates a new handler instance
func NewExportDocumentHandler(sessions *services.SessionManager, codecs ports.CodecRegistry) *ExportDocumentHandler {
	return &ExportDocumentHandler{sessions: sessions, codecs: codecs}
}

// Handle encodes the live tree in the requested format
func (h *ExportDocumentHandler) Handle(ctx context.Context, query queries.ExportDocumentQuery) (*queries.ExportResult, error) {
	codec, err := h.codecs.Lookup(query.Format)
	if err != nil {
		return nil, err
	}

	session, err := h.sessions.Acquire(ctx, query.OwnerID, aggregates.DocumentID(query.DocumentID))
	if err != nil {
		return nil, err
	}

	doc := session.Document()
	data, err := codec.Encode(doc.Root())
	if err != nil {
		return nil, err
	}

	return &queries.ExportResult{
		Format:      codec.Format(),
		ContentType: contentTypeFor(codec.Format()),
		Filename:    fmt.Sprintf("%s.%s", doc.Name(), extensionFor(codec.Format())),
		Data:        data,
	}, nil
}

func contentTypeFor(format string) string {
	switch format {
	case "markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

func extensionFor(format string) string {
	switch format {
	case "markdown":
		return "md"
	default:
		return "json"
	}
}
