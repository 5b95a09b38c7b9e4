package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/ports"
	"mindmap-backend/application/services"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/validators"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
	"mindmap-backend/pkg/observability"
)

// CreateDocumentHandler handles document creation
type CreateDocumentHandler struct {
	pipeline mutationPipeline
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewCreateDocumentHandler creates a new handler instance
func NewCreateDocumentHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CreateDocumentHandler {
	return &CreateDocumentHandler{
		pipeline: newMutationPipeline(repo, publisher, metrics, logger),
		sessions: sessions,
		logger:   logger,
	}
}

// Handle creates an empty document, persists it and opens a session
func (h *CreateDocumentHandler) Handle(ctx context.Context, cmd commands.CreateDocumentCommand) (*aggregates.Document, error) {
	started := time.Now()

	doc, err := aggregates.NewDocument(cmd.OwnerID, cmd.Name)
	if err != nil {
		return nil, err
	}

	if err := h.pipeline.commit(ctx, "create_document", doc, started); err != nil {
		return nil, err
	}

	h.sessions.Adopt(cmd.OwnerID, doc)
	h.logger.Info("document created",
		zap.String("document_id", doc.ID().String()),
		zap.String("owner_id", cmd.OwnerID),
	)
	return doc, nil
}

// RenameDocumentHandler handles document renames
type RenameDocumentHandler struct {
	pipeline mutationPipeline
	sessions *services.SessionManager
}

// NewRenameDocumentHandler creates a new handler instance
func NewRenameDocumentHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *RenameDocumentHandler {
	return &RenameDocumentHandler{
		pipeline: newMutationPipeline(repo, publisher, metrics, logger),
		sessions: sessions,
	}
}

// Handle renames the document
func (h *RenameDocumentHandler) Handle(ctx context.Context, cmd commands.RenameDocumentCommand) error {
	started := time.Now()

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	doc := session.Document()
	if err := doc.Rename(cmd.Name); err != nil {
		return err
	}

	return h.pipeline.commit(ctx, "rename_document", doc, started)
}

// DeleteDocumentHandler handles permanent document deletion
type DeleteDocumentHandler struct {
	repo     ports.DocumentRepository
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewDeleteDocumentHandler creates a new handler instance
func NewDeleteDocumentHandler(
	repo ports.DocumentRepository,
	sessions *services.SessionManager,
	logger *zap.Logger,
) *DeleteDocumentHandler {
	return &DeleteDocumentHandler{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// Handle deletes the document and discards any open session
func (h *DeleteDocumentHandler) Handle(ctx context.Context, cmd commands.DeleteDocumentCommand) error {
	id := aggregates.DocumentID(cmd.DocumentID)

	if err := h.repo.Delete(ctx, cmd.OwnerID, id); err != nil {
		return err
	}

	h.sessions.Close(cmd.OwnerID, id)
	h.logger.Info("document deleted",
		zap.String("document_id", cmd.DocumentID),
		zap.String("owner_id", cmd.OwnerID),
	)
	return nil
}

// ImportDocumentHandler handles tree imports from external formats
type ImportDocumentHandler struct {
	pipeline  mutationPipeline
	sessions  *services.SessionManager
	codecs    ports.CodecRegistry
	validator *validators.TreeValidator
	logger    *zap.Logger
}

// NewImportDocumentHandler creates a new handler instance
func NewImportDocumentHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	codecs ports.CodecRegistry,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ImportDocumentHandler {
	return &ImportDocumentHandler{
		pipeline:  newMutationPipeline(repo, publisher, metrics, logger),
		sessions:  sessions,
		codecs:    codecs,
		validator: validators.NewTreeValidator(),
		logger:    logger,
	}
}

// Handle parses, validates and grafts the imported tree. A malformed
// payload fails before anything touches the live document.
func (h *ImportDocumentHandler) Handle(ctx context.Context, cmd commands.ImportDocumentCommand) error {
	started := time.Now()

	codec, err := h.codecs.Lookup(cmd.Format)
	if err != nil {
		return err
	}

	imported, err := codec.Decode(cmd.Data)
	if err != nil {
		h.logger.Info("import rejected",
			zap.String("document_id", cmd.DocumentID),
			zap.String("format", cmd.Format),
			zap.Error(err),
		)
		return err
	}

	imported = h.validator.Normalize(imported)
	if err := h.validator.Validate(imported); err != nil {
		return err
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	if err := session.Apply(func(doc *aggregates.Document) error {
		return doc.ImportTree(imported, cmd.Format)
	}); err != nil {
		return err
	}

	return h.pipeline.commit(ctx, "import_document", session.Document(), started)
}

// UndoHandler restores the most recent history snapshot
type UndoHandler struct {
	pipeline mutationPipeline
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewUndoHandler creates a new handler instance
func NewUndoHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *UndoHandler {
	return &UndoHandler{
		pipeline: newMutationPipeline(repo, publisher, metrics, logger),
		sessions: sessions,
		logger:   logger,
	}
}

// Handle pops one history snapshot. An exhausted history is a no-op,
// reported but never fatal.
func (h *UndoHandler) Handle(ctx context.Context, cmd commands.UndoCommand) error {
	started := time.Now()

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	if err := session.Undo(); err != nil {
		if pkgerrors.IsHistoryExhausted(err) {
			h.logger.Info("undo with empty history",
				zap.String("document_id", cmd.DocumentID),
			)
		}
		return err
	}

	return h.pipeline.commit(ctx, "undo", session.Document(), started)
}

// SaveViewportHandler records viewport transforms with debounced writes
type SaveViewportHandler struct {
	sessions *services.SessionManager
	saver    *services.ViewportSaver
}

// NewSaveViewportHandler creates a new handler instance
func NewSaveViewportHandler(
	sessions *services.SessionManager,
	saver *services.ViewportSaver,
) *SaveViewportHandler {
	return &SaveViewportHandler{
		sessions: sessions,
		saver:    saver,
	}
}

// Handle updates the in-memory viewport and schedules a debounced write.
// The scale is clamped on the way in.
func (h *SaveViewportHandler) Handle(ctx context.Context, cmd commands.SaveViewportCommand) error {
	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	doc := session.Document()
	doc.SetViewport(valueobjects.Viewport{
		Position: valueobjects.Point{X: cmd.X, Y: cmd.Y},
		Scale:    cmd.Scale,
	})

	h.saver.Schedule(cmd.OwnerID, doc)
	return nil
}
