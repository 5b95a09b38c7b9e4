package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/ports"
	"mindmap-backend/application/services"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	domainsession "mindmap-backend/domain/session"
	pkgerrors "mindmap-backend/pkg/errors"
	"mindmap-backend/pkg/observability"
)

// ClipboardHandler handles copy, cut and paste against the session
// clipboard. Copy never touches the document; cut and paste are single
// undoable mutations.
type ClipboardHandler struct {
	pipeline mutationPipeline
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewClipboardHandler creates a new handler instance
func NewClipboardHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ClipboardHandler {
	return &ClipboardHandler{
		pipeline: newMutationPipeline(repo, publisher, metrics, logger),
		sessions: sessions,
		logger:   logger,
	}
}

// HandleCopy captures the selected subtrees onto the clipboard
func (h *ClipboardHandler) HandleCopy(ctx context.Context, cmd commands.CopyCommand) error {
	ids, err := parseNodeIDs(cmd.NodeIDs)
	if err != nil {
		return err
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	return session.Copy(ids)
}

// HandleCut captures and deletes the selected subtrees in one step
func (h *ClipboardHandler) HandleCut(ctx context.Context, cmd commands.CutCommand) error {
	started := time.Now()

	ids, err := parseNodeIDs(cmd.NodeIDs)
	if err != nil {
		return err
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	if err := session.Cut(ids); err != nil {
		if pkgerrors.IsStructural(err) {
			h.pipeline.reject(ctx, "cut", session.Document(), err)
		}
		return err
	}

	return h.pipeline.commit(ctx, "cut", session.Document(), started)
}

// HandlePaste instantiates the clipboard under the anchor and returns
// the pasted subtree roots.
func (h *ClipboardHandler) HandlePaste(ctx context.Context, cmd commands.PasteCommand) ([]*entities.Node, error) {
	started := time.Now()

	var anchorID valueobjects.NodeID
	if cmd.AnchorID != "" {
		parsed, err := valueobjects.NewNodeIDFromString(cmd.AnchorID)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		anchorID = parsed
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return nil, err
	}

	pasted, err := session.Paste(anchorID)
	if err != nil {
		return nil, err
	}

	if err := h.pipeline.commit(ctx, "paste", session.Document(), started); err != nil {
		return nil, err
	}
	return pasted, nil
}

// SelectionHandler handles explicit and marquee selection intents.
// Selection is session state only; nothing here persists or publishes.
type SelectionHandler struct {
	sessions *services.SessionManager
}

// NewSelectionHandler creates a new handler instance
func NewSelectionHandler(sessions *services.SessionManager) *SelectionHandler {
	return &SelectionHandler{sessions: sessions}
}

// HandleSelect applies a pointer selection intent: replace by default,
// add under shift, remove under alt, toggle for modifier-free
// multi-select.
func (h *SelectionHandler) HandleSelect(ctx context.Context, cmd commands.SelectCommand) ([]valueobjects.NodeID, error) {
	ids, err := parseNodeIDs(cmd.NodeIDs)
	if err != nil {
		return nil, err
	}

	sess, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return nil, err
	}

	switch cmd.Mode {
	case commands.SelectionModeAdd:
		sess.AddSelect(ids)
	case commands.SelectionModeRemove:
		sess.RemoveSelect(ids)
	case commands.SelectionModeToggle:
		for _, id := range ids {
			sess.ToggleSelect(id)
		}
	default:
		sess.Select(ids)
	}
	return sess.SelectedIDs(), nil
}

// HandleMarquee applies a marquee release: the hit set replaces the
// selection, or extends or reduces it under the shift and alt modes.
func (h *SelectionHandler) HandleMarquee(ctx context.Context, cmd commands.MarqueeSelectCommand) ([]valueobjects.NodeID, error) {
	sess, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return nil, err
	}

	bounds := make(map[valueobjects.NodeID]valueobjects.Rect, len(cmd.Bounds))
	for raw, rect := range cmd.Bounds {
		id, err := valueobjects.NewNodeIDFromString(raw)
		if err != nil {
			continue
		}
		bounds[id] = valueobjects.Rect{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height}
	}

	sess.Marquee(valueobjects.Rect{
		X:      cmd.Marquee.X,
		Y:      cmd.Marquee.Y,
		Width:  cmd.Marquee.Width,
		Height: cmd.Marquee.Height,
	}, bounds, domainsession.ParseMarqueeMode(cmd.Mode))

	return sess.SelectedIDs(), nil
}
