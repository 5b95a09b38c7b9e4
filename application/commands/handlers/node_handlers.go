package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/ports"
	"mindmap-backend/application/services"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
	"mindmap-backend/pkg/observability"
)

// UpdateNodeHandler handles partial node content updates
type UpdateNodeHandler struct {
	pipeline mutationPipeline
	sessions *services.SessionManager
}

// NewUpdateNodeHandler creates a new handler instance
func NewUpdateNodeHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *UpdateNodeHandler {
	return &UpdateNodeHandler{
		pipeline: newMutationPipeline(repo, publisher, metrics, logger),
		sessions: sessions,
	}
}

// Handle executes the update node command
func (h *UpdateNodeHandler) Handle(ctx context.Context, cmd commands.UpdateNodeCommand) error {
	started := time.Now()

	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	if err := session.Apply(func(doc *aggregates.Document) error {
		return doc.UpdateNode(nodeID, aggregates.NodeChanges{
			Text:  cmd.Text,
			Image: cmd.Image,
			URL:   cmd.URL,
			Width: cmd.Width,
		})
	}); err != nil {
		return err
	}

	return h.pipeline.commit(ctx, "update_node", session.Document(), started)
}

// AddNodeHandler handles child and sibling insertion
type AddNodeHandler struct {
	pipeline mutationPipeline
	sessions *services.SessionManager
}

// NewAddNodeHandler creates a new handler instance
func NewAddNodeHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AddNodeHandler {
	return &AddNodeHandler{
		pipeline: newMutationPipeline(repo, publisher, metrics, logger),
		sessions: sessions,
	}
}

// HandleAddChild appends a new node under the parent and returns it
func (h *AddNodeHandler) HandleAddChild(ctx context.Context, cmd commands.AddChildCommand) (*entities.Node, error) {
	started := time.Now()

	parentID, err := valueobjects.NewNodeIDFromString(cmd.ParentID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return nil, err
	}

	var created *entities.Node
	if err := session.Apply(func(doc *aggregates.Document) error {
		created, err = doc.AddChild(parentID, cmd.Text)
		return err
	}); err != nil {
		return nil, err
	}

	if err := h.pipeline.commit(ctx, "add_child", session.Document(), started); err != nil {
		return nil, err
	}
	return created, nil
}

// HandleAddSibling inserts a new node next to the anchor and returns it.
// A root anchor is structurally rejected; the tree stays unchanged.
func (h *AddNodeHandler) HandleAddSibling(ctx context.Context, cmd commands.AddSiblingCommand) (*entities.Node, error) {
	started := time.Now()

	anchorID, err := valueobjects.NewNodeIDFromString(cmd.AnchorID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	placement, err := valueobjects.ParsePlacement(cmd.Placement)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return nil, err
	}

	var created *entities.Node
	if err := session.Apply(func(doc *aggregates.Document) error {
		created, err = doc.AddSibling(anchorID, cmd.Text, placement)
		return err
	}); err != nil {
		if pkgerrors.IsStructural(err) {
			h.pipeline.reject(ctx, "add_sibling", session.Document(), err)
		}
		if pkgerrors.IsNotFound(err) {
			h.pipeline.logger.Warn("sibling insert against unresolvable anchor",
				zap.String("anchor_id", cmd.AnchorID),
				zap.String("document_id", cmd.DocumentID),
			)
		}
		return nil, err
	}

	if err := h.pipeline.commit(ctx, "add_sibling", session.Document(), started); err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteNodesHandler handles subtree deletion
type DeleteNodesHandler struct {
	pipeline mutationPipeline
	sessions *services.SessionManager
}

// NewDeleteNodesHandler creates a new handler instance
func NewDeleteNodesHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DeleteNodesHandler {
	return &DeleteNodesHandler{
		pipeline: newMutationPipeline(repo, publisher, metrics, logger),
		sessions: sessions,
	}
}

// Handle deletes the subtrees. Deleting the root is rejected.
func (h *DeleteNodesHandler) Handle(ctx context.Context, cmd commands.DeleteNodesCommand) error {
	started := time.Now()

	ids, err := parseNodeIDs(cmd.NodeIDs)
	if err != nil {
		return err
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	if err := session.Apply(func(doc *aggregates.Document) error {
		if len(ids) == 1 {
			return doc.DeleteNode(ids[0])
		}
		return doc.DeleteNodes(ids)
	}); err != nil {
		if pkgerrors.IsStructural(err) {
			h.pipeline.reject(ctx, "delete_nodes", session.Document(), err)
		}
		return err
	}

	return h.pipeline.commit(ctx, "delete_nodes", session.Document(), started)
}

// ToggleCollapseHandler handles collapse and expand
type ToggleCollapseHandler struct {
	pipeline mutationPipeline
	sessions *services.SessionManager
}

// NewToggleCollapseHandler creates a new handler instance
func NewToggleCollapseHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ToggleCollapseHandler {
	return &ToggleCollapseHandler{
		pipeline: newMutationPipeline(repo, publisher, metrics, logger),
		sessions: sessions,
	}
}

// Handle sets the collapsed flag, optionally on the whole subtree
func (h *ToggleCollapseHandler) Handle(ctx context.Context, cmd commands.ToggleCollapseCommand) error {
	started := time.Now()

	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	if err := session.Apply(func(doc *aggregates.Document) error {
		return doc.ToggleCollapse(nodeID, cmd.Collapsed, cmd.Recursive)
	}); err != nil {
		return err
	}

	return h.pipeline.commit(ctx, "toggle_collapse", session.Document(), started)
}

// MoveNodesHandler handles drag-to-reparent drops
type MoveNodesHandler struct {
	pipeline mutationPipeline
	sessions *services.SessionManager
}

// NewMoveNodesHandler creates a new handler instance
func NewMoveNodesHandler(
	repo ports.DocumentRepository,
	publisher ports.EventPublisher,
	sessions *services.SessionManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *MoveNodesHandler {
	return &MoveNodesHandler{
		pipeline: newMutationPipeline(repo, publisher, metrics, logger),
		sessions: sessions,
	}
}

// Handle relocates the dragged subtrees. Cycle-forming drops are
// rejected with the document untouched.
func (h *MoveNodesHandler) Handle(ctx context.Context, cmd commands.MoveNodesCommand) error {
	started := time.Now()

	ids, err := parseNodeIDs(cmd.NodeIDs)
	if err != nil {
		return err
	}
	targetID, err := valueobjects.NewNodeIDFromString(cmd.TargetID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	placement, err := valueobjects.ParsePlacement(cmd.Placement)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	session, err := acquire(ctx, h.sessions, cmd.OwnerID, cmd.DocumentID)
	if err != nil {
		return err
	}

	if err := session.Apply(func(doc *aggregates.Document) error {
		return doc.MoveNodes(ids, targetID, placement)
	}); err != nil {
		if pkgerrors.IsStructural(err) {
			h.pipeline.reject(ctx, "move_nodes", session.Document(), err)
		}
		return err
	}

	return h.pipeline.commit(ctx, "move_nodes", session.Document(), started)
}

func parseNodeIDs(raw []string) ([]valueobjects.NodeID, error) {
	ids := make([]valueobjects.NodeID, len(raw))
	for i, s := range raw {
		id, err := valueobjects.NewNodeIDFromString(s)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		ids[i] = id
	}
	return ids, nil
}
