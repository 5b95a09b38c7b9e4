package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	cmdhandlers "mindmap-backend/application/commands/handlers"
	"mindmap-backend/pkg/auth"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
)

// NodeHandler handles node mutation HTTP requests. Insertions return
// the created node so they use the typed handler; everything else goes
// through the command bus.
type NodeHandler struct {
	commands *bus.CommandBus
	add      *cmdhandlers.AddNodeHandler
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	commandBus *bus.CommandBus,
	add *cmdhandlers.AddNodeHandler,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		commands: commandBus,
		add:      add,
		errors:   errorHandler,
		logger:   logger,
	}
}

// UpdateNodeRequest represents a partial node update
type UpdateNodeRequest struct {
	Text  *string  `json:"text,omitempty"`
	Image *string  `json:"image,omitempty"`
	URL   *string  `json:"url,omitempty"`
	Width *float64 `json:"width,omitempty"`
}

// AddNodeRequest represents a child or sibling insertion
type AddNodeRequest struct {
	ParentID  string `json:"parent_id,omitempty"`
	AnchorID  string `json:"anchor_id,omitempty"`
	Text      string `json:"text"`
	Placement string `json:"placement,omitempty"`
}

// DeleteNodesRequest represents a bulk subtree deletion
type DeleteNodesRequest struct {
	NodeIDs []string `json:"node_ids"`
}

// ToggleCollapseRequest represents a collapse or expand
type ToggleCollapseRequest struct {
	Collapsed bool `json:"collapsed"`
	Recursive bool `json:"recursive"`
}

// MoveNodesRequest represents a drag-to-reparent drop
type MoveNodesRequest struct {
	NodeIDs   []string `json:"node_ids"`
	TargetID  string   `json:"target_id"`
	Placement string   `json:"placement"`
}

// UpdateNode handles PATCH /documents/{documentID}/nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req UpdateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	err = h.commands.Send(r.Context(), commands.UpdateNodeCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		NodeID:     chi.URLParam(r, "nodeID"),
		Text:       req.Text,
		Image:      req.Image,
		URL:        req.URL,
		Width:      req.Width,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// AddNode handles POST /documents/{documentID}/nodes.
// With a parent_id the new node becomes its last child; with an
// anchor_id and placement it becomes the anchor's sibling.
func (h *NodeHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req AddNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	documentID := chi.URLParam(r, "documentID")
	switch {
	case req.ParentID != "":
		cmd := commands.AddChildCommand{
			OwnerID:    user.UserID,
			DocumentID: documentID,
			ParentID:   req.ParentID,
			Text:       req.Text,
		}
		if err := cmd.Validate(); err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		node, err := h.add.HandleAddChild(r.Context(), cmd)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusCreated, node)
	case req.AnchorID != "":
		cmd := commands.AddSiblingCommand{
			OwnerID:    user.UserID,
			DocumentID: documentID,
			AnchorID:   req.AnchorID,
			Text:       req.Text,
			Placement:  req.Placement,
		}
		if err := cmd.Validate(); err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		node, err := h.add.HandleAddSibling(r.Context(), cmd)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusCreated, node)
	default:
		h.errors.Handle(w, r, pkgerrors.NewValidationError("either parent_id or anchor_id is required"))
	}
}

// DeleteNode handles DELETE /documents/{documentID}/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	err = h.commands.Send(r.Context(), commands.DeleteNodesCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		NodeIDs:    []string{chi.URLParam(r, "nodeID")},
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// BulkDeleteNodes handles POST /documents/{documentID}/nodes/bulk-delete
func (h *NodeHandler) BulkDeleteNodes(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req DeleteNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	err = h.commands.Send(r.Context(), commands.DeleteNodesCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		NodeIDs:    req.NodeIDs,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// ToggleCollapse handles POST /documents/{documentID}/nodes/{nodeID}/collapse
func (h *NodeHandler) ToggleCollapse(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req ToggleCollapseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	err = h.commands.Send(r.Context(), commands.ToggleCollapseCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		NodeID:     chi.URLParam(r, "nodeID"),
		Collapsed:  req.Collapsed,
		Recursive:  req.Recursive,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// MoveNodes handles POST /documents/{documentID}/nodes/move
func (h *NodeHandler) MoveNodes(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req MoveNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	err = h.commands.Send(r.Context(), commands.MoveNodesCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		NodeIDs:    req.NodeIDs,
		TargetID:   req.TargetID,
		Placement:  req.Placement,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}
