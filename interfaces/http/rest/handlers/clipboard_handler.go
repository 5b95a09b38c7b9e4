package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	cmdhandlers "mindmap-backend/application/commands/handlers"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/pkg/auth"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
)

// ClipboardHandler handles clipboard and selection HTTP requests.
// Paste and selection return state to the client so they use the typed
// handlers; copy and cut go through the command bus.
type ClipboardHandler struct {
	commands  *bus.CommandBus
	clipboard *cmdhandlers.ClipboardHandler
	selection *cmdhandlers.SelectionHandler
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewClipboardHandler creates a new clipboard handler
func NewClipboardHandler(
	commandBus *bus.CommandBus,
	clipboard *cmdhandlers.ClipboardHandler,
	selection *cmdhandlers.SelectionHandler,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ClipboardHandler {
	return &ClipboardHandler{
		commands:  commandBus,
		clipboard: clipboard,
		selection: selection,
		errors:    errorHandler,
		logger:    logger,
	}
}

// ClipboardRequest names the subtrees to copy or cut. Empty node_ids
// falls back to the live selection.
type ClipboardRequest struct {
	NodeIDs []string `json:"node_ids,omitempty"`
}

// PasteRequest names the paste anchor
type PasteRequest struct {
	AnchorID string `json:"anchor_id,omitempty"`
}

// SelectRequest carries a pointer selection intent. Mode mirrors the
// pointer modifiers: replace (default), add (shift), remove (alt) or
// toggle.
type SelectRequest struct {
	NodeIDs []string `json:"node_ids"`
	Mode    string   `json:"mode,omitempty"`
}

// MarqueeRequest carries the marquee rectangle, the client-measured
// node bounds it is tested against, and the release mode: replace
// (default), add (shift) or remove (alt).
type MarqueeRequest struct {
	Marquee commands.RectPayload            `json:"marquee"`
	Bounds  map[string]commands.RectPayload `json:"bounds"`
	Mode    string                          `json:"mode,omitempty"`
}

// Copy handles POST /documents/{documentID}/clipboard/copy
func (h *ClipboardHandler) Copy(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req ClipboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	err = h.commands.Send(r.Context(), commands.CopyCommand{
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

// Cut handles POST /documents/{documentID}/clipboard/cut
func (h *ClipboardHandler) Cut(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req ClipboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	err = h.commands.Send(r.Context(), commands.CutCommand{
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

// Paste handles POST /documents/{documentID}/clipboard/paste
func (h *ClipboardHandler) Paste(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req PasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	cmd := commands.PasteCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		AnchorID:   req.AnchorID,
	}
	if err := cmd.Validate(); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	pasted, err := h.clipboard.HandlePaste(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"pasted": pasted,
	})
}

// Select handles PUT /documents/{documentID}/selection
func (h *ClipboardHandler) Select(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	cmd := commands.SelectCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		NodeIDs:    req.NodeIDs,
		Mode:       req.Mode,
	}
	if err := cmd.Validate(); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	selected, err := h.selection.HandleSelect(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"selected": nodeIDStrings(selected),
	})
}

// Marquee handles POST /documents/{documentID}/selection/marquee
func (h *ClipboardHandler) Marquee(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req MarqueeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	cmd := commands.MarqueeSelectCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		Marquee:    req.Marquee,
		Bounds:     req.Bounds,
		Mode:       req.Mode,
	}
	if err := cmd.Validate(); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	selected, err := h.selection.HandleMarquee(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"selected": nodeIDStrings(selected),
	})
}

func nodeIDStrings(ids []valueobjects.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
