package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	cmdhandlers "mindmap-backend/application/commands/handlers"
	"mindmap-backend/application/ports"
	"mindmap-backend/application/queries"
	querybus "mindmap-backend/application/queries/bus"
	"mindmap-backend/pkg/auth"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
)

// maxImportBytes bounds import payloads before they reach a codec
const maxImportBytes = 10 << 20

// DocumentHandler handles document lifecycle HTTP requests. Mutations
// without a response body go through the command bus; creation and
// viewport gestures return state so they use the typed handlers
// directly.
type DocumentHandler struct {
	commands *bus.CommandBus
	queries  *querybus.QueryBus
	create   *cmdhandlers.CreateDocumentHandler
	gestures *cmdhandlers.ViewportGestureHandler
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	create *cmdhandlers.CreateDocumentHandler,
	gestures *cmdhandlers.ViewportGestureHandler,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		commands: commandBus,
		queries:  queryBus,
		create:   create,
		gestures: gestures,
		errors:   errorHandler,
		logger:   logger,
	}
}

// CreateDocumentRequest represents the request body for creating a document
type CreateDocumentRequest struct {
	Name string `json:"name"`
}

// RenameDocumentRequest represents the request body for renaming a document
type RenameDocumentRequest struct {
	Name string `json:"name"`
}

// SaveViewportRequest represents the request body for a viewport update
type SaveViewportRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// ViewportGestureRequest carries one viewport gesture. The payload
// fields a gesture needs are documented on ViewportGestureCommand.
type ViewportGestureRequest struct {
	Gesture string                 `json:"gesture"`
	Cursor  *commands.PointPayload `json:"cursor,omitempty"`
	Scale   float64                `json:"scale,omitempty"`
	Delta   *commands.PointPayload `json:"delta,omitempty"`
	Content *commands.RectPayload  `json:"content,omitempty"`
	Root    *commands.RectPayload  `json:"root,omitempty"`
	Window  *commands.RectPayload  `json:"window,omitempty"`
	Before  *commands.PointPayload `json:"before,omitempty"`
	After   *commands.PointPayload `json:"after,omitempty"`
}

// ListDocuments handles GET /documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queries.Ask(r.Context(), queries.ListDocumentsQuery{OwnerID: user.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	summaries, ok := result.([]ports.DocumentSummary)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected query result type"))
		return
	}

	page := common.ParsePageRequest(r)
	start := page.Offset()
	if start > len(summaries) {
		start = len(summaries)
	}
	end := start + page.PageSize
	if end > len(summaries) {
		end = len(summaries)
	}

	common.RespondPage(w, http.StatusOK, summaries[start:end], common.NewPaginationInfo(page, len(summaries)))
}

// CreateDocument handles POST /documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	cmd := commands.CreateDocumentCommand{
		OwnerID: user.UserID,
		Name:    req.Name,
	}
	if err := cmd.Validate(); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	doc, err := h.create.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      doc.ID().String(),
		"name":    doc.Name(),
		"root_id": doc.RootID().String(),
	})
}

// GetDocument handles GET /documents/{documentID}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queries.Ask(r.Context(), queries.GetDocumentQuery{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// RenameDocument handles PUT /documents/{documentID}
func (h *DocumentHandler) RenameDocument(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req RenameDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	err = h.commands.Send(r.Context(), commands.RenameDocumentCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		Name:       req.Name,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// DeleteDocument handles DELETE /documents/{documentID}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	err = h.commands.Send(r.Context(), commands.DeleteDocumentCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// ImportDocument handles POST /documents/{documentID}/import?format=json
func (h *DocumentHandler) ImportDocument(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("failed to read request body"))
		return
	}

	err = h.commands.Send(r.Context(), commands.ImportDocumentCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		Format:     format,
		Data:       data,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// ExportDocument handles GET /documents/{documentID}/export?format=markdown
func (h *DocumentHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	raw, err := h.queries.Ask(r.Context(), queries.ExportDocumentQuery{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		Format:     format,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, ok := raw.(*queries.ExportResult)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("unexpected query result type"))
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

// Undo handles POST /documents/{documentID}/undo
func (h *DocumentHandler) Undo(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	err = h.commands.Send(r.Context(), commands.UndoCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// SaveViewport handles PUT /documents/{documentID}/viewport
func (h *DocumentHandler) SaveViewport(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req SaveViewportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	err = h.commands.Send(r.Context(), commands.SaveViewportCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		X:          req.X,
		Y:          req.Y,
		Scale:      req.Scale,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// ViewportGesture handles POST /documents/{documentID}/viewport/gestures.
// The gesture math (cursor-anchored zoom, pan, fit, recenter, collapse
// compensation) runs server side and the stored transform comes back.
func (h *DocumentHandler) ViewportGesture(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req ViewportGestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	cmd := commands.ViewportGestureCommand{
		OwnerID:    user.UserID,
		DocumentID: chi.URLParam(r, "documentID"),
		Gesture:    req.Gesture,
		Cursor:     req.Cursor,
		Scale:      req.Scale,
		Delta:      req.Delta,
		Content:    req.Content,
		Root:       req.Root,
		Window:     req.Window,
		Before:     req.Before,
		After:      req.After,
	}
	if err := cmd.Validate(); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	viewport, err := h.gestures.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"x":     viewport.Position.X,
		"y":     viewport.Position.Y,
		"scale": viewport.Scale,
	})
}
