package commands

import (
	"mindmap-backend/pkg/utils"
)

// CopyCommand captures the selected subtrees onto the session clipboard.
// Empty NodeIDs falls back to the live selection.
type CopyCommand struct {
	OwnerID    string   `json:"owner_id" validate:"required"`
	DocumentID string   `json:"document_id" validate:"required"`
	NodeIDs    []string `json:"node_ids" validate:"omitempty,dive,required"`
}

// Validate checks the command fields
func (c CopyCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CutCommand captures the selected subtrees and deletes them in one
// undoable step.
type CutCommand struct {
	OwnerID    string   `json:"owner_id" validate:"required"`
	DocumentID string   `json:"document_id" validate:"required"`
	NodeIDs    []string `json:"node_ids" validate:"omitempty,dive,required"`
}

// Validate checks the command fields
func (c CutCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// PasteCommand instantiates the clipboard under the anchor with fresh
// node identities. An empty anchor falls back to the most recently
// selected node, or the root when nothing is selected.
type PasteCommand struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	AnchorID   string `json:"anchor_id"`
}

// Validate checks the command fields
func (c PasteCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Selection modes, mirroring the pointer modifiers: replace for an
// unmodified click, add for shift, remove for alt, toggle for a
// modifier-free multi-select UI.
const (
	SelectionModeReplace = "replace"
	SelectionModeAdd     = "add"
	SelectionModeRemove  = "remove"
	SelectionModeToggle  = "toggle"
)

// SelectCommand changes the session selection. The default mode
// replaces it; add extends and never deselects, remove subtracts and
// never selects.
type SelectCommand struct {
	OwnerID    string   `json:"owner_id" validate:"required"`
	DocumentID string   `json:"document_id" validate:"required"`
	NodeIDs    []string `json:"node_ids" validate:"omitempty,dive,required"`
	Mode       string   `json:"mode" validate:"omitempty,oneof=replace add remove toggle"`
}

// Validate checks the command fields
func (c SelectCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// MarqueeSelectCommand resolves every node whose client-measured bounds
// intersect the marquee rectangle and replaces, extends or reduces the
// selection with the hit set per the mode.
type MarqueeSelectCommand struct {
	OwnerID    string                 `json:"owner_id" validate:"required"`
	DocumentID string                 `json:"document_id" validate:"required"`
	Marquee    RectPayload            `json:"marquee" validate:"required"`
	Bounds     map[string]RectPayload `json:"bounds" validate:"required"`
	Mode       string                 `json:"mode" validate:"omitempty,oneof=replace add remove"`
}

// RectPayload is the wire shape of a rectangle in canvas coordinates
type RectPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

// Validate checks the command fields
func (c MarqueeSelectCommand) Validate() error {
	return utils.ValidateStruct(c)
}
