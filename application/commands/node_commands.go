package commands

import (
	"mindmap-backend/pkg/utils"
)

// UpdateNodeCommand applies partial content changes to a node. Nil
// fields are left untouched.
type UpdateNodeCommand struct {
	OwnerID    string   `json:"owner_id" validate:"required"`
	DocumentID string   `json:"document_id" validate:"required"`
	NodeID     string   `json:"node_id" validate:"required"`
	Text       *string  `json:"text,omitempty" validate:"omitempty,max=5000"`
	Image      *string  `json:"image,omitempty"`
	URL        *string  `json:"url,omitempty" validate:"omitempty,url"`
	Width      *float64 `json:"width,omitempty" validate:"omitempty,gte=0"`
}

// Validate checks the command fields
func (c UpdateNodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// AddChildCommand appends a new node under the parent
type AddChildCommand struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	ParentID   string `json:"parent_id" validate:"required"`
	Text       string `json:"text" validate:"max=5000"`
}

// Validate checks the command fields
func (c AddChildCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// AddSiblingCommand inserts a new node next to the anchor
type AddSiblingCommand struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	AnchorID   string `json:"anchor_id" validate:"required"`
	Text       string `json:"text" validate:"max=5000"`
	Placement  string `json:"placement" validate:"required,oneof=before after"`
}

// Validate checks the command fields
func (c AddSiblingCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteNodesCommand removes one or more subtrees
type DeleteNodesCommand struct {
	OwnerID    string   `json:"owner_id" validate:"required"`
	DocumentID string   `json:"document_id" validate:"required"`
	NodeIDs    []string `json:"node_ids" validate:"required,min=1,dive,required"`
}

// Validate checks the command fields
func (c DeleteNodesCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// ToggleCollapseCommand collapses or expands a node, optionally
// propagating to every descendant.
type ToggleCollapseCommand struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	NodeID     string `json:"node_id" validate:"required"`
	Collapsed  bool   `json:"collapsed"`
	Recursive  bool   `json:"recursive"`
}

// Validate checks the command fields
func (c ToggleCollapseCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// MoveNodesCommand relocates dragged subtrees to a drop target
type MoveNodesCommand struct {
	OwnerID    string   `json:"owner_id" validate:"required"`
	DocumentID string   `json:"document_id" validate:"required"`
	NodeIDs    []string `json:"node_ids" validate:"required,min=1,dive,required"`
	TargetID   string   `json:"target_id" validate:"required"`
	Placement  string   `json:"placement" validate:"required,oneof=before after inside"`
}

// Validate checks the command fields
func (c MoveNodesCommand) Validate() error {
	return utils.ValidateStruct(c)
}
