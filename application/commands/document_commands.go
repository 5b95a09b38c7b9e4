package commands

import (
	"mindmap-backend/pkg/utils"
)

// CreateDocumentCommand creates a new empty document with a single
// placeholder root node.
type CreateDocumentCommand struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Name    string `json:"name" validate:"max=255"`
}

// Validate checks the command fields
func (c CreateDocumentCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// RenameDocumentCommand changes a document's display name
type RenameDocumentCommand struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	Name       string `json:"name" validate:"required,max=255"`
}

// Validate checks the command fields
func (c RenameDocumentCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteDocumentCommand removes a document permanently
type DeleteDocumentCommand struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
}

// Validate checks the command fields
func (c DeleteDocumentCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// ImportDocumentCommand replaces a document's tree with one parsed from
// an external format. The document's root identity is preserved.
type ImportDocumentCommand struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	Format     string `json:"format" validate:"required"`
	Data       []byte `json:"data" validate:"required"`
}

// Validate checks the command fields
func (c ImportDocumentCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SaveViewportCommand records the viewport transform after a pan or zoom
// gesture. Writes are debounced; only the latest transform is persisted.
type SaveViewportCommand struct {
	OwnerID    string  `json:"owner_id" validate:"required"`
	DocumentID string  `json:"document_id" validate:"required"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Scale      float64 `json:"scale" validate:"required,gt=0"`
}

// Validate checks the command fields
func (c SaveViewportCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// UndoCommand restores the most recent history snapshot
type UndoCommand struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
}

// Validate checks the command fields
func (c UndoCommand) Validate() error {
	return utils.ValidateStruct(c)
}
