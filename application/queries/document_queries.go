package queries

import (
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/pkg/utils"
)

// GetDocumentQuery loads a full document, tree included
type GetDocumentQuery struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
}

// Validate checks the query fields
func (q GetDocumentQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListDocumentsQuery lists the owner's documents without trees
type ListDocumentsQuery struct {
	OwnerID string `json:"owner_id" validate:"required"`
}

// Validate checks the query fields
func (q ListDocumentsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ExportDocumentQuery serializes a document's tree to an external format
type ExportDocumentQuery struct {
	OwnerID    string `json:"owner_id" validate:"required"`
	DocumentID string `json:"document_id" validate:"required"`
	Format     string `json:"format" validate:"required"`
}

// Validate checks the query fields
func (q ExportDocumentQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// DocumentView is the full read model handed to the editor on open
type DocumentView struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Root      *entities.Node        `json:"root"`
	Viewport  valueobjects.Viewport `json:"viewport"`
	NodeCount int                   `json:"node_count"`
	Version   int                   `json:"version"`
	UpdatedAt string                `json:"updated_at"`
}

// ExportResult carries an encoded tree plus its content type
type ExportResult struct {
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	Data        []byte `json:"data"`
}
