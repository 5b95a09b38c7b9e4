package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/entities"
	pkgerrors "mindmap-backend/pkg/errors"
)

func TestValidateAcceptsWellFormedTree(t *testing.T) {
	root := entities.NewNode("root")
	child := entities.NewNode("child")
	child.URL = "https://example.com/page"
	root.Children = []*entities.Node{child}

	assert.NoError(t, NewTreeValidator().Validate(root))
}

func TestValidateRejectsNilRoot(t *testing.T) {
	err := NewTreeValidator().Validate(nil)
	assert.True(t, pkgerrors.IsImportFormat(err))
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	root := entities.NewNode("root")
	child := entities.NewNode("child")
	dup := &entities.Node{ID: child.ID, Text: "dup", Children: []*entities.Node{}}
	root.Children = []*entities.Node{child, dup}

	err := NewTreeValidator().Validate(root)
	require.True(t, pkgerrors.IsImportFormat(err))
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateRejectsEmptyID(t *testing.T) {
	root := entities.NewNode("root")
	root.Children = []*entities.Node{{Text: "no id", Children: []*entities.Node{}}}

	err := NewTreeValidator().Validate(root)
	assert.True(t, pkgerrors.IsImportFormat(err))
}

func TestValidateRejectsOversizedText(t *testing.T) {
	root := entities.NewNode(strings.Repeat("x", 5001))

	err := NewTreeValidator().Validate(root)
	assert.True(t, pkgerrors.IsImportFormat(err))
}

func TestValidateRejectsMalformedURL(t *testing.T) {
	root := entities.NewNode("root")
	root.URL = "javascript:alert(1)"

	err := NewTreeValidator().Validate(root)
	assert.True(t, pkgerrors.IsImportFormat(err))
}

func TestNormalizeTrimsTextAndFillsChildren(t *testing.T) {
	root := entities.NewNode("  padded  ")
	root.Children = append(root.Children, &entities.Node{ID: entities.NewNode("x").ID, Text: "leaf"})

	normalized := NewTreeValidator().Normalize(root)

	assert.Equal(t, "padded", normalized.Text)
	require.NotNil(t, normalized.Children[0].Children)
	assert.Empty(t, normalized.Children[0].Children)

	// Source tree is untouched
	assert.Equal(t, "  padded  ", root.Text)
}
