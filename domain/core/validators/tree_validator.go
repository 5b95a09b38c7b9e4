package validators

import (
	"fmt"
	"net/url"
	"strings"

	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// TreeValidator checks that a node tree, typically one parsed from an
// external import, satisfies the structural rules before it is allowed
// anywhere near a live document.
type TreeValidator struct {
	maxNodes      int
	maxTextLength int
}

// NewTreeValidator creates a validator with the default domain limits
func NewTreeValidator() *TreeValidator {
	cfg := config.DefaultDomainConfig()
	return &TreeValidator{
		maxNodes:      cfg.MaxNodesPerDocument,
		maxTextLength: cfg.MaxTextLength,
	}
}

// Validate walks the tree and returns an import-format error describing
// the first rule violation, or nil when the tree is acceptable.
func (v *TreeValidator) Validate(root *entities.Node) error {
	if root == nil {
		return pkgerrors.NewImportFormatError("tree has no root node", nil)
	}

	seen := make(map[valueobjects.NodeID]struct{})
	count := 0
	var violation error

	root.Walk(func(n *entities.Node) bool {
		count++
		if count > v.maxNodes {
			violation = pkgerrors.NewImportFormatError(
				fmt.Sprintf("tree exceeds the %d node limit", v.maxNodes), nil)
			return false
		}
		if n.ID.IsZero() {
			violation = pkgerrors.NewImportFormatError("node has an empty id", nil)
			return false
		}
		if _, dup := seen[n.ID]; dup {
			violation = pkgerrors.NewImportFormatError(
				fmt.Sprintf("duplicate node id %q", n.ID.String()), nil)
			return false
		}
		seen[n.ID] = struct{}{}

		if len(n.Text) > v.maxTextLength {
			violation = pkgerrors.NewImportFormatError(
				fmt.Sprintf("node %q text exceeds %d characters", n.ID.String(), v.maxTextLength), nil)
			return false
		}
		if n.URL != "" && !isValidURL(n.URL) {
			violation = pkgerrors.NewImportFormatError(
				fmt.Sprintf("node %q carries a malformed url", n.ID.String()), nil)
			return false
		}
		if n.Width < 0 {
			violation = pkgerrors.NewImportFormatError(
				fmt.Sprintf("node %q has a negative width", n.ID.String()), nil)
			return false
		}
		return true
	})

	return violation
}

// Normalize returns a copy of the tree with nil child slices replaced by
// empty ones and surrounding whitespace trimmed from text. Codecs run
// this before validation so hand-edited files do not trip on formatting.
func (v *TreeValidator) Normalize(root *entities.Node) *entities.Node {
	if root == nil {
		return nil
	}
	dup := *root
	dup.Text = strings.TrimSpace(root.Text)
	dup.Children = make([]*entities.Node, len(root.Children))
	for i, child := range root.Children {
		dup.Children[i] = v.Normalize(child)
	}
	return &dup
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
