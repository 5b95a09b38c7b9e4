// Package session holds the per-editor, per-document editing state that
// lives alongside a document while it is open: selection, clipboard,
// undo history and the viewport transform. None of it is persisted with
// the tree except the viewport, and none of it survives the session.
package session

import (
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
)

// Selection tracks which nodes are currently selected. The most
// recently added id is the primary selection, the one single-node
// operations such as paste anchor on.
type Selection struct {
	order []valueobjects.NodeID
	index map[valueobjects.NodeID]struct{}
}

// NewSelection creates an empty selection
func NewSelection() *Selection {
	return &Selection{
		order: []valueobjects.NodeID{},
		index: map[valueobjects.NodeID]struct{}{},
	}
}

// Replace discards the current selection and selects exactly the given ids
func (s *Selection) Replace(ids ...valueobjects.NodeID) {
	s.order = s.order[:0]
	s.index = make(map[valueobjects.NodeID]struct{}, len(ids))
	for _, id := range ids {
		s.add(id)
	}
}

// Add extends the selection with the given id. Adding never deselects.
func (s *Selection) Add(id valueobjects.NodeID) {
	s.add(id)
}

// Remove drops the id from the selection. Removing an unselected id is
// a no-op, never a select.
func (s *Selection) Remove(id valueobjects.NodeID) {
	s.remove(id)
}

// Toggle adds the id when absent and removes it when present
func (s *Selection) Toggle(id valueobjects.NodeID) {
	if s.Contains(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.Replace()
}

// Contains reports whether the id is selected
func (s *Selection) Contains(id valueobjects.NodeID) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns the selected ids in insertion order
func (s *Selection) IDs() []valueobjects.NodeID {
	ids := make([]valueobjects.NodeID, len(s.order))
	copy(ids, s.order)
	return ids
}

// Primary returns the most recently selected id. The bool is false when
// the selection is empty.
func (s *Selection) Primary() (valueobjects.NodeID, bool) {
	if len(s.order) == 0 {
		return valueobjects.NodeID{}, false
	}
	return s.order[len(s.order)-1], true
}

// Len returns the number of selected nodes
func (s *Selection) Len() int {
	return len(s.order)
}

// MarqueeMode names what a marquee release does with the hit set
type MarqueeMode int

const (
	// MarqueeReplace discards the prior selection (no modifier)
	MarqueeReplace MarqueeMode = iota
	// MarqueeAdd unions the hit set into the selection (shift)
	MarqueeAdd
	// MarqueeRemove subtracts the hit set from the selection (alt)
	MarqueeRemove
)

// ParseMarqueeMode maps a wire mode to its MarqueeMode. Anything
// unrecognized is the unmodified gesture, a replace.
func ParseMarqueeMode(mode string) MarqueeMode {
	switch mode {
	case "add":
		return MarqueeAdd
	case "remove":
		return MarqueeRemove
	default:
		return MarqueeReplace
	}
}

// ApplyMarquee resolves every node whose measured bounds intersect the
// marquee rectangle and applies the hit set per the mode: replace the
// selection, union into it, or subtract from it. Bounds come from the
// client, which is the only party that knows rendered node geometry.
// Nodes without reported bounds are never matched.
func (s *Selection) ApplyMarquee(marquee valueobjects.Rect, bounds map[valueobjects.NodeID]valueobjects.Rect, root *entities.Node, mode MarqueeMode) {
	var hit []valueobjects.NodeID
	// Walk the tree rather than the bounds map so the resulting
	// selection order is document order.
	root.Walk(func(n *entities.Node) bool {
		if rect, ok := bounds[n.ID]; ok && marquee.Intersects(rect) {
			hit = append(hit, n.ID)
		}
		return true
	})

	switch mode {
	case MarqueeAdd:
		for _, id := range hit {
			s.add(id)
		}
	case MarqueeRemove:
		for _, id := range hit {
			s.remove(id)
		}
	default:
		s.Replace(hit...)
	}
}

// Prune drops selected ids that no longer exist in the tree. Called
// after every structural mutation so the selection never points at
// deleted nodes.
func (s *Selection) Prune(root *entities.Node) {
	kept := s.order[:0]
	for _, id := range s.order {
		if root.Find(id) != nil {
			kept = append(kept, id)
		} else {
			delete(s.index, id)
		}
	}
	s.order = kept
}

func (s *Selection) add(id valueobjects.NodeID) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.order = append(s.order, id)
	s.index[id] = struct{}{}
}

func (s *Selection) remove(id valueobjects.NodeID) {
	delete(s.index, id)
	for i, existing := range s.order {
		if existing.Equals(id) {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
