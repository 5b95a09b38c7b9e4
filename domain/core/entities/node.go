package entities

import (
	"mindmap-backend/domain/core/valueobjects"
)

// Node is a single topic in the mind map tree. A document is a tree of
// nodes rooted at a node whose identity never changes.
//
// The tree is treated as an immutable value: every structural or content
// operation returns a new root, rebuilding only the path from the affected
// node up to the root and sharing every untouched subtree. Callers must
// not mutate a tree reachable from a committed document.
type Node struct {
	ID          valueobjects.NodeID `json:"id"`
	Text        string              `json:"text"`
	Image       string              `json:"image,omitempty"`
	URL         string              `json:"url,omitempty"`
	Width       float64             `json:"width,omitempty"`
	IsCollapsed bool                `json:"isCollapsed,omitempty"`
	Children    []*Node             `json:"children"`
}

// NewNode creates a leaf node with a fresh identity
func NewNode(text string) *Node {
	return &Node{
		ID:       valueobjects.NewNodeID(),
		Text:     text,
		Children: []*Node{},
	}
}

// shallowCopy duplicates the node itself, keeping child pointers shared
func (n *Node) shallowCopy() *Node {
	dup := *n
	dup.Children = make([]*Node, len(n.Children))
	copy(dup.Children, n.Children)
	return &dup
}

// Clone returns a deep copy of the subtree, preserving identities.
// Used for history snapshots and clipboard capture.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	dup := *n
	dup.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		dup.Children[i] = child.Clone()
	}
	return &dup
}

// CloneWithFreshIDs returns a deep copy of the subtree in which every
// node, including the subtree root, carries a brand-new identity. All
// other attributes and child order are preserved. Pasting clipboard
// content through this guarantees pasted ids never collide with existing
// or previously pasted nodes.
func (n *Node) CloneWithFreshIDs() *Node {
	if n == nil {
		return nil
	}
	dup := *n
	dup.ID = valueobjects.NewNodeID()
	dup.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		dup.Children[i] = child.CloneWithFreshIDs()
	}
	return &dup
}

// Find returns the first node with the given id in depth-first order,
// or nil when the id is not present.
func (n *Node) Find(id valueobjects.NodeID) *Node {
	if n == nil {
		return nil
	}
	if n.ID.Equals(id) {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// ParentOf returns the parent of the node with the given id, or nil when
// the id is the root or not present.
func (n *Node) ParentOf(id valueobjects.NodeID) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.ID.Equals(id) {
			return n
		}
		if p := child.ParentOf(id); p != nil {
			return p
		}
	}
	return nil
}

// Update returns a new tree in which the node with the given id has been
// replaced by a copy passed through mutate. Ancestors of the target are
// rebuilt; unrelated subtrees are shared. An absent id yields a tree
// value-identical to the receiver, never an error.
func (n *Node) Update(id valueobjects.NodeID, mutate func(*Node)) *Node {
	if n == nil {
		return nil
	}
	if n.ID.Equals(id) {
		dup := n.shallowCopy()
		mutate(dup)
		return dup
	}
	for i, child := range n.Children {
		updated := child.Update(id, mutate)
		if updated != child {
			dup := n.shallowCopy()
			dup.Children[i] = updated
			return dup
		}
	}
	return n
}

// Delete removes the node with the given id from its parent's children
// and returns the new root. Deleting the passed root itself returns nil;
// rejecting root deletion is document policy, not a tree concern. An
// absent id returns the receiver unchanged.
func (n *Node) Delete(id valueobjects.NodeID) *Node {
	root, _ := n.Detach(id)
	return root
}

// Detach removes the subtree with the given id and returns both the new
// root and the detached subtree. Detaching the root returns (nil, n).
// An absent id returns (n, nil).
func (n *Node) Detach(id valueobjects.NodeID) (*Node, *Node) {
	if n == nil {
		return nil, nil
	}
	if n.ID.Equals(id) {
		return nil, n
	}
	for i, child := range n.Children {
		if child.ID.Equals(id) {
			dup := n.shallowCopy()
			dup.Children = append(dup.Children[:i], dup.Children[i+1:]...)
			return dup, child
		}
		if newChild, detached := child.Detach(id); detached != nil {
			dup := n.shallowCopy()
			dup.Children[i] = newChild
			return dup, detached
		}
	}
	return n, nil
}

// AddChild appends child to the node with parentID and returns the new
// root. The parent's collapsed flag is cleared so the new child is
// immediately visible. An absent parent id is a no-op.
func (n *Node) AddChild(parentID valueobjects.NodeID, child *Node) *Node {
	return n.Update(parentID, func(parent *Node) {
		parent.Children = append(parent.Children, child)
		parent.IsCollapsed = false
	})
}

// InsertSibling splices node immediately before or after the anchor in
// the anchor's parent's children. Inserting relative to the root (which
// has no parent) or to an absent anchor is a no-op.
func (n *Node) InsertSibling(anchorID valueobjects.NodeID, node *Node, placement valueobjects.Placement) *Node {
	parent := n.ParentOf(anchorID)
	if parent == nil {
		return n
	}
	return n.Update(parent.ID, func(p *Node) {
		idx := -1
		for i, child := range p.Children {
			if child.ID.Equals(anchorID) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		if placement == valueobjects.PlacementAfter {
			idx++
		}
		p.Children = append(p.Children, nil)
		copy(p.Children[idx+1:], p.Children[idx:])
		p.Children[idx] = node
	})
}

// SetCollapsed sets the collapsed flag on the target node; when recursive
// is true the same flag propagates to every descendant.
func (n *Node) SetCollapsed(id valueobjects.NodeID, collapsed, recursive bool) *Node {
	return n.Update(id, func(target *Node) {
		target.IsCollapsed = collapsed
		if recursive {
			for i, child := range target.Children {
				target.Children[i] = setCollapsedDeep(child, collapsed)
			}
		}
	})
}

func setCollapsedDeep(n *Node, collapsed bool) *Node {
	dup := n.shallowCopy()
	dup.IsCollapsed = collapsed
	for i, child := range dup.Children {
		dup.Children[i] = setCollapsedDeep(child, collapsed)
	}
	return dup
}

// IsDescendant reports whether nodeID is the same as, or a strict
// descendant of, the node with ancestorID.
func (n *Node) IsDescendant(ancestorID, nodeID valueobjects.NodeID) bool {
	ancestor := n.Find(ancestorID)
	if ancestor == nil {
		return false
	}
	return ancestor.Find(nodeID) != nil
}

// Walk visits the subtree depth-first. Returning false from visit prunes
// descent into the node's children.
func (n *Node) Walk(visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// Count returns the number of nodes in the subtree
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// CollectIDs returns the identity set of the subtree
func (n *Node) CollectIDs() map[valueobjects.NodeID]struct{} {
	ids := make(map[valueobjects.NodeID]struct{})
	n.Walk(func(node *Node) bool {
		ids[node.ID] = struct{}{}
		return true
	})
	return ids
}

// Equal compares two subtrees by value, including identities and order
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if !n.ID.Equals(other.ID) ||
		n.Text != other.Text ||
		n.Image != other.Image ||
		n.URL != other.URL ||
		n.Width != other.Width ||
		n.IsCollapsed != other.IsCollapsed ||
		len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}
