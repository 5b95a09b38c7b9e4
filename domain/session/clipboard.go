package session

import (
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
)

// Clipboard holds deep-cloned subtrees captured by copy or cut. Captured
// clones keep their original identities; identity freshening happens at
// paste time, so one capture can be pasted any number of times without
// id collisions.
type Clipboard struct {
	subtrees []*entities.Node
}

// NewClipboard creates an empty clipboard
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// Capture stores deep clones of the topmost selected subtrees in
// document order. Selecting a node together with its descendant captures
// the subtree once; the descendant selection is absorbed. An empty or
// unresolvable selection leaves the clipboard unchanged.
func (c *Clipboard) Capture(root *entities.Node, selectedIDs []valueobjects.NodeID) []*entities.Node {
	topmost := aggregates.TopmostNodes(root, selectedIDs)
	if len(topmost) == 0 {
		return nil
	}

	c.subtrees = make([]*entities.Node, len(topmost))
	for i, node := range topmost {
		c.subtrees[i] = node.Clone()
	}
	return topmost
}

// Contents returns the captured subtrees. Callers must not mutate them;
// paste clones them anyway.
func (c *Clipboard) Contents() []*entities.Node {
	return c.subtrees
}

// IsEmpty reports whether anything has been captured
func (c *Clipboard) IsEmpty() bool {
	return len(c.subtrees) == 0
}

// Clear discards the captured subtrees
func (c *Clipboard) Clear() {
	c.subtrees = nil
}
