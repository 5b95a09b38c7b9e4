package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/valueobjects"
)

// buildTree returns a small fixture:
//
//	root
//	├── a
//	│   ├── a1
//	│   └── a2
//	└── b
func buildTree() (root, a, a1, a2, b *Node) {
	a1 = NewNode("a1")
	a2 = NewNode("a2")
	a = NewNode("a")
	a.Children = []*Node{a1, a2}
	b = NewNode("b")
	root = NewNode("root")
	root.Children = []*Node{a, b}
	return
}

func TestFindDepthFirst(t *testing.T) {
	root, a, a1, _, b := buildTree()

	assert.Same(t, a, root.Find(a.ID))
	assert.Same(t, a1, root.Find(a1.ID))
	assert.Same(t, b, root.Find(b.ID))
	assert.Same(t, root, root.Find(root.ID))
	assert.Nil(t, root.Find(valueobjects.NewNodeID()))
}

func TestUpdateRebuildsPathAndSharesSiblings(t *testing.T) {
	root, a, a1, a2, b := buildTree()

	updated := root.Update(a1.ID, func(n *Node) {
		n.Text = "renamed"
	})

	// Path to the target is rebuilt
	assert.NotSame(t, root, updated)
	assert.NotSame(t, a, updated.Children[0])
	assert.Equal(t, "renamed", updated.Find(a1.ID).Text)

	// Untouched subtrees are shared, and the original is untouched
	assert.Same(t, b, updated.Children[1])
	assert.Same(t, a2, updated.Children[0].Children[1])
	assert.Equal(t, "a1", root.Find(a1.ID).Text)
}

func TestUpdateAbsentIDIsNoOp(t *testing.T) {
	root, _, _, _, _ := buildTree()

	updated := root.Update(valueobjects.NewNodeID(), func(n *Node) {
		n.Text = "should never run"
	})

	assert.Same(t, root, updated)
	assert.True(t, root.Equal(updated))
}

func TestDelete(t *testing.T) {
	root, a, a1, _, b := buildTree()

	t.Run("removes node from parent", func(t *testing.T) {
		updated := root.Delete(a1.ID)
		require.NotNil(t, updated)
		assert.Nil(t, updated.Find(a1.ID))
		assert.Len(t, updated.Find(a.ID).Children, 1)
		// Original tree still holds the node
		assert.NotNil(t, root.Find(a1.ID))
	})

	t.Run("deleting the passed root returns nil", func(t *testing.T) {
		assert.Nil(t, root.Delete(root.ID))
	})

	t.Run("absent id is a no-op", func(t *testing.T) {
		updated := root.Delete(valueobjects.NewNodeID())
		assert.Same(t, root, updated)
	})

	t.Run("removes whole subtree", func(t *testing.T) {
		updated := root.Delete(a.ID)
		assert.Nil(t, updated.Find(a1.ID))
		assert.NotNil(t, updated.Find(b.ID))
	})
}

func TestDetachReturnsSubtree(t *testing.T) {
	root, a, a1, _, _ := buildTree()

	newRoot, detached := root.Detach(a.ID)
	require.NotNil(t, detached)
	assert.True(t, detached.ID.Equals(a.ID))
	assert.NotNil(t, detached.Find(a1.ID))
	assert.Nil(t, newRoot.Find(a.ID))
}

func TestCloneWithFreshIDs(t *testing.T) {
	root, _, _, _, _ := buildTree()
	root.Find(root.Children[0].ID).Width = 240

	clone := root.CloneWithFreshIDs()

	// Same shape and content
	require.Equal(t, root.Count(), clone.Count())
	assert.Equal(t, root.Text, clone.Text)
	assert.Equal(t, root.Children[0].Text, clone.Children[0].Text)
	assert.Equal(t, root.Children[0].Width, clone.Children[0].Width)
	assert.Equal(t, len(root.Children[0].Children), len(clone.Children[0].Children))

	// Disjoint identity sets
	originalIDs := root.CollectIDs()
	for id := range clone.CollectIDs() {
		_, overlap := originalIDs[id]
		assert.False(t, overlap, "clone shares id %s with source", id)
	}

	// Two clones are also disjoint from each other
	second := root.CloneWithFreshIDs()
	for id := range second.CollectIDs() {
		_, overlap := clone.CollectIDs()[id]
		assert.False(t, overlap)
	}
}

func TestAddChildClearsCollapsed(t *testing.T) {
	root, a, _, _, _ := buildTree()
	root = root.Update(a.ID, func(n *Node) { n.IsCollapsed = true })

	child := NewNode("new child")
	updated := root.AddChild(a.ID, child)

	parent := updated.Find(a.ID)
	require.NotNil(t, parent)
	assert.False(t, parent.IsCollapsed)
	assert.Same(t, child, parent.Children[len(parent.Children)-1])
}

func TestInsertSibling(t *testing.T) {
	root, a, a1, a2, _ := buildTree()

	t.Run("before", func(t *testing.T) {
		node := NewNode("x")
		updated := root.InsertSibling(a2.ID, node, valueobjects.PlacementBefore)
		children := updated.Find(a.ID).Children
		require.Len(t, children, 3)
		assert.True(t, children[0].ID.Equals(a1.ID))
		assert.True(t, children[1].ID.Equals(node.ID))
		assert.True(t, children[2].ID.Equals(a2.ID))
	})

	t.Run("after", func(t *testing.T) {
		node := NewNode("y")
		updated := root.InsertSibling(a1.ID, node, valueobjects.PlacementAfter)
		children := updated.Find(a.ID).Children
		require.Len(t, children, 3)
		assert.True(t, children[1].ID.Equals(node.ID))
	})

	t.Run("root anchor is a no-op", func(t *testing.T) {
		updated := root.InsertSibling(root.ID, NewNode("z"), valueobjects.PlacementAfter)
		assert.Same(t, root, updated)
	})
}

func TestSetCollapsed(t *testing.T) {
	root, a, a1, a2, _ := buildTree()

	t.Run("single node", func(t *testing.T) {
		updated := root.SetCollapsed(a.ID, true, false)
		assert.True(t, updated.Find(a.ID).IsCollapsed)
		assert.False(t, updated.Find(a1.ID).IsCollapsed)
	})

	t.Run("recursive", func(t *testing.T) {
		updated := root.SetCollapsed(a.ID, true, true)
		assert.True(t, updated.Find(a.ID).IsCollapsed)
		assert.True(t, updated.Find(a1.ID).IsCollapsed)
		assert.True(t, updated.Find(a2.ID).IsCollapsed)

		expanded := updated.SetCollapsed(a.ID, false, true)
		assert.False(t, expanded.Find(a1.ID).IsCollapsed)
	})
}

func TestIsDescendant(t *testing.T) {
	root, a, a1, _, b := buildTree()

	assert.True(t, root.IsDescendant(a.ID, a1.ID))
	assert.True(t, root.IsDescendant(a.ID, a.ID), "a node is its own descendant for cycle checks")
	assert.True(t, root.IsDescendant(root.ID, b.ID))
	assert.False(t, root.IsDescendant(a.ID, b.ID))
	assert.False(t, root.IsDescendant(a1.ID, a.ID))
}

func TestWalkPrunesOnFalse(t *testing.T) {
	root, a, _, _, b := buildTree()

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Text)
		// Do not descend into a's subtree
		return !n.ID.Equals(a.ID)
	})

	assert.Equal(t, []string{"root", "a", "b"}, visited)
	_ = b
}

func TestCloneIsDeep(t *testing.T) {
	root, _, a1, _, _ := buildTree()

	snapshot := root.Clone()
	mutated := root.Update(a1.ID, func(n *Node) { n.Text = "changed" })

	assert.Equal(t, "a1", snapshot.Find(a1.ID).Text)
	assert.Equal(t, "changed", mutated.Find(a1.ID).Text)
	assert.True(t, snapshot.Equal(root))
}
