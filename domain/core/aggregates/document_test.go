package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/events"
	pkgerrors "mindmap-backend/pkg/errors"
)

func newImportFixture() *entities.Node {
	root := entities.NewNode("Imported")
	root.Children = []*entities.Node{entities.NewNode("one"), entities.NewNode("two")}
	return root
}

// newTestDocument builds a document with a known tree:
//
//	root
//	├── a
//	│   ├── a1
//	│   └── a2
//	└── b
func newTestDocument(t *testing.T) (doc *Document, a, a1, a2, b valueobjects.NodeID) {
	t.Helper()

	doc, err := NewDocument("user-1", "Test Map")
	require.NoError(t, err)

	nodeA, err := doc.AddChild(doc.RootID(), "a")
	require.NoError(t, err)
	nodeB, err := doc.AddChild(doc.RootID(), "b")
	require.NoError(t, err)
	nodeA1, err := doc.AddChild(nodeA.ID, "a1")
	require.NoError(t, err)
	nodeA2, err := doc.AddChild(nodeA.ID, "a2")
	require.NoError(t, err)

	doc.MarkEventsAsCommitted()
	return doc, nodeA.ID, nodeA1.ID, nodeA2.ID, nodeB.ID
}

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument("user-1", "")
	require.NoError(t, err)

	assert.Equal(t, "Untitled Map", doc.Name())
	assert.Equal(t, "Central Topic", doc.Root().Text)
	assert.Equal(t, 1, doc.NodeCount())
	assert.Equal(t, 1.0, doc.Viewport().Scale)

	evts := doc.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, "document.created", evts[0].GetEventType())
}

func TestNewDocumentRequiresOwner(t *testing.T) {
	_, err := NewDocument("", "Map")
	assert.Error(t, err)
}

func TestUpdateNode(t *testing.T) {
	doc, a, _, _, _ := newTestDocument(t)
	before := doc.Version()

	text := "renamed"
	width := 220.0
	err := doc.UpdateNode(a, NodeChanges{Text: &text, Width: &width})
	require.NoError(t, err)

	node := doc.Root().Find(a)
	assert.Equal(t, "renamed", node.Text)
	assert.Equal(t, 220.0, node.Width)
	assert.Equal(t, before+1, doc.Version())
}

func TestUpdateNodeNotFound(t *testing.T) {
	doc, _, _, _, _ := newTestDocument(t)
	before := doc.Root()

	text := "x"
	err := doc.UpdateNode(valueobjects.NewNodeID(), NodeChanges{Text: &text})

	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Same(t, before, doc.Root())
	assert.Empty(t, doc.GetUncommittedEvents())
}

func TestAddSibling(t *testing.T) {
	doc, a, a1, _, _ := newTestDocument(t)

	node, err := doc.AddSibling(a1, "x", valueobjects.PlacementAfter)
	require.NoError(t, err)

	children := doc.Root().Find(a).Children
	require.Len(t, children, 3)
	assert.True(t, children[1].ID.Equals(node.ID))
}

func TestAddSiblingOfRootIsRejected(t *testing.T) {
	doc, _, _, _, _ := newTestDocument(t)
	before := doc.Root()

	_, err := doc.AddSibling(doc.RootID(), "x", valueobjects.PlacementBefore)

	assert.True(t, pkgerrors.IsStructural(err))
	assert.Same(t, before, doc.Root())
}

func TestDeleteNode(t *testing.T) {
	doc, a, a1, _, b := newTestDocument(t)

	err := doc.DeleteNode(a)
	require.NoError(t, err)

	assert.Nil(t, doc.Root().Find(a))
	assert.Nil(t, doc.Root().Find(a1))
	assert.NotNil(t, doc.Root().Find(b))
}

func TestDeleteRootIsRejected(t *testing.T) {
	doc, _, _, _, _ := newTestDocument(t)
	before := doc.Root()

	err := doc.DeleteNode(doc.RootID())

	assert.True(t, pkgerrors.IsStructural(err))
	assert.Same(t, before, doc.Root())
	assert.Empty(t, doc.GetUncommittedEvents())
}

func TestDeleteNodesSkipsVanishedDescendants(t *testing.T) {
	doc, a, a1, _, b := newTestDocument(t)

	// a1 vanishes when a is deleted first; the batch still succeeds.
	err := doc.DeleteNodes([]valueobjects.NodeID{a, a1})
	require.NoError(t, err)

	assert.Nil(t, doc.Root().Find(a))
	assert.NotNil(t, doc.Root().Find(b))
}

func TestToggleCollapse(t *testing.T) {
	doc, a, a1, _, _ := newTestDocument(t)

	require.NoError(t, doc.ToggleCollapse(a, true, false))
	assert.True(t, doc.Root().Find(a).IsCollapsed)
	assert.False(t, doc.Root().Find(a1).IsCollapsed)

	require.NoError(t, doc.ToggleCollapse(a, true, true))
	assert.True(t, doc.Root().Find(a1).IsCollapsed)
}

func TestMoveNodesInside(t *testing.T) {
	doc, a, a1, a2, b := newTestDocument(t)
	require.NoError(t, doc.ToggleCollapse(b, true, false))

	err := doc.MoveNodes([]valueobjects.NodeID{a1, a2}, b, valueobjects.PlacementInside)
	require.NoError(t, err)

	target := doc.Root().Find(b)
	require.Len(t, target.Children, 2)
	assert.True(t, target.Children[0].ID.Equals(a1))
	assert.True(t, target.Children[1].ID.Equals(a2))
	assert.False(t, target.IsCollapsed, "drop target is force-expanded")
	assert.Empty(t, doc.Root().Find(a).Children)
}

func TestMoveNodesBeforeSibling(t *testing.T) {
	doc, _, a1, _, b := newTestDocument(t)

	err := doc.MoveNodes([]valueobjects.NodeID{b}, a1, valueobjects.PlacementBefore)
	require.NoError(t, err)

	children := doc.Root().Children
	require.Len(t, children, 1, "b left the root's children")
	grand := children[0].Children
	require.Len(t, grand, 3)
	assert.True(t, grand[0].ID.Equals(b))
	assert.True(t, grand[1].ID.Equals(a1))
}

func TestMoveNodesRejectsCycles(t *testing.T) {
	doc, a, a1, _, b := newTestDocument(t)
	before := doc.Root()

	cases := []struct {
		name      string
		dragged   []valueobjects.NodeID
		target    valueobjects.NodeID
		placement valueobjects.Placement
	}{
		{"target is dragged", []valueobjects.NodeID{a, b}, a, valueobjects.PlacementInside},
		{"root is dragged", []valueobjects.NodeID{doc.RootID()}, b, valueobjects.PlacementInside},
		{"target inside dragged subtree", []valueobjects.NodeID{a}, a1, valueobjects.PlacementInside},
		{"sibling of target inside dragged subtree", []valueobjects.NodeID{a}, a1, valueobjects.PlacementAfter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := doc.MoveNodes(tc.dragged, tc.target, tc.placement)
			assert.True(t, pkgerrors.IsStructural(err))
			assert.Same(t, before, doc.Root(), "rejection must not mutate the tree")
		})
	}
}

func TestMoveNodesDedupesToTopmost(t *testing.T) {
	doc, a, a1, _, b := newTestDocument(t)

	// Dragging a and its descendant a1 moves the a subtree exactly once.
	err := doc.MoveNodes([]valueobjects.NodeID{a1, a}, b, valueobjects.PlacementInside)
	require.NoError(t, err)

	target := doc.Root().Find(b)
	require.Len(t, target.Children, 1)
	assert.True(t, target.Children[0].ID.Equals(a))
	assert.Len(t, target.Children[0].Children, 2)

	// Every id still occurs exactly once.
	assert.Len(t, doc.Root().CollectIDs(), doc.NodeCount())
}

func TestMoveNodesPreservesDocumentOrder(t *testing.T) {
	doc, _, a1, a2, b := newTestDocument(t)

	// Passed in reverse document order; insertion preserves tree order.
	err := doc.MoveNodes([]valueobjects.NodeID{a2, a1}, b, valueobjects.PlacementInside)
	require.NoError(t, err)

	target := doc.Root().Find(b)
	require.Len(t, target.Children, 2)
	assert.True(t, target.Children[0].ID.Equals(a1))
	assert.True(t, target.Children[1].ID.Equals(a2))
}

func TestPasteSubtrees(t *testing.T) {
	doc, a, _, _, b := newTestDocument(t)

	subtree := doc.Root().Find(a).Clone()
	require.NoError(t, doc.ToggleCollapse(b, true, false))

	pasted, err := doc.PasteSubtrees(b, []*entities.Node{subtree})
	require.NoError(t, err)
	require.Len(t, pasted, 1)

	target := doc.Root().Find(b)
	assert.False(t, target.IsCollapsed)
	require.Len(t, target.Children, 1)

	// Fresh identities: the original a subtree is untouched, the paste
	// carries no id from it.
	assert.NotNil(t, doc.Root().Find(a))
	originalIDs := doc.Root().Find(a).CollectIDs()
	for id := range pasted[0].CollectIDs() {
		_, overlap := originalIDs[id]
		assert.False(t, overlap)
	}
}

func TestRestoreRoot(t *testing.T) {
	doc, a, _, _, _ := newTestDocument(t)
	snapshot := doc.Root().Clone()

	require.NoError(t, doc.DeleteNode(a))
	assert.Nil(t, doc.Root().Find(a))

	require.NoError(t, doc.RestoreRoot(snapshot))
	assert.NotNil(t, doc.Root().Find(a))

	evts := doc.GetUncommittedEvents()
	require.NotEmpty(t, evts)
	last := evts[len(evts)-1]
	assert.Equal(t, "document.reverted", last.GetEventType())
}

func TestImportTreeKeepsRootIdentity(t *testing.T) {
	doc, _, _, _, _ := newTestDocument(t)
	rootID := doc.RootID()

	imported := newImportFixture()
	require.NoError(t, doc.ImportTree(imported, "json"))

	assert.True(t, doc.RootID().Equals(rootID), "root identity is fixed for the document's lifetime")
	assert.Equal(t, "Imported", doc.Root().Text)
	assert.Len(t, doc.Root().Children, 2)
}

func TestRenameEmitsEvent(t *testing.T) {
	doc, _, _, _, _ := newTestDocument(t)

	require.NoError(t, doc.Rename("New Name"))
	assert.Equal(t, "New Name", doc.Name())

	evts := doc.GetUncommittedEvents()
	require.Len(t, evts, 1)
	renamed, ok := evts[0].(events.DocumentRenamed)
	require.True(t, ok)
	assert.Equal(t, "Test Map", renamed.OldName)
	assert.Equal(t, "New Name", renamed.NewName)
}

func TestTopmostNodes(t *testing.T) {
	doc, a, a1, a2, b := newTestDocument(t)

	nodes := TopmostNodes(doc.Root(), []valueobjects.NodeID{a2, b, a1, a})
	require.Len(t, nodes, 2)
	assert.True(t, nodes[0].ID.Equals(a), "document order, ancestor absorbs descendants")
	assert.True(t, nodes[1].ID.Equals(b))
}
