package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// buildTree returns the shared fixture:
//
//	root
//	├── a
//	│   ├── a1
//	│   └── a2
//	└── b
func buildTree() (root, a, a1, a2, b *entities.Node) {
	a1 = entities.NewNode("a1")
	a2 = entities.NewNode("a2")
	a = entities.NewNode("a")
	a.Children = []*entities.Node{a1, a2}
	b = entities.NewNode("b")
	root = entities.NewNode("root")
	root.Children = []*entities.Node{a, b}
	return
}

func TestSelectionReplaceAndToggle(t *testing.T) {
	_, a, a1, _, b := buildTree()
	sel := NewSelection()

	sel.Replace(a.ID, b.ID)
	assert.Equal(t, 2, sel.Len())
	primary, ok := sel.Primary()
	require.True(t, ok)
	assert.True(t, primary.Equals(b.ID), "the last id added is primary")

	sel.Toggle(a1.ID)
	assert.True(t, sel.Contains(a1.ID))
	primary, ok = sel.Primary()
	require.True(t, ok)
	assert.True(t, primary.Equals(a1.ID))
	sel.Toggle(a1.ID)
	assert.False(t, sel.Contains(a1.ID))

	sel.Replace(b.ID)
	assert.Equal(t, []valueobjects.NodeID{b.ID}, sel.IDs())

	sel.Clear()
	_, ok = sel.Primary()
	assert.False(t, ok)
}

func TestSelectionAddIsIdempotent(t *testing.T) {
	_, a, _, _, _ := buildTree()
	sel := NewSelection()

	sel.Add(a.ID)
	sel.Add(a.ID)

	assert.Equal(t, 1, sel.Len())
}

func TestSelectionAddAndRemoveNeverFlip(t *testing.T) {
	_, a, _, _, b := buildTree()
	sel := NewSelection()
	sel.Replace(a.ID)

	// Shift-click on an already selected node keeps it selected.
	sel.Add(a.ID)
	assert.True(t, sel.Contains(a.ID))

	// Alt-click on an unselected node selects nothing.
	sel.Remove(b.ID)
	assert.False(t, sel.Contains(b.ID))
	assert.Equal(t, 1, sel.Len())

	sel.Remove(a.ID)
	assert.Equal(t, 0, sel.Len())
}

func TestSelectionMarqueeReplacesInDocumentOrder(t *testing.T) {
	root, a, a1, a2, b := buildTree()
	sel := NewSelection()
	sel.Replace(a2.ID)

	bounds := map[valueobjects.NodeID]valueobjects.Rect{
		a.ID:  {X: 0, Y: 0, Width: 100, Height: 40},
		a1.ID: {X: 120, Y: 0, Width: 100, Height: 40},
		b.ID:  {X: 0, Y: 200, Width: 100, Height: 40},
		// a2 has no reported bounds and can never match
	}

	// Marquee overlapping a and a1 but not b.
	sel.ApplyMarquee(valueobjects.Rect{X: 50, Y: 10, Width: 100, Height: 20}, bounds, root, MarqueeReplace)

	assert.Equal(t, []valueobjects.NodeID{a.ID, a1.ID}, sel.IDs())
	assert.False(t, sel.Contains(a2.ID), "unmodified marquee replaces the prior selection")
}

func TestSelectionMarqueeAddUnions(t *testing.T) {
	root, a, _, _, b := buildTree()
	sel := NewSelection()
	sel.Replace(a.ID)

	bounds := map[valueobjects.NodeID]valueobjects.Rect{
		b.ID: {X: 0, Y: 200, Width: 100, Height: 40},
	}

	// Shift-marquee over b only: a stays selected.
	sel.ApplyMarquee(valueobjects.Rect{X: 0, Y: 190, Width: 50, Height: 30}, bounds, root, MarqueeAdd)

	assert.Equal(t, []valueobjects.NodeID{a.ID, b.ID}, sel.IDs())
}

func TestSelectionMarqueeRemoveSubtracts(t *testing.T) {
	root, a, _, _, b := buildTree()
	sel := NewSelection()
	sel.Replace(a.ID, b.ID)

	bounds := map[valueobjects.NodeID]valueobjects.Rect{
		a.ID: {X: 0, Y: 0, Width: 100, Height: 40},
		b.ID: {X: 0, Y: 200, Width: 100, Height: 40},
	}

	// Alt-marquee over a only: b survives, nothing new gets selected.
	sel.ApplyMarquee(valueobjects.Rect{X: 0, Y: 0, Width: 50, Height: 30}, bounds, root, MarqueeRemove)

	assert.Equal(t, []valueobjects.NodeID{b.ID}, sel.IDs())
}

func TestParseMarqueeModeDefaultsToReplace(t *testing.T) {
	assert.Equal(t, MarqueeAdd, ParseMarqueeMode("add"))
	assert.Equal(t, MarqueeRemove, ParseMarqueeMode("remove"))
	assert.Equal(t, MarqueeReplace, ParseMarqueeMode(""))
	assert.Equal(t, MarqueeReplace, ParseMarqueeMode("replace"))
}

func TestSelectionPruneDropsDeletedNodes(t *testing.T) {
	root, a, a1, _, b := buildTree()
	sel := NewSelection()
	sel.Replace(a1.ID, b.ID)

	pruned := root.Delete(a.ID)
	sel.Prune(pruned)

	assert.Equal(t, []valueobjects.NodeID{b.ID}, sel.IDs())
}

func TestClipboardCaptureDedupesToTopmost(t *testing.T) {
	root, a, a1, _, b := buildTree()
	clip := NewClipboard()

	captured := clip.Capture(root, []valueobjects.NodeID{a1.ID, a.ID, b.ID})

	require.Len(t, captured, 2)
	contents := clip.Contents()
	require.Len(t, contents, 2)
	assert.True(t, contents[0].ID.Equals(a.ID), "document order")
	assert.True(t, contents[1].ID.Equals(b.ID))
	assert.NotNil(t, contents[0].Find(a1.ID), "descendant travels inside its subtree")
}

func TestClipboardCaptureIsASnapshot(t *testing.T) {
	root, a, a1, _, _ := buildTree()
	clip := NewClipboard()
	clip.Capture(root, []valueobjects.NodeID{a.ID})

	// Later edits to the tree never leak into the clipboard.
	root.Update(a1.ID, func(n *entities.Node) { n.Text = "changed" })
	mutated := root.Find(a1.ID)
	mutated.Text = "changed in place"

	assert.Equal(t, "a1", clip.Contents()[0].Find(a1.ID).Text)
}

func TestClipboardEmptySelectionLeavesContents(t *testing.T) {
	root, a, _, _, _ := buildTree()
	clip := NewClipboard()
	clip.Capture(root, []valueobjects.NodeID{a.ID})

	captured := clip.Capture(root, nil)

	assert.Nil(t, captured)
	assert.False(t, clip.IsEmpty())
}

func TestHistoryPushPopOrder(t *testing.T) {
	h := NewHistory()
	first := entities.NewNode("first")
	second := entities.NewNode("second")

	h.Push(first)
	h.Push(second)

	popped, err := h.Pop()
	require.NoError(t, err)
	assert.Same(t, second, popped)

	popped, err = h.Pop()
	require.NoError(t, err)
	assert.Same(t, first, popped)
}

func TestHistoryExhausted(t *testing.T) {
	h := NewHistory()

	_, err := h.Pop()
	assert.True(t, pkgerrors.IsHistoryExhausted(err))
}

func TestHistoryEvictsOldestAtCapacity(t *testing.T) {
	h := NewHistoryWithDepth(50)

	var snapshots []*entities.Node
	for i := 0; i < 55; i++ {
		s := entities.NewNode(fmt.Sprintf("snapshot-%d", i))
		snapshots = append(snapshots, s)
		h.Push(s)
	}

	assert.Equal(t, 50, h.Len())

	// Undoing everything reaches back exactly 50 steps, newest first.
	for i := 54; i >= 5; i-- {
		popped, err := h.Pop()
		require.NoError(t, err)
		assert.Same(t, snapshots[i], popped)
	}
	_, err := h.Pop()
	assert.True(t, pkgerrors.IsHistoryExhausted(err))
}

func TestHistoryIgnoresNilSnapshot(t *testing.T) {
	h := NewHistory()
	h.Push(nil)
	assert.Equal(t, 0, h.Len())
}
