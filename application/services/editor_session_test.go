package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// newSessionFixture opens a session over a document shaped as:
//
//	root
//	├── a
//	│   ├── a1
//	│   └── a2
//	└── b
func newSessionFixture(t *testing.T) (s *EditorSession, a, a1, a2, b valueobjects.NodeID) {
	t.Helper()

	doc, err := aggregates.NewDocument("user-1", "Fixture")
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

	return NewEditorSession(doc), nodeA.ID, nodeA1.ID, nodeA2.ID, nodeB.ID
}

func TestApplyPushesHistoryOnSuccess(t *testing.T) {
	s, a, _, _, _ := newSessionFixture(t)

	err := s.Apply(func(doc *aggregates.Document) error {
		return doc.DeleteNode(a)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, s.HistoryLen())
	assert.Nil(t, s.Document().Root().Find(a))
}

func TestApplyFailureLeavesHistoryAlone(t *testing.T) {
	s, _, _, _, _ := newSessionFixture(t)

	err := s.Apply(func(doc *aggregates.Document) error {
		return doc.DeleteNode(doc.RootID())
	})

	assert.True(t, pkgerrors.IsStructural(err))
	assert.Equal(t, 0, s.HistoryLen())
}

func TestUndoRestoresPriorTree(t *testing.T) {
	s, a, a1, _, _ := newSessionFixture(t)

	require.NoError(t, s.Apply(func(doc *aggregates.Document) error {
		return doc.DeleteNode(a)
	}))
	require.Nil(t, s.Document().Root().Find(a1))

	require.NoError(t, s.Undo())

	assert.NotNil(t, s.Document().Root().Find(a))
	assert.NotNil(t, s.Document().Root().Find(a1))
	assert.Equal(t, 0, s.HistoryLen())

	err := s.Undo()
	assert.True(t, pkgerrors.IsHistoryExhausted(err))
}

func TestUndoRunsAllCommitsBackToOriginalTree(t *testing.T) {
	s, a, a1, a2, b := newSessionFixture(t)
	original := s.Document().Root()

	// A run of mixed mutations, each its own history step.
	require.NoError(t, s.Apply(func(doc *aggregates.Document) error {
		_, err := doc.AddChild(b, "b1")
		return err
	}))
	renamed := "renamed"
	require.NoError(t, s.Apply(func(doc *aggregates.Document) error {
		return doc.UpdateNode(a1, aggregates.NodeChanges{Text: &renamed})
	}))
	require.NoError(t, s.Apply(func(doc *aggregates.Document) error {
		return doc.MoveNodes([]valueobjects.NodeID{a2}, b, valueobjects.PlacementInside)
	}))
	require.NoError(t, s.Apply(func(doc *aggregates.Document) error {
		return doc.DeleteNode(a)
	}))
	require.Equal(t, 4, s.HistoryLen())

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Undo())
	}

	assert.True(t, s.Document().Root().Equal(original), "every commit unwound")

	// One more undo past the bottom is a no-op.
	err := s.Undo()
	assert.True(t, pkgerrors.IsHistoryExhausted(err))
	assert.True(t, s.Document().Root().Equal(original))
}

func TestAddAndRemoveSelect(t *testing.T) {
	s, a, _, _, b := newSessionFixture(t)

	s.Select([]valueobjects.NodeID{a})
	s.AddSelect([]valueobjects.NodeID{b, a})
	assert.Equal(t, []valueobjects.NodeID{a, b}, s.SelectedIDs())

	s.RemoveSelect([]valueobjects.NodeID{a})
	assert.Equal(t, []valueobjects.NodeID{b}, s.SelectedIDs())
}

func TestMutationPrunesSelection(t *testing.T) {
	s, a, a1, _, b := newSessionFixture(t)
	s.Select([]valueobjects.NodeID{a1, b})

	require.NoError(t, s.Apply(func(doc *aggregates.Document) error {
		return doc.DeleteNode(a)
	}))

	assert.Equal(t, []valueobjects.NodeID{b}, s.SelectedIDs())
}

func TestCutThenPasteRelocatesWithFreshIDs(t *testing.T) {
	s, a, a1, _, b := newSessionFixture(t)

	// Cut the a subtree, paste it under b: the content reappears under b
	// with entirely new identities and the pasted root becomes selected.
	require.NoError(t, s.Cut([]valueobjects.NodeID{a}))
	require.Nil(t, s.Document().Root().Find(a))

	pasted, err := s.Paste(b)
	require.NoError(t, err)
	require.Len(t, pasted, 1)

	target := s.Document().Root().Find(b)
	require.Len(t, target.Children, 1)
	assert.Equal(t, "a", target.Children[0].Text)
	assert.Len(t, target.Children[0].Children, 2)
	assert.False(t, target.Children[0].ID.Equals(a))
	assert.Nil(t, s.Document().Root().Find(a1), "cut identities never come back")

	assert.Equal(t, []valueobjects.NodeID{pasted[0].ID}, s.SelectedIDs())

	// Cut and paste were separate history steps.
	assert.Equal(t, 2, s.HistoryLen())
}

func TestCopyLeavesDocumentUntouched(t *testing.T) {
	s, a, _, _, _ := newSessionFixture(t)
	version := s.Document().Version()

	require.NoError(t, s.Copy([]valueobjects.NodeID{a}))

	assert.Equal(t, version, s.Document().Version())
	assert.Equal(t, 0, s.HistoryLen())
	assert.False(t, s.ClipboardEmpty())
}

func TestCopyUsesSelectionWhenNoIDsGiven(t *testing.T) {
	s, a, _, _, _ := newSessionFixture(t)
	s.Select([]valueobjects.NodeID{a})

	require.NoError(t, s.Copy(nil))
	assert.False(t, s.ClipboardEmpty())
}

func TestPasteTwiceYieldsDisjointIdentities(t *testing.T) {
	s, a, _, _, b := newSessionFixture(t)

	require.NoError(t, s.Copy([]valueobjects.NodeID{a}))

	first, err := s.Paste(b)
	require.NoError(t, err)
	second, err := s.Paste(b)
	require.NoError(t, err)

	firstIDs := first[0].CollectIDs()
	for id := range second[0].CollectIDs() {
		_, overlap := firstIDs[id]
		assert.False(t, overlap)
	}
	assert.Len(t, s.Document().Root().CollectIDs(), s.Document().NodeCount())
}

func TestPasteWithEmptyClipboardFails(t *testing.T) {
	s, _, _, _, b := newSessionFixture(t)

	_, err := s.Paste(b)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestCutSkipsSelectedRootAndDeletesRest(t *testing.T) {
	s, a, a1, _, b := newSessionFixture(t)
	rootID := s.Document().RootID()

	// Cutting root together with a deletes a but leaves the root alone.
	require.NoError(t, s.Cut([]valueobjects.NodeID{rootID, a}))

	assert.NotNil(t, s.Document().Root().Find(rootID))
	assert.Nil(t, s.Document().Root().Find(a))
	assert.Nil(t, s.Document().Root().Find(a1))
	assert.NotNil(t, s.Document().Root().Find(b))
	assert.Empty(t, s.SelectedIDs(), "cut clears the selection")
	assert.Equal(t, 1, s.HistoryLen())
	assert.False(t, s.ClipboardEmpty())
}

func TestCutRootAloneCopiesWithoutDeleting(t *testing.T) {
	s, _, _, _, _ := newSessionFixture(t)
	rootID := s.Document().RootID()
	s.Select([]valueobjects.NodeID{rootID})

	require.NoError(t, s.Cut(nil))

	assert.NotNil(t, s.Document().Root().Find(rootID))
	assert.Equal(t, 0, s.HistoryLen(), "nothing was deleted, nothing to undo")
	assert.False(t, s.ClipboardEmpty(), "the copy half of the cut stands")
	assert.Empty(t, s.SelectedIDs())
}

func TestPasteAnchorsOnLastSelected(t *testing.T) {
	s, a, _, _, b := newSessionFixture(t)

	require.NoError(t, s.Copy([]valueobjects.NodeID{a}))
	s.Select([]valueobjects.NodeID{a})
	s.ToggleSelect(b)

	// a was selected first, b last: the paste lands under b.
	pasted, err := s.Paste(valueobjects.NodeID{})
	require.NoError(t, err)

	target := s.Document().Root().Find(b)
	require.Len(t, target.Children, 1)
	assert.True(t, target.Children[0].ID.Equals(pasted[0].ID))
}

func TestPasteWithEmptySelectionAnchorsOnRoot(t *testing.T) {
	s, _, _, _, b := newSessionFixture(t)

	require.NoError(t, s.Copy([]valueobjects.NodeID{b}))
	s.Select(nil)

	pasted, err := s.Paste(valueobjects.NodeID{})
	require.NoError(t, err)
	require.Len(t, pasted, 1)

	root := s.Document().Root()
	assert.True(t, root.Children[len(root.Children)-1].ID.Equals(pasted[0].ID))
}
