package services

import (
	"sync"

	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/session"
	pkgerrors "mindmap-backend/pkg/errors"
)

// EditorSession binds a loaded document to its transient editing state:
// selection, clipboard and undo history. All mutations of an open
// document flow through here so the history push, the mutation and the
// selection prune happen atomically under one lock.
type EditorSession struct {
	mu        sync.Mutex
	doc       *aggregates.Document
	selection *session.Selection
	clipboard *session.Clipboard
	history   *session.History
}

// NewEditorSession opens a session over a loaded document
func NewEditorSession(doc *aggregates.Document) *EditorSession {
	return &EditorSession{
		doc:       doc,
		selection: session.NewSelection(),
		clipboard: session.NewClipboard(),
		history:   session.NewHistory(),
	}
}

// Document returns the session's document
func (s *EditorSession) Document() *aggregates.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Apply runs a mutation against the document. On success the
// pre-mutation tree is pushed onto the history and the selection is
// pruned; a failed mutation leaves history and selection untouched.
//
// The snapshot shares structure with the live tree, so the push is O(1).
func (s *EditorSession) Apply(mutate func(doc *aggregates.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.doc.Root()
	if err := mutate(s.doc); err != nil {
		return err
	}

	s.history.Push(snapshot)
	s.selection.Prune(s.doc.Root())
	return nil
}

// Undo restores the most recent history snapshot. An empty history
// returns a history-exhausted error and changes nothing.
func (s *EditorSession) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.history.Pop()
	if err != nil {
		return err
	}
	if err := s.doc.RestoreRoot(snapshot); err != nil {
		return err
	}

	s.selection.Prune(s.doc.Root())
	return nil
}

// Select replaces the selection with the given ids, ignoring ids not
// present in the tree.
func (s *EditorSession) Select(ids []valueobjects.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.Replace(ids...)
	s.selection.Prune(s.doc.Root())
}

// ToggleSelect toggles a single node's membership in the selection
func (s *EditorSession) ToggleSelect(id valueobjects.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Root().Find(id) == nil {
		return
	}
	s.selection.Toggle(id)
}

// AddSelect extends the selection with the given ids. Already selected
// ids stay selected; a shift gesture never deselects.
func (s *EditorSession) AddSelect(ids []valueobjects.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if s.doc.Root().Find(id) != nil {
			s.selection.Add(id)
		}
	}
}

// RemoveSelect drops the given ids from the selection. Unselected ids
// are ignored; an alt gesture never selects.
func (s *EditorSession) RemoveSelect(ids []valueobjects.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.selection.Remove(id)
	}
}

// Marquee resolves the nodes whose client-measured bounds intersect the
// marquee rectangle and replaces, extends or reduces the selection per
// the mode.
func (s *EditorSession) Marquee(marquee valueobjects.Rect, bounds map[valueobjects.NodeID]valueobjects.Rect, mode session.MarqueeMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.ApplyMarquee(marquee, bounds, s.doc.Root(), mode)
}

// SelectedIDs returns the current selection in order
func (s *EditorSession) SelectedIDs() []valueobjects.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.IDs()
}

// Copy captures the selected subtrees onto the clipboard without
// touching the document. Explicit ids override the live selection.
func (s *EditorSession) Copy(ids []valueobjects.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		ids = s.selection.IDs()
	}
	if captured := s.clipboard.Capture(s.doc.Root(), ids); captured == nil {
		return pkgerrors.NewNotFoundError("nodes to copy")
	}
	return nil
}

// Cut captures the selected subtrees and then deletes them in one
// history step. A selected root is copied but never deleted; the
// selection is cleared on success either way.
func (s *EditorSession) Cut(ids []valueobjects.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		ids = s.selection.IDs()
	}
	captured := s.clipboard.Capture(s.doc.Root(), ids)
	if captured == nil {
		return pkgerrors.NewNotFoundError("nodes to cut")
	}

	rootID := s.doc.RootID()
	deletable := make([]valueobjects.NodeID, 0, len(ids))
	for _, id := range ids {
		if !id.Equals(rootID) {
			deletable = append(deletable, id)
		}
	}
	if len(deletable) == 0 {
		// Only the root was selected: the copy half of the cut stands,
		// the tree is untouched.
		s.selection.Clear()
		return nil
	}

	snapshot := s.doc.Root()
	if err := s.doc.DeleteNodes(deletable); err != nil {
		return err
	}

	s.history.Push(snapshot)
	s.selection.Clear()
	return nil
}

// Paste instantiates the clipboard under the anchor with fresh
// identities and selects the pasted roots. A zero anchor falls back to
// the most recently selected node, or the root when nothing is
// selected.
func (s *EditorSession) Paste(anchorID valueobjects.NodeID) ([]*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clipboard.IsEmpty() {
		return nil, pkgerrors.NewValidationError("clipboard is empty")
	}
	if anchorID.IsZero() {
		if primary, ok := s.selection.Primary(); ok {
			anchorID = primary
		} else {
			anchorID = s.doc.RootID()
		}
	}

	snapshot := s.doc.Root()
	pasted, err := s.doc.PasteSubtrees(anchorID, s.clipboard.Contents())
	if err != nil {
		return nil, err
	}

	s.history.Push(snapshot)
	pastedIDs := make([]valueobjects.NodeID, len(pasted))
	for i, node := range pasted {
		pastedIDs[i] = node.ID
	}
	s.selection.Replace(pastedIDs...)
	return pasted, nil
}

// ApplyViewportGesture computes the next viewport transform under the
// session lock and stores it on the document. Viewport changes never
// push history. The stored transform is returned, scale clamped.
func (s *EditorSession) ApplyViewportGesture(next func(valueobjects.Viewport) (valueobjects.Viewport, error)) (valueobjects.Viewport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := next(s.doc.Viewport())
	if err != nil {
		return valueobjects.Viewport{}, err
	}
	s.doc.SetViewport(v)
	return s.doc.Viewport(), nil
}

// HistoryLen returns the current undo depth
func (s *EditorSession) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// ClipboardEmpty reports whether anything has been copied or cut
func (s *EditorSession) ClipboardEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clipboard.IsEmpty()
}
