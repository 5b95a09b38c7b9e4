package session

import (
	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/entities"
	pkgerrors "mindmap-backend/pkg/errors"
)

// History is a bounded stack of tree snapshots supporting single-level
// and repeated undo. Every committed mutation pushes the pre-mutation
// tree; when the stack is full the oldest snapshot is evicted, so undo
// reaches at most MaxHistoryDepth steps back.
//
// Snapshots are the immutable trees themselves. Structural sharing with
// the live tree makes a push O(1); no copying happens here.
type History struct {
	snapshots []*entities.Node
	depth     int
}

// NewHistory creates an empty history with the default depth
func NewHistory() *History {
	return &History{depth: config.DefaultDomainConfig().MaxHistoryDepth}
}

// NewHistoryWithDepth creates an empty history with a custom depth
func NewHistoryWithDepth(depth int) *History {
	if depth < 1 {
		depth = 1
	}
	return &History{depth: depth}
}

// Push records a snapshot taken immediately before a mutation. Evicts
// the oldest snapshot when the stack is at capacity.
func (h *History) Push(snapshot *entities.Node) {
	if snapshot == nil {
		return
	}
	if len(h.snapshots) >= h.depth {
		copy(h.snapshots, h.snapshots[1:])
		h.snapshots = h.snapshots[:len(h.snapshots)-1]
	}
	h.snapshots = append(h.snapshots, snapshot)
}

// Pop removes and returns the most recent snapshot. An empty stack
// returns a history-exhausted error; callers treat it as a no-op.
func (h *History) Pop() (*entities.Node, error) {
	if len(h.snapshots) == 0 {
		return nil, pkgerrors.NewHistoryExhaustedError()
	}
	last := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return last, nil
}

// Len returns the number of stored snapshots
func (h *History) Len() int {
	return len(h.snapshots)
}

// Clear discards all snapshots. Used when a different document is loaded
// into the session.
func (h *History) Clear() {
	h.snapshots = nil
}
