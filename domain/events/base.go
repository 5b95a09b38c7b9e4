package events

import (
	"time"

	"mindmap-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBaseEvent(documentID, eventType string, version int) BaseEvent {
	return BaseEvent{
		AggregateID: documentID,
		EventType:   eventType,
		Timestamp:   time.Now(),
		Version:     version,
	}
}

// Document lifecycle events

// DocumentCreated is raised when an empty document is created
type DocumentCreated struct {
	BaseEvent
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	RootID  string `json:"root_id"`
}

// NewDocumentCreated creates a DocumentCreated event
func NewDocumentCreated(documentID, ownerID, name, rootID string) DocumentCreated {
	return DocumentCreated{
		BaseEvent: newBaseEvent(documentID, "document.created", 1),
		OwnerID:   ownerID,
		Name:      name,
		RootID:    rootID,
	}
}

// DocumentRenamed is raised when a document's name changes
type DocumentRenamed struct {
	BaseEvent
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// NewDocumentRenamed creates a DocumentRenamed event
func NewDocumentRenamed(documentID string, version int, oldName, newName string) DocumentRenamed {
	return DocumentRenamed{
		BaseEvent: newBaseEvent(documentID, "document.renamed", version),
		OldName:   oldName,
		NewName:   newName,
	}
}

// DocumentReverted is raised when undo restores a prior tree snapshot
type DocumentReverted struct {
	BaseEvent
}

// NewDocumentReverted creates a DocumentReverted event
func NewDocumentReverted(documentID string, version int) DocumentReverted {
	return DocumentReverted{
		BaseEvent: newBaseEvent(documentID, "document.reverted", version),
	}
}

// Node mutation events

// NodeUpdated is raised when a node's content attributes change
type NodeUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(documentID string, version int, nodeID valueobjects.NodeID) NodeUpdated {
	return NodeUpdated{
		BaseEvent: newBaseEvent(documentID, "node.updated", version),
		NodeID:    nodeID,
	}
}

// NodeAdded is raised when a node is inserted as a child or sibling
type NodeAdded struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	AnchorID valueobjects.NodeID `json:"anchor_id"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(documentID string, version int, nodeID, anchorID valueobjects.NodeID) NodeAdded {
	return NodeAdded{
		BaseEvent: newBaseEvent(documentID, "node.added", version),
		NodeID:    nodeID,
		AnchorID:  anchorID,
	}
}

// NodeDeleted is raised when a subtree is removed
type NodeDeleted struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(documentID string, version int, nodeID valueobjects.NodeID) NodeDeleted {
	return NodeDeleted{
		BaseEvent: newBaseEvent(documentID, "node.deleted", version),
		NodeID:    nodeID,
	}
}

// NodesMoved is raised when a drag gesture relocates one or more subtrees
type NodesMoved struct {
	BaseEvent
	NodeIDs   []valueobjects.NodeID  `json:"node_ids"`
	TargetID  valueobjects.NodeID    `json:"target_id"`
	Placement valueobjects.Placement `json:"placement"`
}

// NewNodesMoved creates a NodesMoved event
func NewNodesMoved(documentID string, version int, nodeIDs []valueobjects.NodeID, targetID valueobjects.NodeID, placement valueobjects.Placement) NodesMoved {
	return NodesMoved{
		BaseEvent: newBaseEvent(documentID, "nodes.moved", version),
		NodeIDs:   nodeIDs,
		TargetID:  targetID,
		Placement: placement,
	}
}

// NodesPasted is raised when clipboard content is instantiated into the tree
type NodesPasted struct {
	BaseEvent
	AnchorID valueobjects.NodeID   `json:"anchor_id"`
	NodeIDs  []valueobjects.NodeID `json:"node_ids"`
}

// NewNodesPasted creates a NodesPasted event
func NewNodesPasted(documentID string, version int, anchorID valueobjects.NodeID, nodeIDs []valueobjects.NodeID) NodesPasted {
	return NodesPasted{
		BaseEvent: newBaseEvent(documentID, "nodes.pasted", version),
		AnchorID:  anchorID,
		NodeIDs:   nodeIDs,
	}
}

// CollapseToggled is raised when a node is collapsed or expanded
type CollapseToggled struct {
	BaseEvent
	NodeID    valueobjects.NodeID `json:"node_id"`
	Collapsed bool                `json:"collapsed"`
	Recursive bool                `json:"recursive"`
}

// NewCollapseToggled creates a CollapseToggled event
func NewCollapseToggled(documentID string, version int, nodeID valueobjects.NodeID, collapsed, recursive bool) CollapseToggled {
	return CollapseToggled{
		BaseEvent: newBaseEvent(documentID, "node.collapse_toggled", version),
		NodeID:    nodeID,
		Collapsed: collapsed,
		Recursive: recursive,
	}
}

// TreeImported is raised when an imported tree replaces or extends the document
type TreeImported struct {
	BaseEvent
	Format    string `json:"format"`
	NodeCount int    `json:"node_count"`
}

// NewTreeImported creates a TreeImported event
func NewTreeImported(documentID string, version int, format string, nodeCount int) TreeImported {
	return TreeImported{
		BaseEvent: newBaseEvent(documentID, "document.tree_imported", version),
		Format:    format,
		NodeCount: nodeCount,
	}
}
