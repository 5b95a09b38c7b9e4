package aggregates

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/events"
	pkgerrors "mindmap-backend/pkg/errors"
)

// DocumentID represents a unique document identifier
type DocumentID string

// NewDocumentID creates a new random DocumentID
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

// String returns the string representation
func (id DocumentID) String() string {
	return string(id)
}

// Document is the aggregate root for a single mind map. It owns the node
// tree and is the only place structural mutations are applied, so the
// tree invariants (unique identities, acyclicity, undeletable root) are
// enforced on one consistency boundary.
type Document struct {
	id        DocumentID
	ownerID   string
	name      string
	root      *entities.Node
	viewport  valueobjects.Viewport
	thumbnail string
	createdAt time.Time
	updatedAt time.Time
	version   int
	events    []events.DomainEvent
}

// NodeChanges describes a partial update to a node's content attributes.
// Nil fields are left untouched.
type NodeChanges struct {
	Text  *string
	Image *string
	URL   *string
	Width *float64
}

// NewDocument creates an empty document with a single placeholder root
func NewDocument(ownerID, name string) (*Document, error) {
	cfg := config.DefaultDomainConfig()
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID cannot be empty")
	}
	if name == "" {
		name = cfg.DefaultDocumentName
	}

	now := time.Now()
	doc := &Document{
		id:        NewDocumentID(),
		ownerID:   ownerID,
		name:      name,
		root:      entities.NewNode(cfg.DefaultRootText),
		viewport:  valueobjects.NewViewport(),
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	doc.addEvent(events.NewDocumentCreated(doc.id.String(), ownerID, name, doc.root.ID.String()))

	return doc, nil
}

// ReconstructDocument recreates a document from stored data
func ReconstructDocument(
	id DocumentID,
	ownerID string,
	name string,
	root *entities.Node,
	viewport valueobjects.Viewport,
	thumbnail string,
	createdAt, updatedAt time.Time,
	version int,
) (*Document, error) {
	if id == "" || ownerID == "" || root == nil {
		return nil, pkgerrors.NewValidationError("required fields missing for document reconstruction")
	}

	return &Document{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		root:      root,
		viewport:  viewport.WithScale(viewport.Scale),
		thumbnail: thumbnail,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the document's unique identifier
func (d *Document) ID() DocumentID { return d.id }

// OwnerID returns the owner's ID
func (d *Document) OwnerID() string { return d.ownerID }

// Name returns the document's name
func (d *Document) Name() string { return d.name }

// Root returns the current committed tree. Callers must treat it as
// immutable; mutations go through the aggregate operations.
func (d *Document) Root() *entities.Node { return d.root }

// RootID returns the fixed identity of the document's root node
func (d *Document) RootID() valueobjects.NodeID { return d.root.ID }

// Viewport returns the persisted viewport transform
func (d *Document) Viewport() valueobjects.Viewport { return d.viewport }

// Thumbnail returns the thumbnail blob reference, if any
func (d *Document) Thumbnail() string { return d.thumbnail }

// CreatedAt returns when the document was created
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns when the document was last updated
func (d *Document) UpdatedAt() time.Time { return d.updatedAt }

// Version returns the mutation counter used for optimistic persistence
func (d *Document) Version() int { return d.version }

// NodeCount returns the number of nodes in the tree
func (d *Document) NodeCount() int { return d.root.Count() }

// Rename changes the document's display name
func (d *Document) Rename(name string) error {
	if name == "" {
		return pkgerrors.NewValidationError("document name cannot be empty")
	}
	if name == d.name {
		return nil
	}

	oldName := d.name
	d.name = name
	d.updatedAt = time.Now()

	d.addEvent(events.NewDocumentRenamed(d.id.String(), d.version, oldName, name))

	return nil
}

// SetViewport stores a new viewport transform. Viewport changes are not
// structural: no version bump, no history involvement.
func (d *Document) SetViewport(v valueobjects.Viewport) {
	d.viewport = v.WithScale(v.Scale)
	d.updatedAt = time.Now()
}

// SetThumbnail stores a new thumbnail blob reference
func (d *Document) SetThumbnail(ref string) {
	d.thumbnail = ref
	d.updatedAt = time.Now()
}

// UpdateNode applies partial content changes to the node with the given id
func (d *Document) UpdateNode(id valueobjects.NodeID, changes NodeChanges) error {
	if d.root.Find(id) == nil {
		return pkgerrors.NewNotFoundError("node")
	}

	newRoot := d.root.Update(id, func(n *entities.Node) {
		if changes.Text != nil {
			n.Text = *changes.Text
		}
		if changes.Image != nil {
			n.Image = *changes.Image
		}
		if changes.URL != nil {
			n.URL = *changes.URL
		}
		if changes.Width != nil {
			n.Width = *changes.Width
		}
	})

	d.commitTree(newRoot)
	d.addEvent(events.NewNodeUpdated(d.id.String(), d.version, id))

	return nil
}

// AddChild appends a new node under the given parent and returns it.
// The parent is force-expanded so the new child is visible.
func (d *Document) AddChild(parentID valueobjects.NodeID, text string) (*entities.Node, error) {
	if d.root.Find(parentID) == nil {
		return nil, pkgerrors.NewNotFoundError("parent node")
	}
	if d.root.Count() >= config.DefaultDomainConfig().MaxNodesPerDocument {
		return nil, pkgerrors.NewConflictError("maximum nodes reached")
	}

	child := entities.NewNode(text)
	d.commitTree(d.root.AddChild(parentID, child))
	d.addEvent(events.NewNodeAdded(d.id.String(), d.version, child.ID, parentID))

	return child, nil
}

// AddSibling inserts a new node next to the anchor and returns it.
// The root has no siblings, so a root anchor is structurally rejected.
func (d *Document) AddSibling(anchorID valueobjects.NodeID, text string, placement valueobjects.Placement) (*entities.Node, error) {
	if anchorID.Equals(d.root.ID) {
		return nil, pkgerrors.NewStructuralError("the root node cannot have siblings")
	}
	if !placement.IsSibling() {
		return nil, pkgerrors.NewValidationError("sibling placement must be before or after")
	}
	if d.root.Find(anchorID) == nil {
		return nil, pkgerrors.NewNotFoundError("anchor node")
	}

	node := entities.NewNode(text)
	newRoot := d.root.InsertSibling(anchorID, node, placement)
	if newRoot == d.root {
		// Anchor's parent could not be resolved; kept as a no-op but
		// worth a signal, so the caller logs it.
		return nil, pkgerrors.NewNotFoundError("anchor parent")
	}

	d.commitTree(newRoot)
	d.addEvent(events.NewNodeAdded(d.id.String(), d.version, node.ID, anchorID))

	return node, nil
}

// DeleteNode removes the subtree rooted at the given id. The document
// root can never be deleted, only edited.
func (d *Document) DeleteNode(id valueobjects.NodeID) error {
	if id.Equals(d.root.ID) {
		return pkgerrors.NewStructuralError("the root node cannot be deleted")
	}

	newRoot := d.root.Delete(id)
	if newRoot == d.root {
		return pkgerrors.NewNotFoundError("node")
	}

	d.commitTree(newRoot)
	d.addEvent(events.NewNodeDeleted(d.id.String(), d.version, id))

	return nil
}

// DeleteNodes removes several subtrees in one commit, skipping the root
// and ids that vanish because an ancestor was deleted first.
func (d *Document) DeleteNodes(ids []valueobjects.NodeID) error {
	working := d.root
	deleted := 0
	for _, id := range ids {
		if id.Equals(d.root.ID) {
			continue
		}
		next := working.Delete(id)
		if next != working {
			deleted++
		}
		working = next
	}
	if deleted == 0 {
		return pkgerrors.NewNotFoundError("nodes")
	}

	d.commitTree(working)
	for _, id := range ids {
		if !id.Equals(d.root.ID) {
			d.addEvent(events.NewNodeDeleted(d.id.String(), d.version, id))
		}
	}

	return nil
}

// ToggleCollapse sets the collapsed flag on a node, optionally recursively
func (d *Document) ToggleCollapse(id valueobjects.NodeID, collapsed, recursive bool) error {
	if d.root.Find(id) == nil {
		return pkgerrors.NewNotFoundError("node")
	}

	d.commitTree(d.root.SetCollapsed(id, collapsed, recursive))
	d.addEvent(events.NewCollapseToggled(d.id.String(), d.version, id, collapsed, recursive))

	return nil
}

// MoveNodes relocates the dragged subtrees to the drop target in a single
// atomic commit: either every dragged subtree relocates or none does.
//
// Rejections, all leaving the document untouched:
//   - the target is one of the dragged nodes
//   - the root is dragged
//   - the target sits inside a dragged subtree (a cycle would form)
func (d *Document) MoveNodes(draggedIDs []valueobjects.NodeID, targetID valueobjects.NodeID, placement valueobjects.Placement) error {
	if len(draggedIDs) == 0 {
		return pkgerrors.NewValidationError("no nodes to move")
	}

	for _, id := range draggedIDs {
		if id.Equals(targetID) {
			return pkgerrors.NewStructuralError("cannot drop a node onto itself")
		}
		if id.Equals(d.root.ID) {
			return pkgerrors.NewStructuralError("the root node cannot be moved")
		}
	}
	for _, id := range draggedIDs {
		if d.root.IsDescendant(id, targetID) {
			return pkgerrors.NewStructuralError("cannot move a node into its own subtree")
		}
	}
	if d.root.Find(targetID) == nil {
		return pkgerrors.NewNotFoundError("drop target")
	}

	// Dedupe to topmost dragged ids in document order; dragging a node
	// together with its descendant moves the whole subtree once.
	dragged := TopmostNodes(d.root, draggedIDs)
	if len(dragged) == 0 {
		return pkgerrors.NewNotFoundError("dragged nodes")
	}

	// Detach sequentially over the evolving tree.
	working := d.root
	detached := make([]*entities.Node, 0, len(dragged))
	for _, node := range dragged {
		next, sub := working.Detach(node.ID)
		if sub == nil {
			return pkgerrors.NewNotFoundError("dragged node")
		}
		working = next
		detached = append(detached, sub)
	}

	// Splice at the target.
	if placement == valueobjects.PlacementInside {
		working = working.Update(targetID, func(t *entities.Node) {
			t.Children = append(t.Children, detached...)
			t.IsCollapsed = false
		})
	} else {
		parent := working.ParentOf(targetID)
		if parent == nil {
			return pkgerrors.NewStructuralError("cannot insert siblings next to the root")
		}
		working = working.Update(parent.ID, func(p *entities.Node) {
			idx := -1
			for i, child := range p.Children {
				if child.ID.Equals(targetID) {
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
			rest := append([]*entities.Node{}, p.Children[idx:]...)
			p.Children = append(append(p.Children[:idx], detached...), rest...)
		})
	}

	movedIDs := make([]valueobjects.NodeID, len(dragged))
	for i, node := range dragged {
		movedIDs[i] = node.ID
	}

	d.commitTree(working)
	d.addEvent(events.NewNodesMoved(d.id.String(), d.version, movedIDs, targetID, placement))

	return nil
}

// PasteSubtrees clones the given subtrees with entirely fresh identities
// and appends them as children of the anchor, which is force-expanded.
// Returns the pasted copies in order.
func (d *Document) PasteSubtrees(anchorID valueobjects.NodeID, subtrees []*entities.Node) ([]*entities.Node, error) {
	if len(subtrees) == 0 {
		return nil, pkgerrors.NewValidationError("clipboard is empty")
	}
	if d.root.Find(anchorID) == nil {
		return nil, pkgerrors.NewNotFoundError("paste anchor")
	}

	pasted := make([]*entities.Node, len(subtrees))
	for i, subtree := range subtrees {
		pasted[i] = subtree.CloneWithFreshIDs()
	}

	newRoot := d.root.Update(anchorID, func(anchor *entities.Node) {
		anchor.Children = append(anchor.Children, pasted...)
		anchor.IsCollapsed = false
	})

	pastedIDs := make([]valueobjects.NodeID, len(pasted))
	for i, node := range pasted {
		pastedIDs[i] = node.ID
	}

	d.commitTree(newRoot)
	d.addEvent(events.NewNodesPasted(d.id.String(), d.version, anchorID, pastedIDs))

	return pasted, nil
}

// RestoreRoot replaces the committed tree with a prior snapshot (undo)
func (d *Document) RestoreRoot(snapshot *entities.Node) error {
	if snapshot == nil {
		return pkgerrors.NewValidationError("snapshot cannot be nil")
	}

	d.commitTree(snapshot)
	d.addEvent(events.NewDocumentReverted(d.id.String(), d.version))

	return nil
}

// ImportTree grafts a parsed external tree onto the document. The root's
// identity is fixed for the document's lifetime, so the imported root's
// content and children are adopted under the existing root id.
func (d *Document) ImportTree(imported *entities.Node, format string) error {
	if imported == nil {
		return pkgerrors.NewImportFormatError("imported tree is empty", nil)
	}

	adopted := imported.Clone()
	adopted.ID = d.root.ID

	d.commitTree(adopted)
	d.addEvent(events.NewTreeImported(d.id.String(), d.version, format, adopted.Count()))

	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (d *Document) GetUncommittedEvents() []events.DomainEvent {
	evts := make([]events.DomainEvent, len(d.events))
	copy(evts, d.events)
	return evts
}

// MarkEventsAsCommitted clears the uncommitted events
func (d *Document) MarkEventsAsCommitted() {
	d.events = []events.DomainEvent{}
}

// commitTree installs a new root and advances the mutation counter
func (d *Document) commitTree(root *entities.Node) {
	d.root = root
	d.updatedAt = time.Now()
	d.version++
}

func (d *Document) addEvent(event events.DomainEvent) {
	d.events = append(d.events, event)
}

// TopmostNodes resolves a set of ids to the topmost matching nodes in
// document (depth-first) order: when both a node and one of its
// descendants are in the set, only the ancestor is returned. Shared by
// clipboard capture and drag moves so subtrees are never double-counted.
func TopmostNodes(root *entities.Node, ids []valueobjects.NodeID) []*entities.Node {
	selected := make(map[valueobjects.NodeID]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}

	type hit struct {
		node  *entities.Node
		order int
	}
	var hits []hit
	order := 0
	root.Walk(func(n *entities.Node) bool {
		order++
		if _, ok := selected[n.ID]; ok {
			hits = append(hits, hit{node: n, order: order})
			// Descendant selections are absorbed into this subtree.
			return false
		}
		return true
	})

	sort.Slice(hits, func(i, j int) bool { return hits[i].order < hits[j].order })

	nodes := make([]*entities.Node, len(hits))
	for i, h := range hits {
		nodes[i] = h.node
	}
	return nodes
}
