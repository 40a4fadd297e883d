package element

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("element not found")
	ErrInvalidParent = errors.New("invalid parent")
	ErrCycle         = errors.New("reparent would create a cycle")
)

// Tree is the in-memory element store for one project: a flat id→element
// arena with parent pointers as ids. Children slices are maintained as the
// exact inverse of ParentID at all times.
type Tree struct {
	projectID string
	elements  map[string]*Element
	roots     []string
	order     []string // insertion order, for deterministic listing
	mu        sync.RWMutex
}

// NewTree creates an empty tree for a project.
func NewTree(projectID string) *Tree {
	return &Tree{
		projectID: projectID,
		elements:  make(map[string]*Element),
	}
}

// Seed loads a persisted flat element list, rebuilding parent/child links.
// Existing contents are discarded.
func (t *Tree) Seed(elements []*Element) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.elements = make(map[string]*Element, len(elements))
	t.roots = nil
	t.order = nil

	for _, el := range elements {
		cp := el.Clone()
		cp.Children = nil
		t.elements[cp.ID] = cp
		t.order = append(t.order, cp.ID)
	}

	// Links are derived from ParentID, not trusted from the input.
	for _, id := range t.order {
		el := t.elements[id]
		if el.ParentID == "" {
			t.roots = append(t.roots, id)
			continue
		}
		parent, ok := t.elements[el.ParentID]
		if !ok {
			// Dangling parent reference in persisted data: treat as root.
			el.ParentID = ""
			t.roots = append(t.roots, id)
			continue
		}
		parent.Children = append(parent.Children, id)
	}
}

// CreateAttrs are the caller-supplied fields for a new element.
type CreateAttrs struct {
	Type     string
	Name     string
	Content  string
	Position Position
	Size     Size
	Styles   map[string]any
	ParentID string
}

// Create validates the parent, inserts the element and links it under its
// owner (the parent's children or the project roots).
func (t *Tree) Create(attrs CreateAttrs) (*Element, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if attrs.ParentID != "" {
		if _, ok := t.elements[attrs.ParentID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidParent, attrs.ParentID)
		}
	}

	now := time.Now().UTC()
	el := &Element{
		ID:        uuid.NewString(),
		ProjectID: t.projectID,
		Type:      attrs.Type,
		Name:      attrs.Name,
		Content:   attrs.Content,
		Position:  attrs.Position,
		Size:      attrs.Size,
		Styles:    map[string]any{},
		ParentID:  attrs.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// copy, not alias: the caller keeps ownership of its map
	for k, v := range attrs.Styles {
		el.Styles[k] = v
	}

	t.insert(el)
	return el.Clone(), nil
}

// insert links an already-built element; caller holds the lock.
func (t *Tree) insert(el *Element) {
	t.elements[el.ID] = el
	t.order = append(t.order, el.ID)
	if el.ParentID == "" {
		t.roots = append(t.roots, el.ID)
	} else {
		parent := t.elements[el.ParentID]
		parent.Children = append(parent.Children, el.ID)
	}
}

// Get returns a copy of the element, if present.
func (t *Tree) Get(id string) (*Element, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	el, ok := t.elements[id]
	if !ok {
		return nil, false
	}
	return el.Clone(), true
}

// Update merges the patch into the element at field granularity: fields left
// nil keep their prior value. Concurrent updates from different participants
// are last-write-wins; no timestamp reconciliation is attempted.
func (t *Tree) Update(id string, patch Patch) (*Element, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if patch.ParentID != nil && *patch.ParentID != el.ParentID {
		if err := t.reparentLocked(el, *patch.ParentID); err != nil {
			return nil, err
		}
	}
	if patch.Name != nil {
		el.Name = *patch.Name
	}
	if patch.Content != nil {
		el.Content = *patch.Content
	}
	if patch.Position != nil {
		el.Position = *patch.Position
	}
	if patch.Size != nil {
		el.Size = *patch.Size
	}
	if patch.Styles != nil {
		el.Styles = patch.Styles
	}
	el.UpdatedAt = time.Now().UTC()

	return el.Clone(), nil
}

// Reparent moves the element under a new owner. The new parent must exist
// and must not be the element itself or any of its descendants.
func (t *Tree) Reparent(id, newParentID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.elements[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t.reparentLocked(el, newParentID)
}

func (t *Tree) reparentLocked(el *Element, newParentID string) error {
	if newParentID == el.ParentID {
		return nil
	}
	if newParentID != "" {
		newParent, ok := t.elements[newParentID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidParent, newParentID)
		}
		// Walk up from the candidate parent; hitting the element means the
		// candidate is the element itself or one of its descendants.
		for p := newParent; p != nil; {
			if p.ID == el.ID {
				return ErrCycle
			}
			if p.ParentID == "" {
				break
			}
			p = t.elements[p.ParentID]
		}
	}

	t.detach(el)
	el.ParentID = newParentID
	if newParentID == "" {
		t.roots = append(t.roots, el.ID)
	} else {
		parent := t.elements[newParentID]
		parent.Children = append(parent.Children, el.ID)
	}
	return nil
}

// detach removes the element from its current owner's child list (or the
// project roots); caller holds the lock.
func (t *Tree) detach(el *Element) {
	if el.ParentID == "" {
		t.roots = removeID(t.roots, el.ID)
		return
	}
	if parent, ok := t.elements[el.ParentID]; ok {
		parent.Children = removeID(parent.Children, el.ID)
	}
}

// Delete removes the element and its entire subtree, children before parent,
// and returns the removed ids in deletion order.
func (t *Tree) Delete(id string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t.deleteLocked(el), nil
}

func (t *Tree) deleteLocked(el *Element) []string {
	t.detach(el)

	var removed []string
	var walk func(e *Element)
	walk = func(e *Element) {
		for _, childID := range append([]string(nil), e.Children...) {
			if child, ok := t.elements[childID]; ok {
				walk(child)
			}
		}
		delete(t.elements, e.ID)
		t.order = removeID(t.order, e.ID)
		removed = append(removed, e.ID)
	}
	walk(el)

	return removed
}

// Duplicate deep-copies a single node (not its subtree) with a decorated
// name and a (+20,+20) position offset, attached under the same owner.
func (t *Tree) Duplicate(id string) (*Element, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	src, ok := t.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := time.Now().UTC()
	cp := src.Clone()
	cp.ID = uuid.NewString()
	cp.Name = src.Name + " copy"
	cp.Position = Position{X: src.Position.X + 20, Y: src.Position.Y + 20}
	cp.Children = nil
	cp.CreatedAt = now
	cp.UpdatedAt = now

	t.insert(cp)
	return cp.Clone(), nil
}

// List returns copies of all elements in insertion order.
func (t *Tree) List() []*Element {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Element, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.elements[id].Clone())
	}
	return out
}

// Len returns the number of elements in the tree.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.elements)
}

// Roots returns the ids of elements that sit directly under the project.
func (t *Tree) Roots() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.roots...)
}

// ApplyAdded merges an element-added broadcast from a peer. Re-adding an id
// that already exists overwrites it (last message wins).
func (t *Tree) ApplyAdded(el *Element) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.elements[el.ID]; exists {
		t.applyUpdateLocked(el)
		return
	}
	cp := el.Clone()
	cp.Children = nil
	if cp.ParentID != "" {
		if _, ok := t.elements[cp.ParentID]; !ok {
			cp.ParentID = ""
		}
	}
	t.insert(cp)
}

// ApplyUpdated merges an element-updated broadcast from a peer. An update for
// an element that was deleted locally is a no-op, never an error: the delete
// simply won the race.
func (t *Tree) ApplyUpdated(el *Element) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.elements[el.ID]; !exists {
		return
	}
	t.applyUpdateLocked(el)
}

func (t *Tree) applyUpdateLocked(el *Element) {
	cur := t.elements[el.ID]
	if el.ParentID != cur.ParentID {
		// Ignore the remote parent if it would be invalid here; position and
		// the rest of the fields still apply.
		if err := t.reparentLocked(cur, el.ParentID); err != nil && !errors.Is(err, ErrCycle) && !errors.Is(err, ErrInvalidParent) {
			return
		}
	}
	cur.Type = el.Type
	cur.Name = el.Name
	cur.Content = el.Content
	cur.Position = el.Position
	cur.Size = el.Size
	if el.Styles != nil {
		cur.Styles = el.Clone().Styles
	}
	cur.UpdatedAt = el.UpdatedAt
}

// ApplyDeleted merges an element-deleted broadcast from a peer; unknown ids
// are a no-op.
func (t *Tree) ApplyDeleted(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, exists := t.elements[id]; exists {
		t.deleteLocked(el)
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
