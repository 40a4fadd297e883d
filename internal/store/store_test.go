package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"main/internal/element"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestProjectLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, "alice", "Landing", 0, 0, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.CanvasWidth != 1200 || p.CanvasHeight != 800 || p.CanvasBackground != "#ffffff" {
		t.Errorf("defaults not applied: %+v", p)
	}

	got, err := s.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Landing" || got.OwnerID != "alice" {
		t.Errorf("unexpected project: %+v", got)
	}

	updated, err := s.UpdateProject(ctx, "alice", p.ID, ProjectPatch{Name: strPtr("Landing v2")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Landing v2" {
		t.Errorf("name not updated: %q", updated.Name)
	}

	if _, err := s.UpdateProject(ctx, "bob", p.ID, ProjectPatch{Name: strPtr("hijack")}); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner update: got %v, want ErrForbidden", err)
	}

	if err := s.DeleteProject(ctx, "bob", p.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete: got %v, want ErrForbidden", err)
	}
	if err := s.DeleteProject(ctx, "alice", p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetProject(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: got %v, want ErrNotFound", err)
	}
}

func TestSharingAndAccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, "alice", "Shared", 0, 0, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Access(ctx, "bob", p.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger access: got %v, want ErrForbidden", err)
	}
	if err := s.ShareProject(ctx, "bob", p.ID, "carol"); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner share: got %v, want ErrForbidden", err)
	}

	if err := s.ShareProject(ctx, "alice", p.ID, "bob"); err != nil {
		t.Fatalf("share: %v", err)
	}
	// repeat share is a no-op
	if err := s.ShareProject(ctx, "alice", p.ID, "bob"); err != nil {
		t.Fatalf("repeat share: %v", err)
	}

	if err := s.Access(ctx, "bob", p.ID); err != nil {
		t.Errorf("collaborator access: %v", err)
	}
	if err := s.Access(ctx, "alice", p.ID); err != nil {
		t.Errorf("owner access: %v", err)
	}

	projects, err := s.ListProjects(ctx, "bob")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != p.ID {
		t.Errorf("collaborator should see the shared project: %+v", projects)
	}
}

func TestElementCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, "alice", "Design", 0, 0, "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	el, err := s.CreateElement(ctx, &element.Element{
		ProjectID: p.ID,
		Type:      "button",
		Name:      "CTA",
		Content:   "Click me",
		Position:  element.Position{X: 100, Y: 50},
		Size:      element.Size{Width: 120, Height: 40},
		Styles:    map[string]any{"backgroundColor": "#4285f4"},
	})
	if err != nil {
		t.Fatalf("create element: %v", err)
	}
	if el.ID == "" {
		t.Fatal("element should get an id")
	}

	got, err := s.GetElement(ctx, p.ID, el.ID)
	if err != nil {
		t.Fatalf("get element: %v", err)
	}
	if got.Styles["backgroundColor"] != "#4285f4" {
		t.Errorf("styles lost in round trip: %+v", got.Styles)
	}

	updated, err := s.UpdateElement(ctx, p.ID, el.ID, element.Patch{
		Content:  strPtr("Buy now"),
		Position: &element.Position{X: 200, Y: 60},
	})
	if err != nil {
		t.Fatalf("update element: %v", err)
	}
	if updated.Content != "Buy now" || updated.Position.X != 200 {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.Size.Width != 120 {
		t.Errorf("untouched fields should survive: %+v", updated)
	}

	if _, err := s.GetElement(ctx, p.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing element: got %v, want ErrNotFound", err)
	}
}

func TestListElementsRebuildsChildren(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, _ := s.CreateProject(ctx, "alice", "Design", 0, 0, "")
	parent, err := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "container", Name: "Wrap", Size: element.Size{Width: 400, Height: 300}})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "text", Name: "Inner", ParentID: parent.ID, Size: element.Size{Width: 100, Height: 30}})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	elements, err := s.ListElements(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("want 2 elements, got %d", len(elements))
	}
	if elements[0].ID != parent.ID {
		t.Errorf("creation order should hold: %+v", elements)
	}
	if len(elements[0].Children) != 1 || elements[0].Children[0] != child.ID {
		t.Errorf("children not rebuilt: %+v", elements[0].Children)
	}
}

func TestCreateElementRejectsUnknownParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, _ := s.CreateProject(ctx, "alice", "Design", 0, 0, "")
	_, err := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "text", Name: "Orphan", ParentID: "ghost", Size: element.Size{Width: 10, Height: 10}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestReparentRejectsCycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, _ := s.CreateProject(ctx, "alice", "Design", 0, 0, "")
	a, _ := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "container", Name: "A", Size: element.Size{Width: 10, Height: 10}})
	b, _ := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "container", Name: "B", ParentID: a.ID, Size: element.Size{Width: 10, Height: 10}})

	if _, err := s.UpdateElement(ctx, p.ID, a.ID, element.Patch{ParentID: &b.ID}); !errors.Is(err, element.ErrCycle) {
		t.Errorf("reparent under descendant: got %v, want ErrCycle", err)
	}
	self := a.ID
	if _, err := s.UpdateElement(ctx, p.ID, a.ID, element.Patch{ParentID: &self}); !errors.Is(err, element.ErrCycle) {
		t.Errorf("reparent under self: got %v, want ErrCycle", err)
	}
}

func TestDeleteElementRemovesSubtree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, _ := s.CreateProject(ctx, "alice", "Design", 0, 0, "")
	root, _ := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "container", Name: "Root", Size: element.Size{Width: 10, Height: 10}})
	mid, _ := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "container", Name: "Mid", ParentID: root.ID, Size: element.Size{Width: 10, Height: 10}})
	leaf, _ := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "text", Name: "Leaf", ParentID: mid.ID, Size: element.Size{Width: 10, Height: 10}})
	other, _ := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "text", Name: "Other", Size: element.Size{Width: 10, Height: 10}})

	removed, err := s.DeleteElement(ctx, p.ID, root.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(removed) != 3 {
		t.Fatalf("want 3 removed, got %v", removed)
	}
	if removed[len(removed)-1] != root.ID {
		t.Errorf("root should be removed last: %v", removed)
	}
	if _, err := s.GetElement(ctx, p.ID, leaf.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("descendant should be gone: %v", err)
	}
	if _, err := s.GetElement(ctx, p.ID, other.ID); err != nil {
		t.Errorf("sibling should survive: %v", err)
	}
}

func TestDuplicateElement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, _ := s.CreateProject(ctx, "alice", "Design", 0, 0, "")
	src, _ := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "button", Name: "CTA", Position: element.Position{X: 100, Y: 100}, Size: element.Size{Width: 120, Height: 40}})

	cp, err := s.DuplicateElement(ctx, p.ID, src.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if cp.ID == src.ID {
		t.Error("copy should get a new id")
	}
	if cp.Name != "CTA copy" {
		t.Errorf("copy name = %q, want CTA copy", cp.Name)
	}
	if cp.Position.X != 120 || cp.Position.Y != 120 {
		t.Errorf("copy should be offset: %+v", cp.Position)
	}
}

func TestDeleteProjectCascadesToElements(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, _ := s.CreateProject(ctx, "alice", "Design", 0, 0, "")
	el, _ := s.CreateElement(ctx, &element.Element{ProjectID: p.ID, Type: "text", Name: "T", Size: element.Size{Width: 10, Height: 10}})

	if err := s.DeleteProject(ctx, "alice", p.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := s.GetElement(ctx, p.ID, el.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("elements should cascade: %v", err)
	}
}
