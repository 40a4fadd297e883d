package element

import (
	"time"
)

// Position: canvas-absolute coordinates in design units
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size: element dimensions in design units
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is one placed design node (widget) on a project canvas.
// ParentID is empty for elements that sit directly under the project;
// Children is always the ordered inverse of ParentID.
type Element struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	Type      string         `json:"type"`
	Name      string         `json:"name"`
	Content   string         `json:"content"`
	Position  Position       `json:"position"`
	Size      Size           `json:"size"`
	Styles    map[string]any `json:"styles"`
	ParentID  string         `json:"parentId,omitempty"`
	Children  []string       `json:"children"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// AllowedTypes is the fixed set of widget kinds an element may have.
var AllowedTypes = map[string]bool{
	"container": true,
	"text":      true,
	"button":    true,
	"image":     true,
	"input":     true,
	"checkbox":  true,
	"radio":     true,
	"select":    true,
	"icon":      true,
	"textarea":  true,
	"navbar":    true,
	"link":      true,
	"menu":      true,
	"menuItem":  true,
	"card":      true,
	"hero":      true,
	"footer":    true,
	"carousel":  true,
	"video":     true,
	"avatar":    true,
	"alert":     true,
	"badge":     true,
	"tooltip":   true,
	"progress":  true,
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (e *Element) Clone() *Element {
	cp := *e
	if e.Styles != nil {
		cp.Styles = make(map[string]any, len(e.Styles))
		for k, v := range e.Styles {
			cp.Styles[k] = v
		}
	}
	if e.Children != nil {
		cp.Children = append([]string(nil), e.Children...)
	}
	return &cp
}

// Patch describes a field-granular update. Nil fields keep their prior value.
type Patch struct {
	Name     *string
	Content  *string
	Position *Position
	Size     *Size
	Styles   map[string]any // replaces the whole mapping when non-nil
	ParentID *string        // reparent; empty string means project root
}
