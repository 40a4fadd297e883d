// Package codegen turns a project's element hierarchy into a ready-to-drop-in
// Angular component: template, stylesheet, class, and an NgModule wrapper.
// Output is deterministic for a given input so repeated exports diff clean.
package codegen

import (
	"strings"
	"unicode"

	"main/internal/element"
)

// Project carries the canvas settings the generated component needs.
type Project struct {
	Name             string
	CanvasWidth      int
	CanvasHeight     int
	CanvasBackground string
}

// Bundle is one generated Angular component.
type Bundle struct {
	ComponentName string `json:"componentName"`
	HTML          string `json:"html"`
	CSS           string `json:"css"`
	TS            string `json:"ts"`
	Module        string `json:"module"`
}

type generator struct {
	project       Project
	ids           *idAllocator
	controlKinds  map[string]string
	componentName string
	className     string
}

// Generate produces the full component bundle for a project's elements.
// Elements arrive as the flat persisted list; hierarchy rebuilds from the
// parent references and renders in insertion order.
func Generate(project Project, elements []*element.Element) Bundle {
	if project.CanvasWidth <= 0 {
		project.CanvasWidth = 1200
	}
	if project.CanvasHeight <= 0 {
		project.CanvasHeight = 800
	}

	g := &generator{
		project:       project,
		ids:           newIDAllocator(),
		controlKinds:  make(map[string]string),
		componentName: componentName(project.Name),
	}
	g.className = className(g.componentName)

	roots := buildTree(elements)

	html := g.emitHTML(roots)
	css := g.emitCSS(elements)
	ts := g.emitTS(elements)
	mod := g.emitModule()

	return Bundle{
		ComponentName: g.componentName,
		HTML:          html,
		CSS:           css,
		TS:            ts,
		Module:        mod,
	}
}

// componentName derives the kebab-case file stem from the project name.
func componentName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "-")
	var b strings.Builder
	for _, r := range name {
		if r == '-' || unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "design"
	}
	return out
}

// className derives the exported class name from the component stem.
func className(component string) string {
	parts := strings.Split(component, "-")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String() + "Component"
}
