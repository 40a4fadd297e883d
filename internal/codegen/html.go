package codegen

import (
	"fmt"
	"strings"

	"main/internal/element"
)

// emitHTML renders the element hierarchy as an Angular template. Elements
// render pre-order, children nested inside their parent's tag. Containers
// with children render the children instead of their text content.
func (g *generator) emitHTML(roots []*node) string {
	var b strings.Builder
	b.WriteString(`<div class="design-canvas">`)
	b.WriteString("\n")
	for _, n := range roots {
		g.emitNode(&b, n, 1)
	}
	b.WriteString("</div>\n")
	return b.String()
}

func (g *generator) emitNode(b *strings.Builder, n *node, depth int) {
	el := n.el
	d := descriptorFor(el.Type)
	id := g.ids.idFor(el.Name)
	indent := strings.Repeat("  ", depth)

	class := id
	if d.classPrefix != "" {
		class = d.classPrefix + " " + id
	}

	b.WriteString(indent)
	fmt.Fprintf(b, `<%s class="%s"`, d.tag, class)
	if d.attrs != nil {
		b.WriteString(d.attrs(g, id, el.Name, el.Content))
	}
	if d.void {
		b.WriteString(">\n")
		return
	}
	b.WriteString(">")

	switch {
	case len(n.children) > 0:
		b.WriteString("\n")
		for _, c := range n.children {
			g.emitNode(b, c, depth+1)
		}
		b.WriteString(indent)
	case d.inner != nil:
		d.inner(g, b, id, el.Content, indent)
		if !d.innerInline {
			b.WriteString("\n" + indent)
		}
	default:
		b.WriteString(el.Content)
	}

	fmt.Fprintf(b, "</%s>\n", d.tag)
}

// controlIDs walks the hierarchy pre-order and collects the identifiers of
// form-bound elements, deduplicated. Radio buttons share a single group
// control instead of contributing their own.
func (g *generator) controlIDs(elements []*element.Element) (ids []string, hasRadio bool) {
	seen := make(map[string]bool)
	for _, el := range elements {
		d := descriptorFor(el.Type)
		if !d.formControl {
			continue
		}
		if el.Type == "radio" {
			hasRadio = true
			continue
		}
		id := g.ids.idFor(el.Name)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
			g.controlKinds[id] = el.Type
		}
	}
	return ids, hasRadio
}
