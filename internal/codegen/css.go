package codegen

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"main/internal/element"
)

// emitCSS renders the component stylesheet: a host block sized to the canvas,
// one absolutely positioned block per element, then per-type sub-component
// rules and responsive scaling. Elements render in list order and style keys
// sort alphabetically so repeated exports are byte-identical.
func (g *generator) emitCSS(elements []*element.Element) string {
	var b strings.Builder

	fmt.Fprintf(&b, ":host {\n  display: block;\n  position: relative;\n  width: %dpx;\n  height: %dpx;\n  background-color: %s;\n  overflow: hidden;\n}\n\n",
		g.project.CanvasWidth, g.project.CanvasHeight, canvasBackground(g.project))

	fmt.Fprintf(&b, ".design-canvas {\n  position: relative;\n  width: 100%%;\n  height: 100%%;\n}\n\n")

	for _, el := range elements {
		g.emitElementCSS(&b, el)
	}

	// elements sharing a name share an identifier; one block per identifier
	seen := make(map[string]bool, len(elements))
	for _, el := range elements {
		id := g.ids.idFor(el.Name)
		if seen[id] {
			continue
		}
		seen[id] = true
		fmt.Fprintf(&b, "@media (max-width: 768px) {\n  .%s {\n    transform: scale(var(--responsive-scale, 1));\n    transform-origin: top left;\n  }\n}\n\n", id)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (g *generator) emitElementCSS(b *strings.Builder, el *element.Element) {
	d := descriptorFor(el.Type)
	id := g.ids.idFor(el.Name)

	fmt.Fprintf(b, ".%s {\n", id)
	fmt.Fprintf(b, "  position: absolute;\n")
	fmt.Fprintf(b, "  left: %spx;\n", formatCoord(el.Position.X))
	fmt.Fprintf(b, "  top: %spx;\n", formatCoord(el.Position.Y))
	fmt.Fprintf(b, "  width: %spx;\n", formatCoord(el.Size.Width))
	fmt.Fprintf(b, "  height: %spx;\n", formatCoord(el.Size.Height))

	set := make(map[string]bool, len(el.Styles))
	keys := make([]string, 0, len(el.Styles))
	for k := range el.Styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := styleValue(el.Styles[k])
		if v == "" || v == "none" || v == "transparent" {
			continue
		}
		set[k] = true
		fmt.Fprintf(b, "  %s: %s;\n", camelToKebab(k), v)
	}

	for _, dc := range d.alwaysCSS {
		fmt.Fprintf(b, "  %s: %s;\n", dc.prop, dc.value)
	}
	for _, fb := range d.fallbackCSS {
		if set[fb.styleKey] {
			continue
		}
		fmt.Fprintf(b, "  %s: %s;\n", fb.prop, fb.value)
	}
	b.WriteString("}\n\n")

	if d.extraCSS != nil {
		d.extraCSS(b, "."+id)
	}
}

// styleValue renders a style map entry as CSS text. Numbers get px units,
// everything else stringifies plainly. Nested values are dropped.
func styleValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatCoord(t) + "px"
	case int:
		return fmt.Sprintf("%dpx", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// formatCoord prints a coordinate without a trailing .0 for whole values.
func formatCoord(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// camelToKebab converts camelCase style keys to their CSS property names.
func camelToKebab(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func canvasBackground(p Project) string {
	if p.CanvasBackground != "" {
		return p.CanvasBackground
	}
	return "#ffffff"
}
