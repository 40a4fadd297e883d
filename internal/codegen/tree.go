package codegen

import (
	"main/internal/element"
)

// node wraps an element with resolved children so the emitters can recurse
// without mutating their input.
type node struct {
	el       *element.Element
	children []*node
}

// buildTree rebuilds the parent→children hierarchy from the flat persisted
// list. Input order is preserved, so a stable input yields a stable tree.
func buildTree(elements []*element.Element) []*node {
	byParent := make(map[string][]*element.Element)
	for _, el := range elements {
		byParent[el.ParentID] = append(byParent[el.ParentID], el)
	}

	var assemble func(parentID string) []*node
	assemble = func(parentID string) []*node {
		els := byParent[parentID]
		out := make([]*node, 0, len(els))
		for _, el := range els {
			out = append(out, &node{
				el:       el,
				children: assemble(el.ID),
			})
		}
		return out
	}
	return assemble("")
}
