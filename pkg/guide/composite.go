package guide

import (
	"strings"

	"clipforge/internal/layout"
)

// Composite is a guide entry together with the following entries whose
// images it absorbed. Children are not compiled on their own.
type Composite struct {
	Parent   Entry
	Children []Entry
}

// ImageIDs returns the parent's image ids followed by the children's.
func (c Composite) ImageIDs() []string {
	ids := append([]string(nil), c.Parent.IDs()...)
	for _, child := range c.Children {
		ids = append(ids, child.IDs()...)
	}
	return ids
}

// GroupComposites groups entries before compilation. An entry whose layout
// has more slots than it lists images absorbs the immediately following
// single-image entries without text, up to the number of missing images.
func GroupComposites(entries []Entry) []Composite {
	var out []Composite
	for i := 0; i < len(entries); {
		parent := entries[i]
		i++
		comp := Composite{Parent: parent}

		missing := 0
		if parent.WantsImages() {
			if name, ok := layout.Parse(parent.Layout); ok {
				missing = name.Slots() - len(parent.IDs())
			}
		}
		for missing > 0 && i < len(entries) && absorbable(entries[i]) {
			comp.Children = append(comp.Children, entries[i])
			missing--
			i++
		}
		out = append(out, comp)
	}
	return out
}

func absorbable(e Entry) bool {
	return e.WantsImages() && len(e.IDs()) == 1 && strings.TrimSpace(e.Text) == ""
}
