package mesh

import (
	"sort"

	"github.com/segfault87/ldraw-go/color"
)

// GroupKey identifies one draw-order group of faces: the color a face was
// emitted with, and whether BFC culling was in effect for it.
type GroupKey struct {
	Color color.Reference
	BFC   bool
}

// isTranslucent reports whether k's color resolves to a translucent
// material. A reference that never resolved to a concrete color (Current,
// Complement, Unknown) is treated as opaque for ordering purposes.
func (k GroupKey) isTranslucent() bool {
	c, ok := k.Color.Color()
	return ok && c.IsTranslucent()
}

// Less orders group keys for deterministic packing: translucent groups
// sort after every opaque group; within the same translucency, ascending
// color code; within the same color, BFC-culled (true) after non-culled.
func (k GroupKey) Less(other GroupKey) bool {
	kt, ot := k.isTranslucent(), other.isTranslucent()
	if kt != ot {
		return !kt
	}
	if k.Color.Code() != other.Color.Code() {
		return k.Color.Code() < other.Color.Code()
	}
	return !k.BFC && other.BFC
}

// SortGroupKeys returns keys ordered per Less, for deterministic iteration
// over a map keyed by GroupKey.
func SortGroupKeys(keys []GroupKey) []GroupKey {
	out := make([]GroupKey, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
