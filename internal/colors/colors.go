// Package colors assigns diary colors to owners. Assignment is keyed by a
// stable hash of the owner id, never by list position, so a color survives
// reordering and filtering of the staff list.
package colors

import "hash/fnv"

var palette = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#17becf",
	"#bcbd22",
	"#7f7f7f",
}

// ForOwner returns the owner's diary color. An explicit override from the
// preference store wins over the hashed default.
func ForOwner(ownerID string, overrides map[string]string) string {
	if c, ok := overrides[ownerID]; ok && c != "" {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(ownerID))
	return palette[h.Sum32()%uint32(len(palette))]
}
