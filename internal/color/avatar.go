// Package color assigns display colors to users without stored preferences.
package color

import "hash/fnv"

// palette holds muted hex colors that stay readable behind white initials.
var palette = []string{
	"#7C9A92", // sage
	"#A98467", // clay
	"#6B8CAE", // slate blue
	"#9A7CA8", // heather
	"#C08552", // ochre
	"#5F8575", // pine
	"#B06D6D", // brick
	"#7E7F9A", // dusk
	"#8FA65C", // olive
	"#6FA3A0", // teal
	"#AD8A64", // sand
	"#96616B", // plum
}

// ForUser picks a palette color for a user ID. The same ID always maps to
// the same color, so avatars stay stable across sessions and devices.
func ForUser(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return palette[h.Sum32()%uint32(len(palette))]
}
