package domain

import "math/rand"

type Color string

// Palette holds the session colors handed out at join time.
var Palette = []Color{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#96CEB4",
	"#FFEAA7",
	"#DDA0DD",
	"#98D8C8",
}

// AssignColor picks a color from the palette. The rng is injected so tests
// can seed it and get stable assignments.
func AssignColor(palette []Color, rng *rand.Rand) Color {
	return palette[rng.Intn(len(palette))]
}
