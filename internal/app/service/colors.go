package service

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Solarized accents for the fixed embeds.
const (
	colorBlue = 0x268bd2
	colorRed  = 0xdc322f
)

// rainbow returns n visually distinct embed colors, one per menu.
// Deterministic for a given n; evenly spaced hues, slightly desaturated so
// the embeds don't scream.
func rainbow(n int) []int {
	out := make([]int, n)
	for i := range out {
		h := 360.0 * float64(i) / float64(max(n, 1))
		r, g, b := colorful.Hsv(h, 0.62, 0.93).RGB255()
		out[i] = int(r)<<16 | int(g)<<8 | int(b)
	}
	return out
}
