// Package color derives stable display colors for users.
package color

import (
	"fmt"
	"math"

	"github.com/zeebo/blake3"
)

// Palette saturation and lightness. Fixed so every hue stays readable on
// both light and dark backgrounds.
const (
	saturation = 0.4
	lightness  = 0.65
)

// ForUser returns a "#RRGGBB" color for userID. The same id always maps to
// the same color.
func ForUser(userID string) string {
	sum := blake3.Sum256([]byte(userID))
	hue := float64((uint16(sum[0])<<8|uint16(sum[1]))%360) / 360

	r, g, b := hslToRGB(hue, saturation, lightness)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h, s, l in [0,1] to 8-bit channels.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := channel(l)
		return v, v, v
	}

	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	return channel(hueToRGB(p, q, h+1.0/3)),
		channel(hueToRGB(p, q, h)),
		channel(hueToRGB(p, q, h-1.0/3))
}

func hueToRGB(p, q, t float64) float64 {
	t -= math.Floor(t)
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
