package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForUser_Stable(t *testing.T) {
	a := ForUser("user-123")
	assert.Equal(t, a, ForUser("user-123"))
	assert.Regexp(t, hexColor, a)
	assert.Regexp(t, hexColor, ForUser(""))
}

func TestForUser_Varies(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		seen[ForUser(id)] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		name    string
		h, s, l float64
		r, g, b uint8
	}{
		{"gray", 0, 0, 0.5, 128, 128, 128},
		{"red", 0, 1, 0.5, 255, 0, 0},
		{"green", 1.0 / 3, 1, 0.5, 0, 255, 0},
		{"blue", 2.0 / 3, 1, 0.5, 0, 0, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := hslToRGB(tt.h, tt.s, tt.l)
			assert.Equal(t, []uint8{tt.r, tt.g, tt.b}, []uint8{r, g, b})
		})
	}
}
