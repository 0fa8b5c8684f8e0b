// Package tile builds the bordered, shadowed slot image shown for each reel.
package tile

import (
	"fmt"
	"html/template"

	"github.com/samber/lo"

	"onearmedbandit/internal/bandit"
)

const (
	Size         = 120
	BorderWidth  = 1
	CornerRadius = 4
	ShadowBlur   = 4
	SpinOpacity  = 0.3
	StillOpacity = 1.0
	borderColour = "#000"
	shadowColour = "rgba(0, 0, 0, 0.35)"
)

// Tile is the view model of one reel window.
type Tile struct {
	Image    string
	Alt      string
	Size     int
	Opacity  float64
	Spinning bool
}

// New returns the tile for symbol. A spinning tile shows the blurred image
// at reduced opacity.
func New(symbol bandit.Symbol, spinning bool) Tile {
	t := Tile{
		Image:   symbol.Image(),
		Alt:     symbol.Label(),
		Size:    Size,
		Opacity: StillOpacity,
	}
	if spinning {
		t.Image = symbol.BlurredImage()
		t.Opacity = SpinOpacity
		t.Spinning = true
	}
	return t
}

// Row returns one tile per reel.
func Row(slots [bandit.Reels]bandit.Symbol, spinning bool) []Tile {
	return lo.Map(slots[:], func(s bandit.Symbol, _ int) Tile {
		return New(s, spinning)
	})
}

// Style is the inline CSS for the tile container.
func (t Tile) Style() template.CSS {
	return template.CSS(fmt.Sprintf(
		"width:%dpx;height:%dpx;border:%dpx solid %s;border-radius:%dpx;box-shadow:0 %dpx %dpx %s;opacity:%.1f",
		t.Size, t.Size, BorderWidth, borderColour, CornerRadius, ShadowBlur/2, ShadowBlur, shadowColour, t.Opacity,
	))
}
