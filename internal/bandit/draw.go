package bandit

import (
	"crypto/rand"
	"errors"
	"math/big"
)

var errNoSymbols = errors.New("no symbols to draw from")

// Drawer picks the reel stops for a spin.
type Drawer interface {
	Draw(symbols []Symbol) ([Reels]Symbol, error)
}

// CryptoDrawer draws every reel independently and uniformly, with
// replacement, from crypto/rand.
type CryptoDrawer struct{}

// Draw implements Drawer. When the random source fails the affected reel
// falls back to the first symbol and the error is returned alongside the
// completed draw.
func (CryptoDrawer) Draw(symbols []Symbol) ([Reels]Symbol, error) {
	var out [Reels]Symbol
	if len(symbols) == 0 {
		return out, errNoSymbols
	}
	var errs []error
	size := big.NewInt(int64(len(symbols)))
	for i := range out {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			errs = append(errs, err)
			out[i] = symbols[0]
			continue
		}
		out[i] = symbols[n.Int64()]
	}
	return out, errors.Join(errs...)
}

// DrawerFunc adapts a function to Drawer.
type DrawerFunc func(symbols []Symbol) ([Reels]Symbol, error)

func (f DrawerFunc) Draw(symbols []Symbol) ([Reels]Symbol, error) { return f(symbols) }

// FixedDrawer always returns the same stops.
func FixedDrawer(stops [Reels]Symbol) Drawer {
	return DrawerFunc(func([]Symbol) ([Reels]Symbol, error) { return stops, nil })
}
