package bandit

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Symbol is one of the images a reel can stop on.
type Symbol int

const (
	Leaf Symbol = iota
	Diamond
	QuestionMark
	Grapes
)

// AllSymbols is the fixed symbol set, in reel order.
var AllSymbols = []Symbol{Leaf, Diamond, QuestionMark, Grapes}

var symbolNames = map[Symbol]string{
	Leaf:         "leaf",
	Diamond:      "diamond",
	QuestionMark: "question_mark",
	Grapes:       "grapes",
}

// String returns the asset name of the symbol.
func (s Symbol) String() string {
	if name, ok := symbolNames[s]; ok {
		return name
	}
	return fmt.Sprintf("symbol(%d)", int(s))
}

// Valid reports whether s belongs to the fixed symbol set.
func (s Symbol) Valid() bool {
	_, ok := symbolNames[s]
	return ok
}

// Image is the static path of the still image.
func (s Symbol) Image() string {
	return "/static/img/" + s.String() + ".svg"
}

// BlurredImage is the static path of the motion-blurred image shown while spinning.
func (s Symbol) BlurredImage() string {
	return "/static/img/" + s.String() + "_blurred.svg"
}

// Label is a human readable name, used as image alt text.
func (s Symbol) Label() string {
	return strings.ReplaceAll(s.String(), "_", " ")
}

// ParseSymbol resolves an asset name ("leaf", "question_mark", ...) to a Symbol.
func ParseSymbol(name string) (Symbol, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	sym, ok := lo.FindKey(symbolNames, key)
	if !ok {
		return 0, fmt.Errorf("unknown symbol %q", name)
	}
	return sym, nil
}

// MarshalText implements encoding.TextMarshaler so symbols serialise by name.
func (s Symbol) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown symbol %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Symbol) UnmarshalText(text []byte) error {
	sym, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}
	*s = sym
	return nil
}

// Outcome is the result label of the last settled spin.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWinner
	OutcomeLoser
)

// Label is the text shown under the reels.
func (o Outcome) Label() string {
	switch o {
	case OutcomeWinner:
		return "Winner"
	case OutcomeLoser:
		return "Bad Luck"
	default:
		return ""
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeWinner:
		return "winner"
	case OutcomeLoser:
		return "loser"
	default:
		return "none"
	}
}
