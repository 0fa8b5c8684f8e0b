package bandit

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Default game parameters.
const (
	DefaultStake           = 20
	DefaultPayout          = 60
	DefaultStartingCredits = 200
	DefaultSpinDelay       = 2 * time.Second
)

// ErrInvalidRules is returned by Rules.Validate and LoadRules.
var ErrInvalidRules = errors.New("invalid machine rules")

// Rules holds the fixed economics of a machine.
type Rules struct {
	Stake           int           `yaml:"stake"`
	Payout          int           `yaml:"payout"`
	StartingCredits int           `yaml:"starting_credits"`
	SpinDelay       time.Duration `yaml:"spin_delay"`
	Symbols         []Symbol      `yaml:"symbols"`
}

// DefaultRules returns the stock 20-credit machine.
func DefaultRules() Rules {
	return Rules{
		Stake:           DefaultStake,
		Payout:          DefaultPayout,
		StartingCredits: DefaultStartingCredits,
		SpinDelay:       DefaultSpinDelay,
		Symbols:         append([]Symbol(nil), AllSymbols...),
	}
}

// Validate checks the rules can drive a machine.
func (r Rules) Validate() error {
	switch {
	case r.Stake <= 0:
		return fmt.Errorf("%w: stake must be positive, got %d", ErrInvalidRules, r.Stake)
	case r.Payout < 0:
		return fmt.Errorf("%w: payout must not be negative, got %d", ErrInvalidRules, r.Payout)
	case r.StartingCredits < 0:
		return fmt.Errorf("%w: starting credits must not be negative, got %d", ErrInvalidRules, r.StartingCredits)
	case r.SpinDelay < 0:
		return fmt.Errorf("%w: spin delay must not be negative, got %v", ErrInvalidRules, r.SpinDelay)
	case len(r.Symbols) == 0:
		return fmt.Errorf("%w: at least one symbol is required", ErrInvalidRules)
	}
	if bad, found := lo.Find(r.Symbols, func(s Symbol) bool { return !s.Valid() }); found {
		return fmt.Errorf("%w: unknown symbol %d", ErrInvalidRules, int(bad))
	}
	if dups := lo.FindDuplicates(r.Symbols); len(dups) > 0 {
		return fmt.Errorf("%w: symbol %s listed more than once", ErrInvalidRules, dups[0])
	}
	return nil
}

// LoadRules reads a YAML rules file. Fields missing from the file keep
// their default value.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read machine config: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("%w: parse %s: %v", ErrInvalidRules, path, err)
	}
	if err := rules.Validate(); err != nil {
		return rules, err
	}
	return rules, nil
}
