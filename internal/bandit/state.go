package bandit

import "time"

// Reels is the number of slots on the machine.
const Reels = 3

// State is everything the screen shows for one session.
type State struct {
	Credits       int
	Outcome       Outcome
	Spinning      bool
	Slots         [Reels]Symbol
	NoticeVisible bool
	// SpinToken identifies the spin in flight; a settle carrying any other
	// token is stale and dropped.
	SpinToken uint64
	Spins     int
	Wins      int
}

// NewState returns the screen as first displayed.
func NewState(rules Rules) State {
	return State{
		Credits: rules.StartingCredits,
		Slots:   [Reels]Symbol{Diamond, QuestionMark, Grapes},
	}
}

// CanSpin reports whether the spin control is enabled.
func (s State) CanSpin(rules Rules) bool {
	return !s.Spinning && s.Credits >= rules.Stake
}

// Msg is an input to Update.
type Msg interface {
	isMsg()
}

// SpinPressed is the player pressing the spin control.
type SpinPressed struct{}

// SpinSettled carries the draw for the spin identified by Token.
type SpinSettled struct {
	Token   uint64
	Symbols [Reels]Symbol
}

// NoticeDismissed is the player closing the insufficient-credits notice.
type NoticeDismissed struct{}

func (SpinPressed) isMsg()     {}
func (SpinSettled) isMsg()     {}
func (NoticeDismissed) isMsg() {}

// Effect is work the loop must schedule after an update. The zero value
// means nothing to do.
type Effect struct {
	Settle bool
	Token  uint64
	Delay  time.Duration
}

// IsWin reports whether all reels show the same symbol.
func IsWin(symbols [Reels]Symbol) bool {
	for _, s := range symbols[1:] {
		if s != symbols[0] {
			return false
		}
	}
	return true
}

// Update applies msg to s. It never draws: the draw arrives with SpinSettled
// once the delay has elapsed.
func Update(rules Rules, s State, msg Msg) (State, Effect) {
	var eff Effect
	switch m := msg.(type) {
	case SpinPressed:
		if s.CanSpin(rules) {
			s.Credits -= rules.Stake
			s.Outcome = OutcomeNone
			s.Spinning = true
			s.SpinToken++
			eff = Effect{Settle: true, Token: s.SpinToken, Delay: rules.SpinDelay}
		}
		// Checked after the stake is taken, so the spin that empties the
		// balance raises the notice straight away.
		if s.Credits < rules.Stake {
			s.NoticeVisible = true
		}
	case SpinSettled:
		if !s.Spinning || m.Token != s.SpinToken {
			return s, eff
		}
		s.Spinning = false
		s.Slots = m.Symbols
		s.Spins++
		if IsWin(m.Symbols) {
			s.Outcome = OutcomeWinner
			s.Credits += rules.Payout
			s.Wins++
		} else {
			s.Outcome = OutcomeLoser
		}
	case NoticeDismissed:
		s.NoticeVisible = false
	}
	return s, eff
}
