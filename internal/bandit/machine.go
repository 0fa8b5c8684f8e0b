package bandit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrMachineStopped is returned once the event loop has exited.
var ErrMachineStopped = errors.New("machine stopped")

// Observer is told about state transitions worth counting. Calls are made
// from the loop goroutine and must not call back into the Machine.
type Observer interface {
	SpinStarted(sessionID string, s State)
	SpinSettled(sessionID string, s State)
	NoticeShown(sessionID string, s State)
}

type nopObserver struct{}

func (nopObserver) SpinStarted(string, State) {}
func (nopObserver) SpinSettled(string, State) {}
func (nopObserver) NoticeShown(string, State) {}

type session struct {
	state    State
	lastSeen time.Time
	timer    Timer
}

// Machine runs every session's screen on a single event loop. Session state
// is only read or written by the goroutine inside Run, so it needs no lock.
type Machine struct {
	rules    Rules
	drawer   Drawer
	clock    Clock
	observer Observer
	logger   *zap.Logger

	requests chan func()
	done     chan struct{}
	stopOnce sync.Once

	sessions map[string]*session

	// lastToken is the highest spin token handed out. New sessions start
	// from it so a settle queued for a dropped session can never match.
	lastToken uint64
}

// Option configures a Machine.
type Option func(*Machine)

// WithDrawer replaces the crypto/rand drawer.
func WithDrawer(d Drawer) Option {
	return func(m *Machine) { m.drawer = d }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithObserver registers an observer for spin events.
func WithObserver(o Observer) Option {
	return func(m *Machine) { m.observer = o }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// NewMachine returns a Machine for rules. Call Run to start the loop.
func NewMachine(rules Rules, opts ...Option) (*Machine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{
		rules:    rules,
		drawer:   CryptoDrawer{},
		clock:    SystemClock,
		observer: nopObserver{},
		logger:   zap.NewNop(),
		requests: make(chan func()),
		done:     make(chan struct{}),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Rules returns the machine's rules.
func (m *Machine) Rules() Rules {
	return m.rules
}

// Run processes requests until ctx is cancelled. Pending spins are dropped
// on exit.
func (m *Machine) Run(ctx context.Context) error {
	defer m.stop()
	m.logger.Info("machine loop started",
		zap.Int("stake", m.rules.Stake),
		zap.Int("payout", m.rules.Payout),
		zap.Duration("spin_delay", m.rules.SpinDelay))
	for {
		select {
		case fn := <-m.requests:
			fn()
		case <-ctx.Done():
			m.logger.Info("machine loop stopping", zap.Int("sessions", len(m.sessions)))
			return nil
		}
	}
}

func (m *Machine) stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		for _, s := range m.sessions {
			if s.timer != nil {
				s.timer.Stop()
			}
		}
	})
}

// do runs fn on the loop goroutine and waits for it to finish.
func (m *Machine) do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	req := func() {
		defer close(ran)
		fn()
	}
	select {
	case m.requests <- req:
	case <-m.done:
		return ErrMachineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ran
	return nil
}

// post queues fn from a timer goroutine without waiting for it.
func (m *Machine) post(fn func()) {
	select {
	case m.requests <- fn:
	case <-m.done:
	}
}

func (m *Machine) session(id string) *session {
	s, ok := m.sessions[id]
	if !ok {
		s = &session{state: NewState(m.rules)}
		s.state.SpinToken = m.lastToken
		m.sessions[id] = s
		m.logger.Debug("session created", zap.String("session", id))
	}
	s.lastSeen = m.clock.Now()
	return s
}

// Dispatch applies msg to the session's state and returns the new state.
// Unknown sessions start from NewState.
func (m *Machine) Dispatch(ctx context.Context, sessionID string, msg Msg) (State, error) {
	var out State
	err := m.do(ctx, func() {
		out = m.apply(sessionID, msg)
	})
	return out, err
}

func (m *Machine) apply(sessionID string, msg Msg) State {
	s := m.session(sessionID)
	before := s.state
	next, eff := Update(m.rules, before, msg)
	s.state = next

	if eff.Settle {
		token := eff.Token
		m.lastToken = max(m.lastToken, token)
		s.timer = m.clock.AfterFunc(eff.Delay, func() {
			m.post(func() { m.settle(sessionID, token) })
		})
		m.logger.Debug("spin started",
			zap.String("session", sessionID),
			zap.Uint64("token", token),
			zap.Int("credits", next.Credits))
		m.observer.SpinStarted(sessionID, next)
	}
	if next.NoticeVisible && !before.NoticeVisible {
		m.observer.NoticeShown(sessionID, next)
	}
	return next
}

// settle draws the reels for token and feeds the result back through Update.
func (m *Machine) settle(sessionID string, token uint64) {
	s, ok := m.sessions[sessionID]
	if !ok {
		m.logger.Debug("settle for swept session dropped", zap.String("session", sessionID))
		return
	}
	if !s.state.Spinning || s.state.SpinToken != token {
		m.logger.Debug("stale settle dropped",
			zap.String("session", sessionID),
			zap.Uint64("token", token),
			zap.Uint64("current", s.state.SpinToken))
		return
	}
	stops, err := m.drawer.Draw(m.rules.Symbols)
	if err != nil {
		m.logger.Warn("draw failed, using fallback stops", zap.String("session", sessionID), zap.Error(err))
	}
	s.timer = nil
	s.state, _ = Update(m.rules, s.state, SpinSettled{Token: token, Symbols: stops})
	m.logger.Debug("spin settled",
		zap.String("session", sessionID),
		zap.Stringers("stops", stops[:]),
		zap.Stringer("outcome", s.state.Outcome),
		zap.Int("credits", s.state.Credits))
	m.observer.SpinSettled(sessionID, s.state)
}

// Snapshot returns the session's current state, creating it if needed.
func (m *Machine) Snapshot(ctx context.Context, sessionID string) (State, error) {
	var out State
	err := m.do(ctx, func() {
		out = m.session(sessionID).state
	})
	return out, err
}

// Reset replaces the session's state with a fresh screen. A spin in flight
// for the old screen is abandoned.
func (m *Machine) Reset(ctx context.Context, sessionID string) (State, error) {
	var out State
	err := m.do(ctx, func() {
		m.drop(sessionID)
		out = m.session(sessionID).state
	})
	return out, err
}

// Remove forgets the session.
func (m *Machine) Remove(ctx context.Context, sessionID string) error {
	return m.do(ctx, func() { m.drop(sessionID) })
}

func (m *Machine) drop(sessionID string) {
	if s, ok := m.sessions[sessionID]; ok {
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(m.sessions, sessionID)
	}
}

// Sweep removes sessions not seen for longer than maxIdle and returns how
// many were removed.
func (m *Machine) Sweep(ctx context.Context, maxIdle time.Duration) (int, error) {
	var removed int
	err := m.do(ctx, func() {
		now := m.clock.Now()
		expired := lo.PickBy(m.sessions, func(_ string, s *session) bool {
			return s.lastSeen.IsZero() || now.Sub(s.lastSeen) > maxIdle
		})
		for id := range expired {
			m.drop(id)
		}
		removed = len(expired)
	})
	return removed, err
}

// Len returns the number of live sessions.
func (m *Machine) Len(ctx context.Context) (int, error) {
	var n int
	err := m.do(ctx, func() { n = len(m.sessions) })
	return n, err
}
