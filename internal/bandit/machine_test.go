package bandit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingObserver struct {
	mu      sync.Mutex
	started int
	settled int
	notices int
	last    State
}

func (o *countingObserver) SpinStarted(_ string, _ State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *countingObserver) SpinSettled(_ string, s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settled++
	o.last = s
}

func (o *countingObserver) NoticeShown(_ string, _ State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notices++
}

func startMachine(t *testing.T, rules Rules, opts ...Option) (*Machine, *ManualClock) {
	t.Helper()
	clock := NewManualClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	m, err := NewMachine(rules, append([]Option{WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = m.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return m, clock
}

func TestMachineSpinScenario(t *testing.T) {
	obs := &countingObserver{}
	stops := [Reels]Symbol{Diamond, Diamond, Diamond}
	m, clock := startMachine(t, DefaultRules(), WithDrawer(FixedDrawer(stops)), WithObserver(obs))
	ctx := context.Background()

	s, err := m.Dispatch(ctx, "player-one", SpinPressed{})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if s.Credits != 180 || !s.Spinning {
		t.Fatalf("after press: credits=%d spinning=%v, want 180 true", s.Credits, s.Spinning)
	}

	clock.Advance(time.Second)
	s, _ = m.Snapshot(ctx, "player-one")
	if !s.Spinning {
		t.Fatal("spin settled before the delay elapsed")
	}

	clock.Advance(time.Second)
	s, _ = m.Snapshot(ctx, "player-one")
	if s.Spinning {
		t.Fatal("spin did not settle after the delay")
	}
	if s.Slots != stops || s.Outcome != OutcomeWinner || s.Credits != 240 {
		t.Errorf("settled: slots=%v outcome=%v credits=%d", s.Slots, s.Outcome, s.Credits)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.started != 1 || obs.settled != 1 {
		t.Errorf("observer started=%d settled=%d, want 1/1", obs.started, obs.settled)
	}
	if obs.last.Credits != 240 {
		t.Errorf("observer saw credits %d, want 240", obs.last.Credits)
	}
}

func TestMachineIgnoresPressWhileSpinning(t *testing.T) {
	m, clock := startMachine(t, DefaultRules(), WithDrawer(FixedDrawer([Reels]Symbol{Leaf, Grapes, Leaf})))
	ctx := context.Background()

	_, _ = m.Dispatch(ctx, "p", SpinPressed{})
	s, _ := m.Dispatch(ctx, "p", SpinPressed{})
	if s.Credits != 180 {
		t.Errorf("second press while spinning took another stake: credits=%d", s.Credits)
	}
	if clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want 1", clock.Pending())
	}

	clock.Advance(2 * time.Second)
	s, _ = m.Snapshot(ctx, "p")
	if s.Outcome != OutcomeLoser || s.Credits != 180 || s.Spins != 1 {
		t.Errorf("after settle: outcome=%v credits=%d spins=%d", s.Outcome, s.Credits, s.Spins)
	}
}

func TestMachineInsufficientCredits(t *testing.T) {
	rules := DefaultRules()
	rules.StartingCredits = 10
	obs := &countingObserver{}
	drawn := 0
	drawer := DrawerFunc(func([]Symbol) ([Reels]Symbol, error) {
		drawn++
		return [Reels]Symbol{Leaf, Leaf, Leaf}, nil
	})
	m, clock := startMachine(t, rules, WithDrawer(drawer), WithObserver(obs))
	ctx := context.Background()

	s, err := m.Dispatch(ctx, "broke", SpinPressed{})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !s.NoticeVisible || s.Credits != 10 || s.Spinning {
		t.Errorf("got notice=%v credits=%d spinning=%v, want true 10 false", s.NoticeVisible, s.Credits, s.Spinning)
	}
	clock.Advance(5 * time.Second)
	if _, err := m.Snapshot(ctx, "broke"); err != nil {
		t.Fatal(err)
	}
	if drawn != 0 {
		t.Errorf("drawer called %d times, want 0", drawn)
	}

	s, _ = m.Dispatch(ctx, "broke", NoticeDismissed{})
	if s.NoticeVisible {
		t.Error("notice still visible after dismiss")
	}
	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.notices != 1 {
		t.Errorf("notices = %d, want 1", obs.notices)
	}
}

func TestMachineSessionsAreIndependent(t *testing.T) {
	m, _ := startMachine(t, DefaultRules())
	ctx := context.Background()

	_, _ = m.Dispatch(ctx, "a", SpinPressed{})
	b, _ := m.Snapshot(ctx, "b")
	if b.Credits != 200 || b.Spinning {
		t.Errorf("session b affected by a: %+v", b)
	}
	if n, _ := m.Len(ctx); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
}

func TestMachineResetAbandonsSpin(t *testing.T) {
	m, clock := startMachine(t, DefaultRules(), WithDrawer(FixedDrawer([Reels]Symbol{Grapes, Grapes, Grapes})))
	ctx := context.Background()

	_, _ = m.Dispatch(ctx, "p", SpinPressed{})
	s, err := m.Reset(ctx, "p")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.Credits != 200 || s.Spinning {
		t.Errorf("after reset: %+v", s)
	}
	if clock.Pending() != 0 {
		t.Errorf("reset left %d timers pending", clock.Pending())
	}
	clock.Advance(2 * time.Second)
	s, _ = m.Snapshot(ctx, "p")
	if s.Credits != 200 || s.Outcome != OutcomeNone {
		t.Errorf("abandoned spin settled into new screen: %+v", s)
	}
}

// latchedClock hands out timers that have always already fired: Stop
// reports false and the callback stays runnable until fire is called.
type latchedClock struct {
	mu  sync.Mutex
	now time.Time
	fns []func()
}

type latchedTimer struct{}

func (latchedTimer) Stop() bool { return false }

func (c *latchedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *latchedClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, f)
	return latchedTimer{}
}

func (c *latchedClock) fire(i int) {
	c.mu.Lock()
	f := c.fns[i]
	c.mu.Unlock()
	f()
}

func TestMachineAbandonedSettleCannotFinishNextSpin(t *testing.T) {
	abandon := map[string]func(ctx context.Context, m *Machine) error{
		"reset": func(ctx context.Context, m *Machine) error {
			_, err := m.Reset(ctx, "p")
			return err
		},
		"remove": func(ctx context.Context, m *Machine) error {
			return m.Remove(ctx, "p")
		},
		"sweep": func(ctx context.Context, m *Machine) error {
			_, err := m.Sweep(ctx, -time.Second)
			return err
		},
	}
	for name, drop := range abandon {
		t.Run(name, func(t *testing.T) {
			clock := &latchedClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
			stops := [Reels]Symbol{Diamond, Diamond, Diamond}
			m, _ := startMachine(t, DefaultRules(), WithClock(clock), WithDrawer(FixedDrawer(stops)))
			ctx := context.Background()

			first, _ := m.Dispatch(ctx, "p", SpinPressed{})
			if err := drop(ctx, m); err != nil {
				t.Fatalf("abandon: %v", err)
			}
			second, _ := m.Dispatch(ctx, "p", SpinPressed{})
			if !second.Spinning || second.SpinToken == first.SpinToken {
				t.Fatalf("second spin reused token %d: %+v", first.SpinToken, second)
			}

			clock.fire(0)
			s, _ := m.Snapshot(ctx, "p")
			if !s.Spinning || s.Credits != 180 || s.Outcome != OutcomeNone {
				t.Errorf("abandoned settle finished the new spin: %+v", s)
			}

			clock.fire(1)
			s, _ = m.Snapshot(ctx, "p")
			if s.Spinning || s.Credits != 240 || s.Outcome != OutcomeWinner {
				t.Errorf("new spin did not settle: %+v", s)
			}
		})
	}
}

func TestMachineSweep(t *testing.T) {
	m, clock := startMachine(t, DefaultRules())
	ctx := context.Background()

	_, _ = m.Snapshot(ctx, "idle")
	clock.Advance(90 * time.Minute)
	_, _ = m.Snapshot(ctx, "active")
	clock.Advance(45 * time.Minute)

	removed, err := m.Sweep(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if n, _ := m.Len(ctx); n != 1 {
		t.Errorf("Len after sweep = %d, want 1", n)
	}
}

func TestMachineStopped(t *testing.T) {
	m, err := NewMachine(DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = m.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if _, err := m.Dispatch(context.Background(), "p", SpinPressed{}); !errors.Is(err, ErrMachineStopped) {
		t.Errorf("Dispatch after stop = %v, want ErrMachineStopped", err)
	}
}

func TestMachineDispatchCancelled(t *testing.T) {
	m, err := NewMachine(DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	// Loop never started, so the request can only end through ctx.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := m.Snapshot(ctx, "p"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Snapshot = %v, want deadline exceeded", err)
	}
}

func TestNewMachineRejectsInvalidRules(t *testing.T) {
	rules := DefaultRules()
	rules.Stake = 0
	if _, err := NewMachine(rules); !errors.Is(err, ErrInvalidRules) {
		t.Errorf("NewMachine = %v, want ErrInvalidRules", err)
	}
}
