package main

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"onearmedbandit/internal/bandit"
	"onearmedbandit/internal/tile"
	"onearmedbandit/internal/types"
)

// buildScreen turns a session state into the template view model.
func buildScreen(rules bandit.Rules, s bandit.State) Screen {
	return Screen{
		Credits:       s.Credits,
		Tiles:         tile.Row(s.Slots, s.Spinning),
		OutcomeLabel:  s.Outcome.Label(),
		Winner:        s.Outcome == bandit.OutcomeWinner,
		Spinning:      s.Spinning,
		CanSpin:       s.CanSpin(rules),
		NoticeVisible: s.NoticeVisible,
		SpinLabel:     fmt.Sprintf("Spin: %d Credits", rules.Stake),
		PollInterval:  SpinPollInterval,
	}
}

// buildMachineView is the JSON form of a session state.
func buildMachineView(rules bandit.Rules, s bandit.State) types.MachineView {
	tiles := tile.Row(s.Slots, s.Spinning)
	return types.MachineView{
		Credits:       s.Credits,
		Outcome:       s.Outcome.String(),
		OutcomeLabel:  s.Outcome.Label(),
		Spinning:      s.Spinning,
		CanSpin:       s.CanSpin(rules),
		NoticeVisible: s.NoticeVisible,
		Slots: lo.Map(tiles, func(t tile.Tile, i int) types.TileView {
			return types.TileView{
				Symbol:   s.Slots[i].String(),
				Image:    t.Image,
				Opacity:  t.Opacity,
				Spinning: t.Spinning,
			}
		}),
		Stake:     rules.Stake,
		Payout:    rules.Payout,
		Spins:     s.Spins,
		Wins:      s.Wins,
		Timestamp: time.Now().UTC(),
	}
}
