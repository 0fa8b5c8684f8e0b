package types

import "time"

type TileView struct {
	Symbol   string  `json:"symbol"`
	Image    string  `json:"image"`
	Opacity  float64 `json:"opacity"`
	Spinning bool    `json:"spinning"`
}

type MachineView struct {
	Credits       int        `json:"credits"`
	Outcome       string     `json:"outcome"`
	OutcomeLabel  string     `json:"outcomeLabel"`
	Spinning      bool       `json:"spinning"`
	CanSpin       bool       `json:"canSpin"`
	NoticeVisible bool       `json:"noticeVisible"`
	Slots         []TileView `json:"slots"`
	Stake         int        `json:"stake"`
	Payout        int        `json:"payout"`
	Spins         int        `json:"spins"`
	Wins          int        `json:"wins"`
	Timestamp     time.Time  `json:"timestamp"`
}
