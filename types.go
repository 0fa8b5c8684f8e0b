package main

import (
	"sync"
	"time"

	"onearmedbandit/internal/bandit"
	"onearmedbandit/internal/tile"
)

// App holds the server-wide dependencies shared by every handler.
type App struct {
	Machine *bandit.Machine
	Rules   bandit.Rules
	Metrics *Metrics

	IsProduction   bool
	CookieMaxAge   time.Duration
	SessionTimeout time.Duration
	SweepInterval  time.Duration
	StaticCacheAge time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	LimiterMap   map[string]*clientLimiter
	LimiterMutex sync.Mutex

	StartTime time.Time
}

// Screen is what the templates render for one session.
type Screen struct {
	Credits       int
	Tiles         []tile.Tile
	OutcomeLabel  string
	Winner        bool
	Spinning      bool
	CanSpin       bool
	NoticeVisible bool
	SpinLabel     string
	PollInterval  string
}
