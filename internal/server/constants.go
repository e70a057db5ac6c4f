package server

import "time"

// Arena geometry. The arena is a fixed 800x600 plane; player and coin
// hitboxes are squares centered on their position.
const (
	arenaWidth  = 800.0
	arenaHeight = 600.0
	playerSize  = 64.0
	coinSize    = 32.0

	// Two players closer than this push each other apart.
	collisionRadius = playerSize

	// A player within this distance of a coin collects it.
	collectRadius = playerSize / 2
)

// Tuning holds the timing knobs of the session lifecycle. Tests shrink
// these to run a full game cycle in milliseconds.
type Tuning struct {
	TickInterval    time.Duration // one simulation time-unit
	SpawnInterval   time.Duration // between coin spawns while playing
	Countdown       time.Duration // pre-game delay after start_game
	LeaderboardHold time.Duration // final score screen duration
	MaxJoinAttempts int           // rejected joins allowed before dropping the conn
	ChatHistory     int           // bounded backlog sent to late joiners
}

// DefaultTuning returns the production timings: 1-second ticks, a coin
// every 5 seconds, a 3-second countdown and a 10-second leaderboard.
func DefaultTuning() Tuning {
	return Tuning{
		TickInterval:    time.Second,
		SpawnInterval:   5 * time.Second,
		Countdown:       3 * time.Second,
		LeaderboardHold: 10 * time.Second,
		MaxJoinAttempts: 3,
		ChatHistory:     100,
	}
}
