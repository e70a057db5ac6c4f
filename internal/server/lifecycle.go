package server

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/yourusername/coin-chaos/internal/protocol"
)

// The session cycles LOBBY -> COUNTDOWN -> PLAYING -> LEADERBOARD ->
// LOBBY. Each timed leg runs on its own goroutine; every transition
// re-checks the phase under the world lock so a stale timer firing
// after a reset mutates nothing.

// StartGame begins the countdown. Only the host may start, only from
// the lobby, with a duration of 1 to 99 minutes. The returned string is
// empty on success or a reason reported back to the caller alone.
func (g *Game) StartGame(playerID string, durationMinutes int) string {
	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != protocol.PhaseLobby {
		return "the game can only be started from the lobby"
	}
	if playerID != g.hostID {
		return "only the host can start the game"
	}
	if durationMinutes < 1 || durationMinutes > 99 {
		return "duration must be between 1 and 99 minutes"
	}

	host := g.players[playerID]
	log.Printf("[GAME] %s started a %d minute game", host.Name, durationMinutes)
	g.phase = protocol.PhaseCountdown
	g.systemLocked(fmt.Sprintf("%s started a %d minute game. Get ready!", host.Name, durationMinutes))
	g.broadcastStateLocked()

	go g.runCountdown(durationMinutes)
	return ""
}

// runCountdown holds the pre-game delay, then flips the session into
// play: scores zeroed, coins cleared, timer armed, spawner started.
func (g *Game) runCountdown(durationMinutes int) {
	t := time.NewTimer(g.tuning.Countdown)
	defer t.Stop()
	select {
	case <-g.ctx.Done():
		return
	case <-t.C:
	}

	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != protocol.PhaseCountdown {
		return
	}

	for _, p := range g.order {
		p.Score = 0
	}
	g.coins = nil
	g.remaining = durationMinutes * 60
	g.phase = protocol.PhasePlaying

	spawnCtx, cancel := context.WithCancel(g.ctx)
	g.stopSpawner = cancel
	go g.runSpawner(spawnCtx)
	go g.runClock()

	g.systemLocked("Go! Collect the coins!")
	g.broadcastStateLocked()
}

// runClock drives the playing phase: one simulation tick per interval
// until the timer runs out or the phase changes under it. The clock
// keeps running when every player disconnects; the lifecycle completes
// deterministically with nobody watching.
func (g *Game) runClock() {
	ticker := time.NewTicker(g.tuning.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-g.ctx.Done():
			return
		case <-ticker.C:
		}
		if g.stepTick() {
			return
		}
	}
}

// stepTick advances the world one time-unit. Reports true when the
// playing phase is over.
func (g *Game) stepTick() bool {
	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != protocol.PhasePlaying {
		return true
	}
	g.remaining--
	resolveCollisions(g.order)
	g.collectCoinsLocked()
	if g.remaining <= 0 {
		g.endGameLocked()
		return true
	}
	g.broadcastStateLocked()
	return false
}

// endGameLocked freezes scores, cancels the spawner and publishes the
// final ranking, then holds on the leaderboard.
func (g *Game) endGameLocked() {
	if g.stopSpawner != nil {
		g.stopSpawner()
		g.stopSpawner = nil
	}
	g.phase = protocol.PhaseLeaderboard
	g.remaining = 0
	g.coins = nil

	log.Printf("[GAME] time's up, showing leaderboard")
	g.broadcastStateLocked()
	g.broadcastLocked(protocol.MsgGameOver, protocol.GameOverPayload{Leaderboard: rankPlayers(g.order)})

	go g.runLeaderboard()
}

// runLeaderboard holds the final score screen, then disconnects
// everyone and resets the session to an empty lobby.
func (g *Game) runLeaderboard() {
	t := time.NewTimer(g.tuning.LeaderboardHold)
	defer t.Stop()
	select {
	case <-g.ctx.Done():
		return
	case <-t.C:
	}

	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != protocol.PhaseLeaderboard {
		return
	}

	log.Printf("[RESET] leaderboard over, resetting for a new game")
	for _, p := range g.order {
		g.pendingClose = append(g.pendingClose, pendingClose{p.conn, "Game Over"})
	}
	g.players = make(map[string]*Player)
	g.order = nil
	g.coins = nil
	g.hostID = ""
	g.nextSeq = 0
	g.phase = protocol.PhaseLobby
	g.chat.reset()
}

// rankPlayers orders by descending score; equal scores rank by earlier
// join. players must be in join order, which makes the stable sort's
// tie-break deterministic.
func rankPlayers(players []*Player) []protocol.LeaderboardEntry {
	ranked := append([]*Player(nil), players...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	board := make([]protocol.LeaderboardEntry, 0, len(ranked))
	for _, p := range ranked {
		board = append(board, protocol.LeaderboardEntry{Name: p.Name, Score: p.Score})
	}
	return board
}
