package server

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/coin-chaos/internal/protocol"
)

// runSpawner materializes one coin per interval while the game is
// playing. It is cancelled, not merely skipped, at the end of the game:
// the context is cancelled under the same transition that leaves the
// playing phase, and trySpawnCoin re-checks the phase inside the world
// lock, so a tick already in flight inserts nothing.
func (g *Game) runSpawner(ctx context.Context) {
	ticker := time.NewTicker(g.tuning.SpawnInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !g.trySpawnCoin() {
			return
		}
	}
}

// trySpawnCoin inserts a coin iff the session is still playing. Phase
// check and insertion share one critical section.
func (g *Game) trySpawnCoin() bool {
	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != protocol.PhasePlaying {
		return false
	}
	coin := &Coin{
		ID:        uuid.New().String(),
		X:         spawnCoord(coinSize, arenaWidth),
		Y:         spawnCoord(coinSize, arenaHeight),
		SpawnedAt: time.Now(),
	}
	g.coins = append(g.coins, coin)
	log.Printf("[SPAWN] coin at (%.0f, %.0f)", coin.X, coin.Y)
	g.broadcastStateLocked()
	return true
}
