package server

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/coin-chaos/internal/protocol"
)

// Conn is the transport half of a connected client. Enqueue must never
// block; it reports false when the client's send buffer is full, which
// the game treats as a dead connection.
type Conn interface {
	Enqueue(data []byte) bool
	Close(reason string)
}

// Player is a joined participant. The position is the center of a
// playerSize square; joinSeq preserves lobby entry order for host
// succession and leaderboard tie-breaks.
type Player struct {
	ID    string
	Name  string
	Color string
	X, Y  float64
	Score int

	joinSeq int
	conn    Conn
}

// Coin is a collectible spawned during play.
type Coin struct {
	ID        string
	X, Y      float64
	SpawnedAt time.Time
}

type pendingClose struct {
	conn   Conn
	reason string
}

// Game is the single authoritative session: one arena, one lobby, one
// game at a time. Every read-modify-write of players, coins, phase and
// timer happens under mu. Snapshots are encoded and enqueued to
// per-connection buffers while holding mu (ordering guarantee); actual
// network writes happen in each connection's write pump.
type Game struct {
	mu       sync.Mutex
	tuning   Tuning
	password string

	phase     string
	players   map[string]*Player
	order     []*Player // join order, order[0] joined earliest
	coins     []*Coin
	remaining int // ticks left in the playing phase
	hostID    string
	nextSeq   int
	tick      uint64
	chat      *chatRelay

	pendingClose []pendingClose

	ctx         context.Context
	cancel      context.CancelFunc
	stopSpawner context.CancelFunc
}

// NewGame creates an empty lobby guarded by the given shared password.
func NewGame(password string, tuning Tuning) *Game {
	ctx, cancel := context.WithCancel(context.Background())
	return &Game{
		tuning:   tuning,
		password: password,
		phase:    protocol.PhaseLobby,
		players:  make(map[string]*Player),
		chat:     newChatRelay(tuning.ChatHistory),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Shutdown cancels the lifecycle timers and drains every connection.
func (g *Game) Shutdown() {
	g.cancel()
	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.order {
		g.pendingClose = append(g.pendingClose, pendingClose{p.conn, "server shutting down"})
	}
	g.players = make(map[string]*Player)
	g.order = nil
	g.coins = nil
	g.hostID = ""
	g.phase = protocol.PhaseLobby
}

// Join admits a player into the lobby. It returns the join confirmation
// on success, or a protocol rejection reason. A rejected join mutates
// nothing and leaves the connection open for retry.
func (g *Game) Join(conn Conn, name, password string) (*protocol.JoinOKPayload, string) {
	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()

	if password != g.password {
		return nil, protocol.ReasonWrongPassword
	}
	if g.phase != protocol.PhaseLobby {
		return nil, protocol.ReasonGameInProgress
	}
	for _, p := range g.order {
		if p.Name == name {
			return nil, protocol.ReasonNameConflict
		}
	}

	p := &Player{
		ID:      uuid.New().String(),
		Name:    name,
		Color:   randomColor(),
		X:       spawnCoord(playerSize, arenaWidth),
		Y:       spawnCoord(playerSize, arenaHeight),
		joinSeq: g.nextSeq,
		conn:    conn,
	}
	g.nextSeq++
	g.players[p.ID] = p
	g.order = append(g.order, p)

	role := protocol.RoleGuest
	if g.hostID == "" {
		g.hostID = p.ID
		role = protocol.RoleHost
		log.Printf("[JOIN] %s is the host", p.Name)
	}
	log.Printf("[JOIN] %s joined the lobby", p.Name)

	ok := &protocol.JoinOKPayload{PlayerID: p.ID, Role: role, History: g.chat.history()}
	g.sendLocked(p, protocol.MsgJoinOK, ok)
	g.systemLocked(fmt.Sprintf("%s has joined!", p.Name))
	g.broadcastStateLocked()
	return ok, ""
}

// Leave removes a disconnected player, reassigning the host role to the
// earliest-joined remaining player when needed. Safe to call twice.
func (g *Game) Leave(playerID string) {
	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.players[playerID]; !ok {
		return
	}
	g.removePlayerLocked(playerID, "")
	if len(g.order) > 0 {
		g.broadcastStateLocked()
	} else if g.phase == protocol.PhaseLobby {
		// Empty lobby returns to its initial form. The game timer, if
		// running, continues deterministically without observers.
		g.nextSeq = 0
		g.coins = nil
		g.chat.reset()
	}
}

// Move applies a displacement to a player, then resolves collisions and
// coin pickups. Ignored outside the playing phase.
func (g *Game) Move(playerID string, dx, dy float64) {
	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok || g.phase != protocol.PhasePlaying {
		return
	}
	p.X = clampToArena(p.X+dx, arenaWidth)
	p.Y = clampToArena(p.Y+dy, arenaHeight)
	resolveCollisions(g.order)
	g.collectCoinsLocked()
	g.broadcastStateLocked()
}

// Chat relays a player message to everyone else, in server arrival
// order. The sender echoes locally and is skipped here.
func (g *Game) Chat(playerID, text string) {
	defer g.flushCloses()
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok || text == "" {
		return
	}
	entry := g.chat.append(p.Name, p.Color, text)
	data, err := protocol.EncodeMessage(protocol.MsgChat, entry)
	if err != nil {
		log.Printf("[CHAT] encode failed: %v", err)
		return
	}
	g.fanoutLocked(data, p.ID)
}

// Snapshot returns the current authoritative view without bumping the
// broadcast sequence. Used by the diagnostics endpoint and tests.
func (g *Game) Snapshot() protocol.StatePayload {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// collectCoinsLocked awards coins to players in join order. A coin is
// removed from the working set the moment it is collected, so two
// players can never collect the same coin in one tick.
func (g *Game) collectCoinsLocked() {
	for _, p := range g.order {
		for i := 0; i < len(g.coins); {
			c := g.coins[i]
			if math.Hypot(p.X-c.X, p.Y-c.Y) <= collectRadius {
				g.coins = append(g.coins[:i], g.coins[i+1:]...)
				p.Score++
				continue
			}
			i++
		}
	}
}

// removePlayerLocked deletes a player and announces it. When the host
// leaves, the earliest-joined remaining player is promoted.
func (g *Game) removePlayerLocked(playerID, reason string) {
	p, ok := g.players[playerID]
	if !ok {
		return
	}
	delete(g.players, playerID)
	for i, q := range g.order {
		if q.ID == playerID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.pendingClose = append(g.pendingClose, pendingClose{p.conn, reason})
	log.Printf("[DISCONNECT] %s left the game", p.Name)

	if g.hostID == playerID {
		if len(g.order) > 0 {
			g.hostID = g.order[0].ID
			log.Printf("[HOST] %s promoted to host", g.order[0].Name)
			g.systemLocked(fmt.Sprintf("%s is now the host.", g.order[0].Name))
		} else {
			g.hostID = ""
		}
	}
	g.systemLocked(fmt.Sprintf("%s has disconnected.", p.Name))
}

// systemLocked records a system notification and fans it out to all.
func (g *Game) systemLocked(text string) {
	entry := g.chat.appendSystem(text)
	data, err := protocol.EncodeMessage(protocol.MsgSystem, protocol.SystemPayload{
		Text:      entry.Text,
		Timestamp: entry.Timestamp,
	})
	if err != nil {
		log.Printf("[SYSTEM] encode failed: %v", err)
		return
	}
	g.fanoutLocked(data, "")
}

// broadcastStateLocked stamps the next tick sequence and enqueues the
// snapshot to every connection. Enqueue is buffered and non-blocking, so
// a slow connection never stalls the others; a full buffer drops the
// offender instead.
func (g *Game) broadcastStateLocked() {
	g.tick++
	data, err := protocol.EncodeMessage(protocol.MsgState, g.snapshotLocked())
	if err != nil {
		log.Printf("[STATE] encode failed: %v", err)
		return
	}
	g.fanoutLocked(data, "")
}

func (g *Game) broadcastLocked(msgType protocol.MessageType, payload interface{}) {
	data, err := protocol.EncodeMessage(msgType, payload)
	if err != nil {
		log.Printf("[BROADCAST] encode %s failed: %v", msgType, err)
		return
	}
	g.fanoutLocked(data, "")
}

// fanoutLocked enqueues data to every player except skipID, removing
// players whose buffers are full. Iterates a copy: removal mutates order.
func (g *Game) fanoutLocked(data []byte, skipID string) {
	targets := append([]*Player(nil), g.order...)
	for _, p := range targets {
		if p.ID == skipID {
			continue
		}
		if _, still := g.players[p.ID]; !still {
			continue
		}
		if !p.conn.Enqueue(data) {
			log.Printf("[DROP] %s not keeping up, disconnecting", p.Name)
			g.removePlayerLocked(p.ID, "send buffer full")
		}
	}
}

func (g *Game) sendLocked(p *Player, msgType protocol.MessageType, payload interface{}) {
	data, err := protocol.EncodeMessage(msgType, payload)
	if err != nil {
		log.Printf("[SEND] encode %s failed: %v", msgType, err)
		return
	}
	if !p.conn.Enqueue(data) {
		g.removePlayerLocked(p.ID, "send buffer full")
	}
}

func (g *Game) snapshotLocked() protocol.StatePayload {
	state := protocol.StatePayload{
		Tick:          g.tick,
		Phase:         g.phase,
		Players:       make([]protocol.PlayerSnapshot, 0, len(g.order)),
		Coins:         make([]protocol.CoinSnapshot, 0, len(g.coins)),
		RemainingTime: g.remaining,
		HostID:        g.hostID,
	}
	for _, p := range g.order {
		state.Players = append(state.Players, protocol.PlayerSnapshot{
			ID:    p.ID,
			Name:  p.Name,
			Color: p.Color,
			X:     p.X,
			Y:     p.Y,
			Score: p.Score,
		})
	}
	for _, c := range g.coins {
		state.Coins = append(state.Coins, protocol.CoinSnapshot{ID: c.ID, X: c.X, Y: c.Y})
	}
	return state
}

// flushCloses closes connections scheduled for removal. Runs after the
// world lock is released: Close touches the network.
func (g *Game) flushCloses() {
	g.mu.Lock()
	pend := g.pendingClose
	g.pendingClose = nil
	g.mu.Unlock()
	for _, pc := range pend {
		pc.conn.Close(pc.reason)
	}
}

// spawnCoord draws a uniform coordinate keeping a margin off the edges.
func spawnCoord(margin, limit float64) float64 {
	return margin + rand.Float64()*(limit-2*margin)
}

func clampToArena(v, limit float64) float64 {
	return math.Max(playerSize/2, math.Min(limit-playerSize/2, v))
}

func randomColor() string {
	return fmt.Sprintf("#%02X%02X%02X", 100+rand.Intn(156), 100+rand.Intn(156), 100+rand.Intn(156))
}
