package protocol // wire protocol between client and server

import "encoding/json"

// MessageType tags a WebSocket message envelope.
type MessageType string

const (
	// Client -> Server
	MsgJoin      MessageType = "join"
	MsgMove      MessageType = "move"
	MsgChat      MessageType = "chat" // also Server -> Client with ChatBroadcastPayload
	MsgStartGame MessageType = "start_game"

	// Server -> Client
	MsgJoinOK       MessageType = "join_ok"
	MsgJoinRejected MessageType = "join_rejected"
	MsgState        MessageType = "state"
	MsgSystem       MessageType = "system"
	MsgGameOver     MessageType = "game_over"
)

// Join rejection reasons.
const (
	ReasonWrongPassword  = "wrong_password"
	ReasonNameConflict   = "name_conflict"
	ReasonGameInProgress = "game_in_progress"
)

// Player roles assigned on join.
const (
	RoleHost  = "host"
	RoleGuest = "guest"
)

// Game phases as carried in StatePayload.
const (
	PhaseLobby       = "lobby"
	PhaseCountdown   = "countdown"
	PhasePlaying     = "playing"
	PhaseLeaderboard = "leaderboard"
)

// Message is the wrapper for all WebSocket messages.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JoinPayload is sent by a client asking to enter the lobby.
type JoinPayload struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// JoinOKPayload confirms a successful join. History carries the bounded
// chat backlog so late joiners see recent messages.
type JoinOKPayload struct {
	PlayerID string                 `json:"player_id"`
	Role     string                 `json:"role"`
	History  []ChatBroadcastPayload `json:"history,omitempty"`
}

// JoinRejectedPayload explains a refused join. The connection stays open
// for a bounded number of retries.
type JoinRejectedPayload struct {
	Reason string `json:"reason"`
}

// MovePayload is a displacement request in arena units.
type MovePayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ChatPayload is a client-sent chat line.
type ChatPayload struct {
	Text string `json:"text"`
}

// StartGamePayload is the host-only request to begin a game.
type StartGamePayload struct {
	DurationMinutes int `json:"duration_minutes"`
}

// PlayerSnapshot is one player's view-facing state.
type PlayerSnapshot struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score int     `json:"score"`
}

// CoinSnapshot is one collectible coin.
type CoinSnapshot struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// StatePayload is the authoritative view of the session. Tick increases
// monotonically so clients can discard stale frames.
type StatePayload struct {
	Tick          uint64           `json:"tick"`
	Phase         string           `json:"phase"`
	Players       []PlayerSnapshot `json:"players"`
	Coins         []CoinSnapshot   `json:"coins"`
	RemainingTime int              `json:"remaining_time"`
	HostID        string           `json:"host_id"`
}

// ChatBroadcastPayload is a chat line fanned out to clients.
type ChatBroadcastPayload struct {
	Sender    string `json:"sender"`
	Color     string `json:"color,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// SystemPayload is a server notification (joins, host changes, errors).
type SystemPayload struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// LeaderboardEntry is one row of the final ranking.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameOverPayload carries the final ranked score table.
type GameOverPayload struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// EncodeMessage encodes a message with its payload.
func EncodeMessage(msgType MessageType, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg := Message{
		Type:    msgType,
		Payload: payloadBytes,
	}

	return json.Marshal(msg)
}

// DecodeMessage decodes a message envelope.
func DecodeMessage(data []byte) (*Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
