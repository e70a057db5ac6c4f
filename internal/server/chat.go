package server

import (
	"time"

	"github.com/yourusername/coin-chaos/internal/protocol"
)

// systemSender labels relay entries not written by a player.
const systemSender = "system"

// chatRelay keeps the bounded message backlog served to late joiners.
// It is guarded by Game.mu: appends happen inside the same critical
// section as the fan-out, which is what makes chat order global rather
// than per-sender.
type chatRelay struct {
	limit   int
	entries []protocol.ChatBroadcastPayload
}

func newChatRelay(limit int) *chatRelay {
	return &chatRelay{limit: limit}
}

// append records a player message and returns the stamped entry.
func (r *chatRelay) append(sender, color, text string) protocol.ChatBroadcastPayload {
	return r.push(protocol.ChatBroadcastPayload{
		Sender:    sender,
		Color:     color,
		Text:      text,
		Timestamp: chatTimestamp(),
	})
}

// appendSystem records a server notification.
func (r *chatRelay) appendSystem(text string) protocol.ChatBroadcastPayload {
	return r.push(protocol.ChatBroadcastPayload{
		Sender:    systemSender,
		Text:      text,
		Timestamp: chatTimestamp(),
	})
}

func (r *chatRelay) push(entry protocol.ChatBroadcastPayload) protocol.ChatBroadcastPayload {
	r.entries = append(r.entries, entry)
	if len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
	return entry
}

// history returns a copy of the backlog, oldest first.
func (r *chatRelay) history() []protocol.ChatBroadcastPayload {
	if len(r.entries) == 0 {
		return nil
	}
	out := make([]protocol.ChatBroadcastPayload, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *chatRelay) reset() {
	r.entries = nil
}

// chatTimestamp formats the wall clock the way chat lines display it.
func chatTimestamp() string {
	return time.Now().Format("15:04")
}
