package dialogue

import (
	"sync"

	"github.com/instalily/partsassist/internal/rag"
)

// historyLimit bounds the per-session conversation ring buffer.
const historyLimit = 8

// History keeps the last few conversation turns per session. It only feeds
// fallback prompt construction and is independent of the structured
// session fields.
type History struct {
	mu    sync.Mutex
	turns map[string][]rag.Turn
}

// NewHistory creates an empty history buffer.
func NewHistory() *History {
	return &History{turns: make(map[string][]rag.Turn)}
}

// Append records one turn and trims the buffer to the last entries.
func (h *History) Append(sessionID, role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := append(h.turns[sessionID], rag.Turn{Role: role, Content: content})
	if len(buf) > historyLimit {
		buf = buf[len(buf)-historyLimit:]
	}
	h.turns[sessionID] = buf
}

// Turns returns a copy of the session's buffered turns.
func (h *History) Turns(sessionID string) []rag.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.turns[sessionID]
	out := make([]rag.Turn, len(buf))
	copy(out, buf)
	return out
}
