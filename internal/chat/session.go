package chat

import (
	"time"

	"github.com/google/uuid"
)

// Session is the per-visitor conversation context handed to the router.
// Transcript only grows; Cleared returns a new Session instead of emptying this one.
type Session struct {
	ID           string    `json:"id"`
	Transcript   []Message `json:"transcript"`
	PendingInput string    `json:"pending_input,omitempty"`
	Epoch        int       `json:"epoch"`
	CreatedAt    time.Time `json:"createdAt"`
	ResetAt      time.Time `json:"resetAt,omitempty"`
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// Append adds m to the end of the transcript and returns its sequence number.
func (s *Session) Append(m Message) int {
	s.Transcript = append(s.Transcript, m)
	return len(s.Transcript) - 1
}

// Messages returns a copy of the transcript in display order.
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.Transcript))
	copy(out, s.Transcript)
	return out
}

// Cleared returns a fresh context for the same session id.
func (s *Session) Cleared() *Session {
	return &Session{
		ID:        s.ID,
		Epoch:     s.Epoch + 1,
		CreatedAt: s.CreatedAt,
		ResetAt:   time.Now(),
	}
}

// Clone copies the session so a failed turn can be discarded without touching the original.
func (s *Session) Clone() *Session {
	c := *s
	c.Transcript = s.Messages()
	return &c
}
