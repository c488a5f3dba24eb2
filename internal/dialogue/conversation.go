package dialogue

import (
	"context"
	"fmt"
	"log"

	"talktonic/internal/apperr"
	"talktonic/internal/chat"
)

// Archiver records transcript messages for audit. Failures are logged, never shown.
type Archiver interface {
	Archive(ctx context.Context, sessionID string, epoch, seq int, m chat.Message, meta map[string]any) error
}

// Turn is what Handle returns for one user input.
type Turn struct {
	User    chat.Message
	Outcome Outcome
}

// Conversation owns session lifecycle around the Router.
type Conversation struct {
	router  *Router
	store   chat.Store
	locks   *chat.Locker
	archive Archiver
}

// NewConversation wires a conversation service. archive may be nil.
func NewConversation(router *Router, store chat.Store, archive Archiver) *Conversation {
	return &Conversation{
		router:  router,
		store:   store,
		locks:   chat.NewLocker(),
		archive: archive,
	}
}

func (c *Conversation) Router() *Router { return c.router }

// Create stores a new empty session.
func (c *Conversation) Create(ctx context.Context) (*chat.Session, error) {
	s := chat.NewSession()
	if err := c.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}
	log.Printf("[Conversation] created session %s", s.ID)
	return s, nil
}

// Session returns a copy of the stored session context.
func (c *Conversation) Session(ctx context.Context, id string) (*chat.Session, error) {
	return c.store.Load(ctx, id)
}

// Transcript returns the messages of a session in display order.
func (c *Conversation) Transcript(ctx context.Context, id string) ([]chat.Message, error) {
	s, err := c.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Messages(), nil
}

// Handle routes one input for session id. The stored session only changes when
// the whole turn, including the save, succeeds.
func (c *Conversation) Handle(ctx context.Context, id, input string) (Turn, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	stored, err := c.store.Load(ctx, id)
	if err != nil {
		return Turn{}, err
	}
	work := stored.Clone()
	work.PendingInput = ""
	start := len(work.Transcript)

	out := c.router.Route(ctx, work, input)
	if err := c.store.Save(ctx, work); err != nil {
		return Turn{}, fmt.Errorf("save session %s: %w", id, err)
	}
	if out.Err != nil {
		log.Printf("[Conversation] session %s turn failed on %s path: %v", id, out.Path, out.Err)
	}

	user := work.Transcript[start]
	c.record(ctx, work, start, out)
	return Turn{User: user, Outcome: out}, nil
}

// SaveDraft keeps text the visitor has typed but not sent yet.
func (c *Conversation) SaveDraft(ctx context.Context, id, text string) error {
	unlock := c.locks.Lock(id)
	defer unlock()

	s, err := c.store.Load(ctx, id)
	if err != nil {
		return err
	}
	s.PendingInput = text
	return c.store.Save(ctx, s)
}

// Clear replaces the session with a fresh context under the same id.
func (c *Conversation) Clear(ctx context.Context, id string) (*chat.Session, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	s, err := c.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	fresh := s.Cleared()
	if err := c.store.Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("save cleared session %s: %w", id, err)
	}
	log.Printf("[Conversation] cleared session %s (epoch %d)", id, fresh.Epoch)
	return fresh, nil
}

// Online reports how many sessions the store holds.
func (c *Conversation) Online(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

func (c *Conversation) record(ctx context.Context, s *chat.Session, start int, out Outcome) {
	if c.archive == nil {
		return
	}
	meta := map[string]any{
		"path":           string(out.Path),
		"classification": string(out.Input),
	}
	if out.Err != nil {
		meta["error_kind"] = string(apperr.KindOf(out.Err))
	}
	for seq := start; seq < len(s.Transcript); seq++ {
		if err := c.archive.Archive(ctx, s.ID, s.Epoch, seq, s.Transcript[seq], meta); err != nil {
			log.Printf("[Conversation] warning: archive session %s seq %d: %v", s.ID, seq, err)
		}
	}
}
