// Package session owns the per-session conversation state: an append-only
// history of question/answer turns keyed by an opaque session identifier.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepcosmos1/LLM-RAG/internal/llm"
)

// Turn is one completed exchange. Turns are never mutated or removed while
// the session lives.
type Turn struct {
	Question string
	Answer   string
}

// Conversation holds the ordered history of one session. Insertion order is
// significant: it is replayed to the language model as prior context.
type Conversation struct {
	mu         sync.RWMutex
	turns      []Turn
	createdAt  time.Time
	lastActive time.Time
}

func newConversation(now time.Time) *Conversation {
	return &Conversation{createdAt: now, lastActive: now}
}

// AppendTurn records a completed exchange. Callers must append only after the
// answer was successfully composed, so a failed exchange leaves the history
// untouched.
func (c *Conversation) AppendTurn(question, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{Question: question, Answer: answer})
	c.lastActive = time.Now()
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Turns returns a copy of the history in insertion order.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Context renders the history as messages for the next model call: the fixed
// system instruction first, then user/assistant pairs in insertion order.
func (c *Conversation) Context(system string) []llm.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]llm.Message, 0, 2*len(c.turns)+1)
	if system != "" {
		out = append(out, llm.Message{Role: "system", Content: system})
	}
	for _, t := range c.turns {
		out = append(out, llm.Message{Role: "user", Content: t.Question})
		out = append(out, llm.Message{Role: "assistant", Content: t.Answer})
	}
	return out
}

// Touch marks the session as active without appending anything.
func (c *Conversation) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = time.Now()
}

func (c *Conversation) LastActive() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastActive
}

// Registry maps session identifiers to conversations, created lazily. It is
// passed into the orchestrator at construction instead of living as process
// globals, so eviction can be driven from outside.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Conversation
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Conversation)}
}

// NewID generates a fresh session identifier, unique process-wide.
func NewID() string {
	return uuid.NewString()
}

// GetOrCreate returns the conversation for id, creating an empty one when
// none exists. It never fails.
func (r *Registry) GetOrCreate(id string) *Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[id]
	if !ok {
		c = newConversation(time.Now())
		r.sessions[id] = c
	}
	return c
}

// Lookup returns the existing conversation or ok=false; it never creates.
func (r *Registry) Lookup(id string) (*Conversation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[id]
	return c, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than maxIdle and returns how many
// were removed. A maxIdle of zero disables eviction, reproducing the
// unbounded behavior of the original deployment.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, c := range r.sessions {
		if c.LastActive().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
