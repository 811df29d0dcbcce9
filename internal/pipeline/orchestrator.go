// Package pipeline sequences one exchange per inbound question: resolve the
// session, translate the question to a query, fetch the data, compose the
// answer, record the turn. Each stage is an interface so transports and tests
// can swap implementations.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/deepcosmos1/LLM-RAG/internal/llm"
	"github.com/deepcosmos1/LLM-RAG/internal/prompt"
	"github.com/deepcosmos1/LLM-RAG/internal/session"
	"github.com/deepcosmos1/LLM-RAG/internal/storage"
)

const (
	StageTranslate = "translate"
	StageFetch     = "fetch"
	StageCompose   = "compose"
)

// StageError reports which pipeline stage failed. Failures are local to the
// exchange: the session's history is only appended after compose succeeds.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Orchestrator runs the exchange state machine over an injected registry and
// the three stages.
type Orchestrator struct {
	registry   *session.Registry
	translator Translator
	fetcher    Fetcher
	composer   Composer
	prompts    *prompt.Builder

	stageTimeout time.Duration
	recorder     storage.Recorder
}

func New(registry *session.Registry, translator Translator, fetcher Fetcher, composer Composer, prompts *prompt.Builder) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		translator: translator,
		fetcher:    fetcher,
		composer:   composer,
		prompts:    prompts,
	}
}

// WithStageTimeout bounds each external call. Zero disables the bound.
func (o *Orchestrator) WithStageTimeout(d time.Duration) *Orchestrator {
	o.stageTimeout = d
	return o
}

// WithRecorder enables the JSONL audit trail of completed exchanges.
func (o *Orchestrator) WithRecorder(rec storage.Recorder) *Orchestrator {
	o.recorder = rec
	return o
}

func (o *Orchestrator) Registry() *session.Registry { return o.registry }

// Exchange processes one question under sessionID and returns the composed
// answer for the transport to deliver. On error the returned answer is empty,
// the error is a *StageError and the session history is unchanged.
func (o *Orchestrator) Exchange(ctx context.Context, sessionID, question string) (string, error) {
	conv := o.registry.GetOrCreate(sessionID)
	history := conv.Context(o.prompts.System())

	query, err := o.translate(ctx, history, question)
	if err != nil {
		return "", &StageError{Stage: StageTranslate, Err: err}
	}
	log.Printf("🧠 session %s: generated query: %q", sessionID, query)

	results, err := o.fetch(ctx, query)
	if err != nil {
		return "", &StageError{Stage: StageFetch, Err: err}
	}

	answer, err := o.compose(ctx, history, question, query, results)
	if err != nil {
		return "", &StageError{Stage: StageCompose, Err: err}
	}

	conv.AppendTurn(question, answer)
	if o.recorder != nil {
		ev := storage.Event{
			Timestamp: time.Now().UTC(),
			SessionID: sessionID,
			Question:  question,
			Query:     query,
			Answer:    answer,
		}
		if err := o.recorder.AppendExchange(ev); err != nil {
			log.Printf("failed to record exchange for session %s: %v", sessionID, err)
		}
	}
	return answer, nil
}

func (o *Orchestrator) translate(ctx context.Context, history []llm.Message, question string) (string, error) {
	ctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.translator.Translate(ctx, history, question)
}

// fetch short-circuits the unanswerable sentinel: the backing store is never
// touched for it, the sentinel flows through to compose as ordinary data.
func (o *Orchestrator) fetch(ctx context.Context, query string) (string, error) {
	if query == prompt.Unanswerable {
		return prompt.Unanswerable, nil
	}
	ctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.fetcher.Fetch(ctx, query)
}

func (o *Orchestrator) compose(ctx context.Context, history []llm.Message, question, query, results string) (string, error) {
	ctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.composer.Compose(ctx, history, question, query, results)
}

func (o *Orchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.stageTimeout)
}
