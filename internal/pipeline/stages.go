package pipeline

import (
	"context"
	"fmt"

	"github.com/deepcosmos1/LLM-RAG/internal/llm"
	"github.com/deepcosmos1/LLM-RAG/internal/prompt"
	"github.com/deepcosmos1/LLM-RAG/internal/telemetry"
)

// Translator turns a natural-language question into a query string, or the
// prompt.Unanswerable sentinel when the schema cannot answer it. The history
// argument carries the session's prior turns as model context.
type Translator interface {
	Translate(ctx context.Context, history []llm.Message, question string) (string, error)
}

// Fetcher turns a query string into a rendered result set.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (string, error)
}

// Composer phrases the final natural-language answer from the question, the
// generated query and the (rendered) results.
type Composer interface {
	Compose(ctx context.Context, history []llm.Message, question, query, results string) (string, error)
}

// LLMTranslator implements Translator with one chat completion: the rendered
// translate prompt as a system message, the bare question as the user turn.
type LLMTranslator struct {
	client  llm.Client
	prompts *prompt.Builder
}

func NewLLMTranslator(client llm.Client, prompts *prompt.Builder) *LLMTranslator {
	return &LLMTranslator{client: client, prompts: prompts}
}

func (t *LLMTranslator) Translate(ctx context.Context, history []llm.Message, question string) (string, error) {
	msgs := append(append([]llm.Message{}, history...),
		llm.Message{Role: "system", Content: t.prompts.Translate(question)},
		llm.Message{Role: "user", Content: question},
	)
	resp, err := t.client.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("translate completion: %w", err)
	}
	return prompt.CleanQuery(resp.Content), nil
}

// StoreFetcher implements Fetcher against the telemetry store.
type StoreFetcher struct {
	store *telemetry.Store
}

func NewStoreFetcher(store *telemetry.Store) *StoreFetcher {
	return &StoreFetcher{store: store}
}

func (f *StoreFetcher) Fetch(ctx context.Context, query string) (string, error) {
	rs, err := f.store.Fetch(ctx, query)
	if err != nil {
		return "", err
	}
	return rs.Render(), nil
}

// LLMComposer implements Composer with one chat completion carrying the
// rendered compose prompt as a system message.
type LLMComposer struct {
	client  llm.Client
	prompts *prompt.Builder
}

func NewLLMComposer(client llm.Client, prompts *prompt.Builder) *LLMComposer {
	return &LLMComposer{client: client, prompts: prompts}
}

func (c *LLMComposer) Compose(ctx context.Context, history []llm.Message, question, query, results string) (string, error) {
	msgs := append(append([]llm.Message{}, history...),
		llm.Message{Role: "system", Content: c.prompts.Compose(question, query, results)},
	)
	resp, err := c.client.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("compose completion: %w", err)
	}
	return resp.Content, nil
}
