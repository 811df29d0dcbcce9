package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is a single-turn chat completion interface: an ordered message list
// in, one text completion out. Both the query-translation and the
// answer-composition stages go through it.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
