// Command telemetry-mcp-server exposes the telemetry Q&A pipeline as an MCP
// tool over stdin/stdout, so MCP-capable clients can ask the same questions
// the websocket transport serves.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deepcosmos1/LLM-RAG/internal/config"
	"github.com/deepcosmos1/LLM-RAG/internal/llm"
	"github.com/deepcosmos1/LLM-RAG/internal/pipeline"
	"github.com/deepcosmos1/LLM-RAG/internal/prompt"
	"github.com/deepcosmos1/LLM-RAG/internal/session"
	"github.com/deepcosmos1/LLM-RAG/internal/telemetry"
)

type AskParams struct {
	Question  string `json:"question" mcp:"natural-language question about the satellite housekeeping data"`
	SessionID string `json:"session_id,omitempty" mcp:"optional conversation id; reuse it to keep context between calls"`
}

type TelemetryMCPServer struct {
	orchestrator *pipeline.Orchestrator
}

func (s *TelemetryMCPServer) Ask(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AskParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if args.Question == "" {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "❌ question is required"},
			},
		}, nil
	}

	sessionID := args.SessionID
	if sessionID == "" {
		sessionID = "mcp:default"
	}

	answer, err := s.orchestrator.Exchange(ctx, sessionID, args.Question)
	if err != nil {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("❌ Failed to answer: %v", err)},
			},
		}, nil
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: answer},
		},
	}, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		log.Fatal("❌ SUPABASE_URL and SUPABASE_KEY environment variables are required")
	}

	factory := &llm.Factory{
		OpenAIAPIKey:     cfg.GroqAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
	llmClient, err := factory.CreateClient(cfg.LLMProvider, cfg.GroqModel)
	if err != nil {
		log.Fatalf("❌ failed to create llm client: %v", err)
	}

	store, err := telemetry.NewStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.ApplyGeneratedFilter)
	if err != nil {
		log.Fatalf("❌ failed to init telemetry store: %v", err)
	}

	prompts := prompt.New()
	orch := pipeline.New(
		session.NewRegistry(),
		pipeline.NewLLMTranslator(llmClient, prompts),
		pipeline.NewStoreFetcher(store),
		pipeline.NewLLMComposer(llmClient, prompts),
		prompts,
	).WithStageTimeout(cfg.StageTimeout)

	log.Printf("🚀 Starting Telemetry MCP Server")

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "telemetry-qa-mcp",
		Version: "1.0.0",
	}, nil)

	ts := &TelemetryMCPServer{orchestrator: orch}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_telemetry",
		Description: "Answers a natural-language question about the satellite housekeeping telemetry",
	}, ts.Ask)

	log.Printf("🔗 Starting server on stdin/stdout...")
	transport := mcp.NewStdioTransport()
	if err := server.Run(context.Background(), transport); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
