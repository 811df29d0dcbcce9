package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deepcosmos1/LLM-RAG/internal/llm"
	"github.com/deepcosmos1/LLM-RAG/internal/prompt"
	"github.com/deepcosmos1/LLM-RAG/internal/session"
)

type fakeTranslator struct {
	out     string
	err     error
	calls   int
	history [][]llm.Message
}

func (f *fakeTranslator) Translate(_ context.Context, history []llm.Message, _ string) (string, error) {
	f.calls++
	f.history = append(f.history, history)
	return f.out, f.err
}

type fakeFetcher struct {
	out   string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.out, f.err
}

type fakeComposer struct {
	out        string
	err        error
	calls      int
	gotQuery   string
	gotResults string
}

func (f *fakeComposer) Compose(_ context.Context, _ []llm.Message, _, query, results string) (string, error) {
	f.calls++
	f.gotQuery = query
	f.gotResults = results
	return f.out, f.err
}

func newTestOrchestrator(tr Translator, fe Fetcher, co Composer) *Orchestrator {
	return New(session.NewRegistry(), tr, fe, co, prompt.New())
}

func TestExchangeAppendsTurnsInOrder(t *testing.T) {
	tr := &fakeTranslator{out: "SELECT * FROM telemetry_data"}
	fe := &fakeFetcher{out: "rows"}
	co := &fakeComposer{out: "answer"}
	o := newTestOrchestrator(tr, fe, co)

	for i := 1; i <= 3; i++ {
		if _, err := o.Exchange(context.Background(), "s1", "question"); err != nil {
			t.Fatalf("exchange %d: %v", i, err)
		}
		conv, _ := o.Registry().Lookup("s1")
		if conv.Len() != i {
			t.Fatalf("after exchange %d history length is %d", i, conv.Len())
		}
	}

	conv, _ := o.Registry().Lookup("s1")
	turns := conv.Turns()
	for i, turn := range turns {
		if turn.Question != "question" || turn.Answer != "answer" {
			t.Fatalf("turn %d: %+v", i, turn)
		}
	}
}

func TestExchangeFailureLeavesHistoryUnchanged(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name  string
		tr    *fakeTranslator
		fe    *fakeFetcher
		co    *fakeComposer
		stage string
	}{
		{"translate", &fakeTranslator{err: boom}, &fakeFetcher{out: "rows"}, &fakeComposer{out: "answer"}, StageTranslate},
		{"fetch", &fakeTranslator{out: "SELECT 1"}, &fakeFetcher{err: boom}, &fakeComposer{out: "answer"}, StageFetch},
		{"compose", &fakeTranslator{out: "SELECT 1"}, &fakeFetcher{out: "rows"}, &fakeComposer{err: boom}, StageCompose},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := newTestOrchestrator(tc.tr, tc.fe, tc.co)
			_, err := o.Exchange(context.Background(), "s1", "question")
			if err == nil {
				t.Fatalf("expected error")
			}
			var se *StageError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StageError, got %T", err)
			}
			if se.Stage != tc.stage {
				t.Fatalf("expected stage %q, got %q", tc.stage, se.Stage)
			}
			if !errors.Is(err, boom) {
				t.Fatalf("cause not wrapped: %v", err)
			}
			conv, _ := o.Registry().Lookup("s1")
			if conv.Len() != 0 {
				t.Fatalf("failed exchange mutated history: len=%d", conv.Len())
			}
		})
	}
}

func TestSentinelShortCircuitsFetch(t *testing.T) {
	tr := &fakeTranslator{out: prompt.Unanswerable}
	fe := &fakeFetcher{out: "rows"}
	co := &fakeComposer{out: prompt.Fallback}
	o := newTestOrchestrator(tr, fe, co)

	answer, err := o.Exchange(context.Background(), "s1", "what color is the satellite?")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if fe.calls != 0 {
		t.Fatalf("fetcher invoked %d times for unanswerable question", fe.calls)
	}
	if co.gotQuery != prompt.Unanswerable || co.gotResults != prompt.Unanswerable {
		t.Fatalf("composer did not receive sentinel: query=%q results=%q", co.gotQuery, co.gotResults)
	}
	if answer != prompt.Fallback {
		t.Fatalf("unexpected answer: %q", answer)
	}
	// The unanswerable path is still a completed exchange and is recorded.
	conv, _ := o.Registry().Lookup("s1")
	if conv.Len() != 1 {
		t.Fatalf("sentinel exchange not recorded: len=%d", conv.Len())
	}
}

func TestSecondExchangeSeesFirstInContext(t *testing.T) {
	tr := &fakeTranslator{out: "SELECT 1"}
	fe := &fakeFetcher{out: "rows"}
	co := &fakeComposer{out: "the battery was at 3.9 volts"}
	o := newTestOrchestrator(tr, fe, co)

	if _, err := o.Exchange(context.Background(), "s1", "what was the battery voltage?"); err != nil {
		t.Fatalf("first exchange: %v", err)
	}
	if _, err := o.Exchange(context.Background(), "s1", "and the uptime?"); err != nil {
		t.Fatalf("second exchange: %v", err)
	}

	if len(tr.history) != 2 {
		t.Fatalf("translator called %d times", len(tr.history))
	}
	second := tr.history[1]
	var sawQuestion, sawAnswer bool
	for _, m := range second {
		if m.Role == "user" && m.Content == "what was the battery voltage?" {
			sawQuestion = true
		}
		if m.Role == "assistant" && strings.Contains(m.Content, "3.9 volts") {
			sawAnswer = true
		}
	}
	if !sawQuestion || !sawAnswer {
		t.Fatalf("second call context missing first exchange: question=%v answer=%v", sawQuestion, sawAnswer)
	}
	if second[0].Role != "system" {
		t.Fatalf("context must start with the system instruction, got %q", second[0].Role)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	tr := &fakeTranslator{out: "SELECT 1"}
	fe := &fakeFetcher{out: "rows"}
	co := &fakeComposer{out: "answer"}
	o := newTestOrchestrator(tr, fe, co)

	if _, err := o.Exchange(context.Background(), "s1", "q"); err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if conv, ok := o.Registry().Lookup("s2"); ok && conv.Len() != 0 {
		t.Fatalf("unrelated session gained history")
	}
	conv, _ := o.Registry().Lookup("s1")
	if conv.Len() != 1 {
		t.Fatalf("own session history missing")
	}
}
