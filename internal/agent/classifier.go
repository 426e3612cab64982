package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

// Classifier picks the initial route for a turn that is not already
// inside an interview.
type Classifier interface {
	Classify(ctx context.Context, c *domain.Conversation) (domain.Route, error)
}

const classifySystemPrompt = "You route customer-service messages for an insurance chatbot.\n" +
	"Reply with exactly one word:\n" +
	"- \"interview\" if the customer expresses interest in buying or signing up for a product\n" +
	"- \"rag\" if the customer asks a question about products, coverage, or documents\n" +
	"- \"answer\" for anything else (greetings, small talk)\n" +
	"- \"end\" if the customer says goodbye"

// LLMClassifier asks the generation collaborator for a one-word route and
// falls back to keyword heuristics when it fails or answers off-script.
type LLMClassifier struct {
	gen domain.Generator
	log *zap.Logger
}

// NewLLMClassifier creates a classifier backed by the given generator.
func NewLLMClassifier(gen domain.Generator, log *zap.Logger) *LLMClassifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMClassifier{gen: gen, log: log}
}

// Classify returns the route for the latest user message.
func (cl *LLMClassifier) Classify(ctx context.Context, c *domain.Conversation) (domain.Route, error) {
	reply, err := cl.gen.Generate(ctx, classifySystemPrompt, c.Messages)
	if err != nil {
		cl.log.Warn("route classification failed, using heuristic", zap.Error(err))
		return heuristicRoute(c.LastUserMessage()), &domain.GenerationError{Err: err}
	}
	switch r := domain.Route(strings.ToLower(strings.TrimSpace(reply))); r {
	case domain.RouteInterview, domain.RouteRAG, domain.RouteAnswer, domain.RouteEnd:
		return r, nil
	default:
		return heuristicRoute(c.LastUserMessage()), nil
	}
}

// interestKeywords trigger the interview flow when classification is
// unavailable.
var interestKeywords = []string{"interested", "sign up", "buy", "purchase", "สนใจ", "สมัคร", "ซื้อ"}

func heuristicRoute(text string) domain.Route {
	lower := strings.ToLower(text)
	for _, kw := range interestKeywords {
		if strings.Contains(lower, kw) {
			return domain.RouteInterview
		}
	}
	if strings.Contains(lower, "?") {
		return domain.RouteRAG
	}
	return domain.RouteAnswer
}
