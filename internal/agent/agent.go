// Package agent orchestrates one conversational turn: it appends the
// user message, routes it to retrieval, web fallback, answer synthesis,
// or the interview machine, and persists the updated session state.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/interview"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/router"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/session"
)

// Retriever is the agent-facing subset of the retrieval service.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

// TurnResult is what the inbound turn interface returns to callers.
type TurnResult struct {
	SessionID string
	Answer    string
	Status    domain.TurnStatus
}

// Agent handles turns for all sessions. Collaborators are injected so
// every boundary stays swappable in tests.
type Agent struct {
	sessions   session.Store
	gen        domain.Generator
	interview  *interview.Machine
	classifier Classifier
	retriever  Retriever
	web        domain.WebSearcher
	summarizer domain.Summarizer
	log        *zap.Logger

	topK     int
	minScore float64
}

// Config wires an Agent's collaborators and retrieval tuning.
type Config struct {
	Sessions   session.Store
	Generator  domain.Generator
	Interview  *interview.Machine
	Classifier Classifier
	Retriever  Retriever
	Web        domain.WebSearcher
	Summarizer domain.Summarizer
	Logger     *zap.Logger
	TopK       int
	MinScore   float64
}

// New creates a turn-handling agent.
func New(cfg Config) *Agent {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	return &Agent{
		sessions:   cfg.Sessions,
		gen:        cfg.Generator,
		interview:  cfg.Interview,
		classifier: cfg.Classifier,
		retriever:  cfg.Retriever,
		web:        cfg.Web,
		summarizer: cfg.Summarizer,
		log:        cfg.Logger,
		topK:       cfg.TopK,
		minScore:   cfg.MinScore,
	}
}

const answerSystemPrompt = "You are a helpful bilingual (Thai/English) insurance customer-service " +
	"assistant. Answer concisely in the same language as the customer."

// AdvanceTurn processes one user message for a session and returns the
// assistant's answer plus the turn status. An empty session id starts a
// new session. Failures still return a user-facing message; the error is
// typed per the taxonomy so callers can choose UI behavior.
func (a *Agent) AdvanceTurn(ctx context.Context, sessionID, userText string) (TurnResult, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	release := a.sessions.Acquire(sessionID)
	defer release()

	conv, err := a.sessions.Get(sessionID)
	if err != nil {
		return TurnResult{SessionID: sessionID, Answer: "Service is temporarily unavailable. Please try again.", Status: domain.StatusContinuing},
			&domain.SessionStoreError{Err: err}
	}

	// A finished interview ends that sub-dialogue, not the session:
	// later turns route normally again.
	if conv.Done && conv.AwaitingField == "" && !conv.AwaitingConfirmation {
		conv.Route = ""
	}

	conv.Append(domain.RoleUser, userText)

	freshInterview := false
	if conv.AwaitingField == "" && !conv.AwaitingConfirmation && !conv.Done {
		route, cerr := a.classifier.Classify(ctx, conv)
		if cerr != nil {
			a.log.Warn("classifier degraded", zap.String("session", sessionID), zap.Error(cerr))
		}
		freshInterview = route == domain.RouteInterview && len(conv.CustomerData) == 0
		conv.Route = route
	}

	result, stepErr := a.dispatch(ctx, conv, userText, freshInterview)

	if perr := a.sessions.Put(sessionID, conv); perr != nil {
		return TurnResult{SessionID: sessionID, Answer: result.Answer, Status: result.Status},
			&domain.SessionStoreError{Err: perr}
	}
	result.SessionID = sessionID
	return result, stepErr
}

func (a *Agent) dispatch(ctx context.Context, conv *domain.Conversation, userText string, freshInterview bool) (TurnResult, error) {
	switch dest := router.Route(conv); dest {
	case domain.RouteInterview:
		var (
			res interview.Result
			err error
		)
		if freshInterview {
			res, err = a.interview.Begin(ctx, conv)
		} else {
			res, err = a.interview.Step(ctx, conv)
		}
		return TurnResult{Answer: res.Reply, Status: res.Status}, err

	case domain.RouteEnd:
		reply := "ขอบคุณที่ใช้บริการครับ/ค่ะ (Thank you, goodbye!)"
		conv.Append(domain.RoleAssistant, reply)
		conv.Route = ""
		return TurnResult{Answer: reply, Status: domain.StatusOf(conv)}, nil

	case domain.RouteRAG:
		context := a.retrieve(ctx, conv, userText)
		return a.answer(ctx, conv, context)

	default:
		return a.answer(ctx, conv, "")
	}
}

// retrieve runs the retrieval stage and, when the router selects the web
// fallback, augments the context with a web search snippet.
func (a *Agent) retrieve(ctx context.Context, conv *domain.Conversation, query string) string {
	var parts []string
	results, err := a.retriever.Search(ctx, query, a.topK)
	if err != nil {
		a.log.Warn("retrieval failed", zap.Error(err))
	}
	best := 0.0
	for _, r := range results {
		if r.Score > best {
			best = r.Score
		}
		if r.Score >= a.minScore {
			parts = append(parts, r.Chunk.Text)
		}
	}
	if len(parts) == 0 || best < a.minScore {
		conv.Route = domain.RouteWeb
	} else {
		conv.Route = domain.RouteAnswer
	}

	if router.AfterRetrieval(conv) == domain.RouteWeb && a.web != nil {
		snippet, werr := a.web.Search(ctx, query)
		if werr != nil {
			a.log.Warn("web search failed", zap.Error(werr))
		} else if snippet != "" {
			parts = append(parts, snippet)
		}
	}
	conv.Route = domain.RouteAnswer
	return strings.Join(parts, "\n\n")
}

// answer synthesizes the final reply, falling back to an extractive
// summary of the retrieved context when generation fails.
func (a *Agent) answer(ctx context.Context, conv *domain.Conversation, retrieved string) (TurnResult, error) {
	system := answerSystemPrompt
	if retrieved != "" {
		system = fmt.Sprintf("%s\nUse the following context when relevant:\n%s", answerSystemPrompt, retrieved)
	}
	reply, err := a.gen.Generate(ctx, system, conv.Messages)
	var genErr error
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			genErr = &domain.GenerationError{Err: err}
			a.log.Warn("answer generation failed", zap.Error(err))
		}
		reply = "I couldn't generate a full answer right now."
		if retrieved != "" && a.summarizer != nil {
			if summary, serr := a.summarizer.Summarize(retrieved, 3); serr == nil && summary != "" {
				reply = "Here is what I found:\n" + summary
			}
		}
	}
	conv.Append(domain.RoleAssistant, reply)
	conv.Route = ""
	return TurnResult{Answer: reply, Status: domain.StatusOf(conv)}, genErr
}
