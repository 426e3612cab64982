// Package router decides the next processing stage for a conversational
// turn. Decisions are pure functions of the conversation state: no side
// effects, no mutation.
package router

import "github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"

// Route returns the destination stage for the current turn.
// An in-progress interview always takes priority over the stored route;
// otherwise the route written by the upstream classifier is honored,
// defaulting to a direct answer.
func Route(c *domain.Conversation) domain.Route {
	if c.AwaitingField != "" {
		return domain.RouteInterview
	}
	switch c.Route {
	case domain.RouteRAG, domain.RouteWeb, domain.RouteAnswer, domain.RouteInterview, domain.RouteEnd:
		return c.Route
	default:
		return domain.RouteAnswer
	}
}

// AfterRetrieval picks the follow-up stage once the retrieval stage has
// run: either synthesize an answer from the retrieved context or fall
// back to web search.
func AfterRetrieval(c *domain.Conversation) domain.Route {
	if c.Route == domain.RouteWeb {
		return domain.RouteWeb
	}
	return domain.RouteAnswer
}
