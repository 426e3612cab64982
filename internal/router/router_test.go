package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

func TestRouteInterviewOverridesStoredRoute(t *testing.T) {
	c := domain.NewConversation("s1")
	c.AwaitingField = domain.FieldIncome
	c.Route = domain.RouteRAG

	assert.Equal(t, domain.RouteInterview, Route(c))
}

func TestRouteHonorsStoredRoute(t *testing.T) {
	for _, r := range []domain.Route{
		domain.RouteRAG,
		domain.RouteWeb,
		domain.RouteAnswer,
		domain.RouteInterview,
		domain.RouteEnd,
	} {
		c := domain.NewConversation("s1")
		c.Route = r
		assert.Equal(t, r, Route(c), "stored route %q", r)
	}
}

func TestRouteDefaultsToAnswer(t *testing.T) {
	c := domain.NewConversation("s1")
	assert.Equal(t, domain.RouteAnswer, Route(c))

	c.Route = domain.Route("garbage")
	assert.Equal(t, domain.RouteAnswer, Route(c))
}

func TestRouteIsPure(t *testing.T) {
	c := domain.NewConversation("s1")
	c.AwaitingField = domain.FieldAge
	c.Route = domain.RouteRAG

	Route(c)

	assert.Equal(t, domain.FieldAge, c.AwaitingField)
	assert.Equal(t, domain.RouteRAG, c.Route)
}

func TestAfterRetrieval(t *testing.T) {
	c := domain.NewConversation("s1")
	c.Route = domain.RouteWeb
	assert.Equal(t, domain.RouteWeb, AfterRetrieval(c))

	c.Route = domain.RouteAnswer
	assert.Equal(t, domain.RouteAnswer, AfterRetrieval(c))

	c.Route = domain.RouteRAG
	assert.Equal(t, domain.RouteAnswer, AfterRetrieval(c))
}
