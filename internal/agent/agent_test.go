package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/interview"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/session"
)

type scriptedGenerator struct {
	replies []string
	err     error
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string, _ []domain.Message) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "generated answer", nil
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r, nil
}

type fixedClassifier struct {
	route domain.Route
	err   error
}

func (c *fixedClassifier) Classify(context.Context, *domain.Conversation) (domain.Route, error) {
	return c.route, c.err
}

type fakeRetriever struct {
	results []domain.SearchResult
	err     error
	queries []string
}

func (r *fakeRetriever) Search(_ context.Context, query string, _ int) ([]domain.SearchResult, error) {
	r.queries = append(r.queries, query)
	return r.results, r.err
}

type fakeWeb struct {
	snippet string
	err     error
	calls   int
}

func (w *fakeWeb) Search(_ context.Context, _ string) (string, error) {
	w.calls++
	return w.snippet, w.err
}

type fakeInterest struct {
	calls int
}

func (l *fakeInterest) LogInterest(_ context.Context, r domain.InterestRecord) (string, error) {
	l.calls++
	return "Logged interest: " + r.Name + " wants " + r.ProductName, nil
}

type failingStore struct {
	getErr error
	putErr error
	inner  session.Store
}

func (s *failingStore) Get(id string) (*domain.Conversation, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.inner.Get(id)
}

func (s *failingStore) Put(id string, c *domain.Conversation) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.inner.Put(id, c)
}

func (s *failingStore) Acquire(id string) func() { return s.inner.Acquire(id) }

func newAgent(t *testing.T, mutate func(*Config)) (*Agent, session.Store) {
	t.Helper()
	store := session.NewMemoryStore()
	gen := &scriptedGenerator{}
	cfg := Config{
		Sessions:   store,
		Generator:  gen,
		Interview:  interview.New(gen, &fakeInterest{}, nil),
		Classifier: &fixedClassifier{route: domain.RouteAnswer},
		Retriever:  &fakeRetriever{},
		TopK:       4,
		MinScore:   0.2,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg), store
}

func result(score float64, text string) domain.SearchResult {
	return domain.SearchResult{Score: score, Chunk: domain.Chunk{Text: text}}
}

func TestAdvanceTurnAssignsSessionID(t *testing.T) {
	a, _ := newAgent(t, nil)

	res, err := a.AdvanceTurn(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, "generated answer", res.Answer)
	assert.Equal(t, domain.StatusContinuing, res.Status)
}

func TestAdvanceTurnRAGRoute(t *testing.T) {
	retr := &fakeRetriever{results: []domain.SearchResult{
		result(0.9, "Travel insurance covers trip cancellation."),
		result(0.05, "unrelated chunk"),
	}}
	gen := &scriptedGenerator{replies: []string{"Covered, per the policy."}}
	a, store := newAgent(t, func(cfg *Config) {
		cfg.Classifier = &fixedClassifier{route: domain.RouteRAG}
		cfg.Retriever = retr
		cfg.Generator = gen
	})

	res, err := a.AdvanceTurn(context.Background(), "s1", "Does travel insurance cover cancellation?")
	require.NoError(t, err)
	assert.Equal(t, "Covered, per the policy.", res.Answer)
	assert.Equal(t, []string{"Does travel insurance cover cancellation?"}, retr.queries)

	conv, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, domain.Route(""), conv.Route, "route resets after the answer")
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, domain.RoleAssistant, conv.Messages[1].Role)
}

func TestAdvanceTurnWebFallbackOnLowScores(t *testing.T) {
	web := &fakeWeb{snippet: "From the web: cancellations are covered."}
	a, _ := newAgent(t, func(cfg *Config) {
		cfg.Classifier = &fixedClassifier{route: domain.RouteRAG}
		cfg.Retriever = &fakeRetriever{results: []domain.SearchResult{result(0.01, "weak match")}}
		cfg.Web = web
	})

	_, err := a.AdvanceTurn(context.Background(), "s1", "what about cancellations?")
	require.NoError(t, err)
	assert.Equal(t, 1, web.calls, "low retrieval scores trigger the web fallback")
}

func TestAdvanceTurnNoWebWhenRetrievalStrong(t *testing.T) {
	web := &fakeWeb{snippet: "should not be used"}
	a, _ := newAgent(t, func(cfg *Config) {
		cfg.Classifier = &fixedClassifier{route: domain.RouteRAG}
		cfg.Retriever = &fakeRetriever{results: []domain.SearchResult{result(0.95, "strong match")}}
		cfg.Web = web
	})

	_, err := a.AdvanceTurn(context.Background(), "s1", "question?")
	require.NoError(t, err)
	assert.Equal(t, 0, web.calls)
}

func TestAdvanceTurnStartsInterview(t *testing.T) {
	a, store := newAgent(t, func(cfg *Config) {
		cfg.Classifier = &fixedClassifier{route: domain.RouteInterview}
		cfg.Generator = &scriptedGenerator{replies: []string{"May I have your name?"}}
		cfg.Interview = interview.New(&scriptedGenerator{replies: []string{"May I have your name?"}}, &fakeInterest{}, nil)
	})

	res, err := a.AdvanceTurn(context.Background(), "s1", "I'm interested in travel insurance")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusContinuing, res.Status)
	assert.Equal(t, "May I have your name?", res.Answer)

	conv, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, domain.FieldName, conv.AwaitingField)
	assert.Empty(t, conv.CustomerData, "the triggering message is not consumed as an answer")
}

func TestAdvanceTurnMidInterviewSkipsClassifier(t *testing.T) {
	// A classifier that would misroute mid-interview turns.
	a, store := newAgent(t, func(cfg *Config) {
		cfg.Classifier = &fixedClassifier{route: domain.RouteRAG}
		cfg.Interview = interview.New(&scriptedGenerator{}, &fakeInterest{}, nil)
	})

	conv, err := store.Get("s1")
	require.NoError(t, err)
	conv.AwaitingField = domain.FieldAge
	conv.CustomerData[domain.FieldName] = "Alice"
	require.NoError(t, store.Put("s1", conv))

	res, err := a.AdvanceTurn(context.Background(), "s1", "29")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusContinuing, res.Status)

	conv, err = store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "29", conv.CustomerData[domain.FieldAge])
	assert.Equal(t, domain.FieldOccupation, conv.AwaitingField)
}

func TestAdvanceTurnAfterDoneRoutesNormally(t *testing.T) {
	a, store := newAgent(t, nil)

	conv, err := store.Get("s1")
	require.NoError(t, err)
	conv.Done = true
	conv.Route = domain.RouteEnd
	require.NoError(t, store.Put("s1", conv))

	res, err := a.AdvanceTurn(context.Background(), "s1", "one more question")
	require.NoError(t, err)
	assert.Equal(t, "generated answer", res.Answer, "a finished interview does not end the session")
}

func TestAdvanceTurnClassifierErrorDegradesGracefully(t *testing.T) {
	a, _ := newAgent(t, func(cfg *Config) {
		cfg.Classifier = &fixedClassifier{route: domain.RouteAnswer, err: errors.New("llm down")}
	})

	res, err := a.AdvanceTurn(context.Background(), "s1", "hi")
	require.NoError(t, err, "classifier degradation is logged, not surfaced")
	assert.Equal(t, "generated answer", res.Answer)
}

func TestAdvanceTurnSessionGetError(t *testing.T) {
	a, _ := newAgent(t, func(cfg *Config) {
		cfg.Sessions = &failingStore{getErr: errors.New("backend down"), inner: session.NewMemoryStore()}
	})

	res, err := a.AdvanceTurn(context.Background(), "s1", "hi")
	var serr *domain.SessionStoreError
	require.ErrorAs(t, err, &serr)
	assert.NotEmpty(t, res.Answer, "a user-facing message is still returned")
}

func TestAdvanceTurnSessionPutError(t *testing.T) {
	a, _ := newAgent(t, func(cfg *Config) {
		cfg.Sessions = &failingStore{putErr: errors.New("backend down"), inner: session.NewMemoryStore()}
	})

	res, err := a.AdvanceTurn(context.Background(), "s1", "hi")
	var serr *domain.SessionStoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "generated answer", res.Answer)
}

func TestAnswerFallsBackToSummaryOnGenerationFailure(t *testing.T) {
	a, _ := newAgent(t, func(cfg *Config) {
		cfg.Classifier = &fixedClassifier{route: domain.RouteRAG}
		cfg.Retriever = &fakeRetriever{results: []domain.SearchResult{
			result(0.9, "Travel insurance covers trip cancellation. It also covers lost luggage."),
		}}
		cfg.Generator = &scriptedGenerator{err: errors.New("llm down")}
		cfg.Summarizer = stubSummarizer{}
	})

	res, err := a.AdvanceTurn(context.Background(), "s1", "what is covered?")
	var gerr *domain.GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, res.Answer, "Here is what I found:")
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(text string, _ int) (string, error) { return text, nil }

func TestHeuristicRoute(t *testing.T) {
	cases := []struct {
		text string
		want domain.Route
	}{
		{"I'm interested in the savings plan", domain.RouteInterview},
		{"สนใจประกันเดินทางครับ", domain.RouteInterview},
		{"what does the policy cover?", domain.RouteRAG},
		{"hello there", domain.RouteAnswer},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, heuristicRoute(tc.text), "text %q", tc.text)
	}
}

func TestLLMClassifierOffScriptFallsBack(t *testing.T) {
	cl := NewLLMClassifier(&scriptedGenerator{replies: []string{"I think this is a question"}}, nil)
	c := domain.NewConversation("s1")
	c.Append(domain.RoleUser, "what is covered?")

	route, err := cl.Classify(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, domain.RouteRAG, route)
}

func TestLLMClassifierParsesRoute(t *testing.T) {
	cl := NewLLMClassifier(&scriptedGenerator{replies: []string{" Interview \n"}}, nil)
	c := domain.NewConversation("s1")
	c.Append(domain.RoleUser, "sign me up")

	route, err := cl.Classify(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, domain.RouteInterview, route)
}
