package domain

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a conversation transcript.
// Insertion order is meaningful: it is replayed to the language model
// and the last user message drives interview transitions.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Route is the next processing stage selected for a turn.
type Route string

const (
	RouteInterview Route = "interview"
	RouteRAG       Route = "rag"
	RouteWeb       Route = "web"
	RouteAnswer    Route = "answer"
	RouteEnd       Route = "end"
)

// Field names a structured-interest field collected by the interview.
type Field string

const (
	FieldName        Field = "name"
	FieldAge         Field = "age"
	FieldOccupation  Field = "occupation"
	FieldIncome      Field = "income"
	FieldProductName Field = "product_name"
	FieldMemo        Field = "memo"
)

// FieldOrder is the fixed order in which fields are prompted and summarized.
// This exact order is part of the user-visible contract.
var FieldOrder = []Field{FieldName, FieldAge, FieldOccupation, FieldIncome, FieldProductName, FieldMemo}

// Conversation is the session-scoped mutable state for one chat session.
// It is owned by the session store; turns for the same session must not
// run concurrently.
type Conversation struct {
	SessionID string
	Messages  []Message

	// Interview progress. At most one of AwaitingField and
	// AwaitingConfirmation is set at any time.
	CustomerData         map[Field]string
	AwaitingField        Field
	AwaitingConfirmation bool
	Done                 bool

	// Route is written by the classifier or by a terminal interview step.
	Route Route
}

// NewConversation creates empty state for a session identifier.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID:    sessionID,
		CustomerData: make(map[Field]string),
	}
}

// Append adds a message to the transcript.
func (c *Conversation) Append(role Role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
}

// LastUserMessage returns the content of the most recent user message,
// or the empty string if there is none.
func (c *Conversation) LastUserMessage() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i].Content
		}
	}
	return ""
}

// InterestRecord is the validated six-field payload sent to the
// interest-logging collaborator.
type InterestRecord struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Occupation  string `json:"occupation"`
	Income      int    `json:"income"`
	ProductName string `json:"product_name"`
	Memo        string `json:"memo"`
}

// TurnStatus tells the caller what UI affordance the next turn needs.
type TurnStatus string

const (
	StatusContinuing           TurnStatus = "continuing"
	StatusAwaitingConfirmation TurnStatus = "awaiting_confirmation"
	StatusDone                 TurnStatus = "done"
)

// StatusOf derives the turn status from conversation flags.
func StatusOf(c *Conversation) TurnStatus {
	switch {
	case c.Done:
		return StatusDone
	case c.AwaitingConfirmation:
		return StatusAwaitingConfirmation
	default:
		return StatusContinuing
	}
}

// Document represents a single uploaded document indexed for retrieval.
type Document struct {
	ID       string
	Filename string
	Content  string
}

// Chunk is a semantically meaningful part of a document used for indexing.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}
