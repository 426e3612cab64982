package server

import (
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/history"
)

// QueryInput is the request body for POST /chat.
type QueryInput struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model,omitempty"`
}

// QueryResponse is the response body for POST /chat. Status tells the
// front-end which affordance to show (e.g. a yes/no prompt while the
// interview awaits confirmation).
type QueryResponse struct {
	Answer    string            `json:"answer"`
	SessionID string            `json:"session_id"`
	Status    domain.TurnStatus `json:"status"`
}

// SessionsResponse is the response body for GET /sessions.
type SessionsResponse struct {
	Sessions []string `json:"sessions"`
}

// UploadResponse is the response body for POST /upload-doc.
type UploadResponse struct {
	Message string `json:"message"`
	FileID  int64  `json:"file_id"`
}

// DeleteFileRequest is the request body for POST /delete-doc.
type DeleteFileRequest struct {
	FileID int64 `json:"file_id"`
}

// MessageResponse is a generic message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// DocumentList is the response body for GET /list-docs.
type DocumentList []history.DocumentInfo
