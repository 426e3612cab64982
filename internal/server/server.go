// Package server exposes the chatbot over HTTP: the chat turn endpoint,
// session listing, and document upload/indexing management.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/agent"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/history"
	"github.com/Nuaddam/scb-protect-test-chatbot/internal/rag"
)

// TurnHandler is the inbound turn interface the chat endpoint calls.
type TurnHandler interface {
	AdvanceTurn(ctx context.Context, sessionID, userText string) (agent.TurnResult, error)
}

// Ingestor is the server-facing subset of the retrieval service.
type Ingestor interface {
	IngestDocument(ctx context.Context, doc domain.Document) (int, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// Server wires the HTTP endpoints to their collaborators.
type Server struct {
	turns    TurnHandler
	ingestor Ingestor
	history  *history.Store
	log      *zap.Logger

	maxUploadBytes int64
}

// New creates the HTTP server facade.
func New(turns TurnHandler, ingestor Ingestor, hist *history.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		turns:          turns,
		ingestor:       ingestor,
		history:        hist,
		log:            log,
		maxUploadBytes: 16 << 20,
	}
}

// Routes returns the HTTP mux with all endpoints registered.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /sessions", s.handleSessions)
	mux.HandleFunc("POST /upload-doc", s.handleUpload)
	mux.HandleFunc("GET /list-docs", s.handleListDocs)
	mux.HandleFunc("POST /delete-doc", s.handleDeleteDoc)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var in QueryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Question) == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	result, err := s.turns.AdvanceTurn(r.Context(), in.SessionID, in.Question)
	if err != nil {
		var storeErr *domain.SessionStoreError
		if errors.As(err, &storeErr) {
			s.log.Error("turn failed", zap.String("session", result.SessionID), zap.Error(err))
			http.Error(w, "chat error: session store unavailable", http.StatusInternalServerError)
			return
		}
		// Degraded but recovered turns (generation/logging failures)
		// still carry a user-facing answer.
		s.log.Warn("turn degraded", zap.String("session", result.SessionID), zap.Error(err))
	}

	if herr := s.history.AppendTurn(result.SessionID, in.Question, result.Answer, in.Model); herr != nil {
		s.log.Error("recording chat history failed", zap.Error(herr))
	}
	s.log.Info("turn completed",
		zap.String("session", result.SessionID),
		zap.String("status", string(result.Status)))

	writeJSON(w, http.StatusOK, QueryResponse{
		Answer:    result.Answer,
		SessionID: result.SessionID,
		Status:    result.Status,
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	sessions, err := s.history.ListSessions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []string{}
	}
	writeJSON(w, http.StatusOK, SessionsResponse{Sessions: sessions})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !supportedExtension(ext) {
		http.Error(w, fmt.Sprintf("unsupported file type. Allowed types are: %s",
			strings.Join(rag.SupportedExtensions, ", ")), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "reading upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	text, err := rag.ExtractText(header.Filename, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fileID, err := s.history.InsertDocument(header.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	doc := domain.Document{
		ID:       strconv.FormatInt(fileID, 10),
		Filename: header.Filename,
		Content:  text,
	}
	if _, err := s.ingestor.IngestDocument(r.Context(), doc); err != nil {
		// Keep registry and index consistent when indexing fails.
		if derr := s.history.DeleteDocument(fileID); derr != nil {
			s.log.Error("rolling back document record failed", zap.Int64("file_id", fileID), zap.Error(derr))
		}
		http.Error(w, fmt.Sprintf("failed to index %s: %v", header.Filename, err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message: fmt.Sprintf("File %s has been successfully uploaded and indexed.", header.Filename),
		FileID:  fileID,
	})
}

func (s *Server) handleListDocs(w http.ResponseWriter, _ *http.Request) {
	docs, err := s.history.ListDocuments()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []history.DocumentInfo{}
	}
	writeJSON(w, http.StatusOK, DocumentList(docs))
}

func (s *Server) handleDeleteDoc(w http.ResponseWriter, r *http.Request) {
	var req DeleteFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.ingestor.DeleteDocument(r.Context(), strconv.FormatInt(req.FileID, 10)); err != nil {
		http.Error(w, fmt.Sprintf("failed to delete document %d from the index: %v", req.FileID, err), http.StatusInternalServerError)
		return
	}
	if err := s.history.DeleteDocument(req.FileID); err != nil {
		if errors.Is(err, history.ErrDocumentNotFound) {
			http.Error(w, fmt.Sprintf("document %d not found", req.FileID), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Successfully deleted document with file_id %d from the system.", req.FileID),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}

func supportedExtension(ext string) bool {
	for _, e := range rag.SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
