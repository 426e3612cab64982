package interest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

// logResponse is the wire shape of the tool's reply.
type logResponse struct {
	Message string `json:"message"`
}

// HTTPLogger calls the remote interest tool over HTTP.
type HTTPLogger struct {
	url    string
	client *http.Client
}

var _ domain.InterestLogger = (*HTTPLogger)(nil)

// NewHTTPLogger creates a client for the tool at the given URL
// (e.g. http://localhost:8081/tools/log-interest).
func NewHTTPLogger(url string, timeout time.Duration) *HTTPLogger {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &HTTPLogger{url: url, client: &http.Client{Timeout: timeout}}
}

// LogInterest posts the record and returns the tool's message.
func (l *HTTPLogger) LogInterest(ctx context.Context, r domain.InterestRecord) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("interest tool returned %s", resp.Status)
	}
	var out logResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding interest tool response: %w", err)
	}
	return out.Message, nil
}

// Handler serves the tool endpoint on top of any InterestLogger.
// POST body: the six-field record; response: {"message": ...}.
func Handler(logger domain.InterestLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var record domain.InterestRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			http.Error(w, "invalid record: "+err.Error(), http.StatusBadRequest)
			return
		}
		msg, err := logger.LogInterest(r.Context(), record)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(logResponse{Message: msg})
	}
}
