// Package interest implements the structured-interest logging
// collaborator: a CSV-backed logger served by the interest tool, and an
// HTTP client the chatbot uses to reach it.
package interest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

var csvHeader = []string{"name", "age", "occupation", "income", "product_name", "memo"}

// CSVLogger appends interest records to a CSV file, writing the header
// on first use.
type CSVLogger struct {
	path string
	mu   sync.Mutex
}

var _ domain.InterestLogger = (*CSVLogger)(nil)

// NewCSVLogger creates a logger writing to the given file path.
func NewCSVLogger(path string) *CSVLogger {
	return &CSVLogger{path: path}
}

// LogInterest appends one record and returns a confirmation message.
func (l *CSVLogger) LogInterest(_ context.Context, r domain.InterestRecord) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating data directory: %w", err)
		}
	}
	_, statErr := os.Stat(l.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening interest file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(csvHeader); err != nil {
			return "", fmt.Errorf("writing csv header: %w", err)
		}
	}
	row := []string{r.Name, strconv.Itoa(r.Age), r.Occupation, strconv.Itoa(r.Income), r.ProductName, r.Memo}
	if err := w.Write(row); err != nil {
		return "", fmt.Errorf("writing csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return fmt.Sprintf("Logged interest: %s wants %s", r.Name, r.ProductName), nil
}
