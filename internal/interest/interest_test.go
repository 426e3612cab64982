package interest

import (
	"context"
	"encoding/csv"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

var aliceRecord = domain.InterestRecord{
	Name:        "Alice",
	Age:         29,
	Occupation:  "engineer",
	Income:      50000,
	ProductName: "travel insurance",
	Memo:        "",
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVLoggerWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "interests.csv")
	l := NewCSVLogger(path)

	msg, err := l.LogInterest(context.Background(), aliceRecord)
	require.NoError(t, err)
	assert.Equal(t, "Logged interest: Alice wants travel insurance", msg)

	bob := aliceRecord
	bob.Name = "Bob"
	bob.Memo = "call after 6pm"
	_, err = l.LogInterest(context.Background(), bob)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "age", "occupation", "income", "product_name", "memo"}, rows[0])
	assert.Equal(t, []string{"Alice", "29", "engineer", "50000", "travel insurance", ""}, rows[1])
	assert.Equal(t, []string{"Bob", "29", "engineer", "50000", "travel insurance", "call after 6pm"}, rows[2])
}

func TestCSVLoggerAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interests.csv")
	l := NewCSVLogger(path)

	_, err := l.LogInterest(context.Background(), aliceRecord)
	require.NoError(t, err)

	// A fresh logger instance on the same file must not repeat the header.
	_, err = NewCSVLogger(path).LogInterest(context.Background(), aliceRecord)
	require.NoError(t, err)

	rows := readCSV(t, path)
	assert.Len(t, rows, 3)
	assert.Equal(t, "name", rows[0][0])
}

func TestHTTPLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interests.csv")
	srv := httptest.NewServer(Handler(NewCSVLogger(path)))
	defer srv.Close()

	l := NewHTTPLogger(srv.URL, time.Second)
	msg, err := l.LogInterest(context.Background(), aliceRecord)
	require.NoError(t, err)
	assert.Equal(t, "Logged interest: Alice wants travel insurance", msg)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Alice", "29", "engineer", "50000", "travel insurance", ""}, rows[1])
}

func TestHandlerRejectsNonPost(t *testing.T) {
	srv := httptest.NewServer(Handler(NewCSVLogger(filepath.Join(t.TempDir(), "x.csv"))))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 405, resp.StatusCode)
}

func TestHTTPLoggerReportsServerError(t *testing.T) {
	srv := httptest.NewServer(Handler(failingLogger{}))
	defer srv.Close()

	_, err := NewHTTPLogger(srv.URL, time.Second).LogInterest(context.Background(), aliceRecord)
	require.Error(t, err)
}

type failingLogger struct{}

func (failingLogger) LogInterest(context.Context, domain.InterestRecord) (string, error) {
	return "", assert.AnError
}
