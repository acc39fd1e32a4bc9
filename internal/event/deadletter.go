package event

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/osse101/BingoBot_Go/internal/logger"
)

// DeadLetterSchemaVersion identifies the line format of the dead-letter file
const DeadLetterSchemaVersion = "2"

// maxDeadLetterLine bounds a single entry when reading the file back
const maxDeadLetterLine = 1 << 20

// DeadLetterEntry is one completion event that could not be delivered. EventID
// names the originating game event so it can be traced in the event log.
type DeadLetterEntry struct {
	SchemaVersion string    `json:"schema_version"`
	RecordedAt    time.Time `json:"recorded_at"`
	EventType     Type      `json:"event_type"`
	EventID       string    `json:"event_id,omitempty"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
	Event         Event     `json:"event"`
}

// DeadLetterWriter appends entries to a JSON-lines file
type DeadLetterWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
	now func() time.Time
}

// NewDeadLetterWriter opens path for appending, creating it if needed
func NewDeadLetterWriter(path string) (*DeadLetterWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DeadLetterFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("open dead-letter file: %w", err)
	}
	return &DeadLetterWriter{f: f, enc: json.NewEncoder(f), now: time.Now}, nil
}

// Write records evt after attempts failed deliveries
func (w *DeadLetterWriter) Write(evt Event, attempts int, lastErr error) error {
	entry := DeadLetterEntry{
		SchemaVersion: DeadLetterSchemaVersion,
		EventType:     evt.Type,
		EventID:       evt.SourceEventID(),
		Attempts:      attempts,
		Event:         evt,
	}
	if lastErr != nil {
		entry.LastError = lastErr.Error()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	entry.RecordedAt = w.now().UTC()
	logger.Warn(LogMsgEventDeadLettered,
		"event_type", entry.EventType, "event_id", entry.EventID, "attempts", attempts, "error", entry.LastError)

	return w.enc.Encode(entry)
}

// Close closes the underlying file
func (w *DeadLetterWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// ReadDeadLetters parses a dead-letter stream. Blank lines are skipped; a
// malformed line fails with its line number.
func ReadDeadLetters(r io.Reader) ([]DeadLetterEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxDeadLetterLine)

	var entries []DeadLetterEntry
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry DeadLetterEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return entries, fmt.Errorf("dead-letter line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// ReadDeadLetterFile reads every entry in the file at path
func ReadDeadLetterFile(path string) ([]DeadLetterEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDeadLetters(f)
}
