package document

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Interaction is one question/answer pair in a document's QA log.
type Interaction struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryLog appends and reads per-document QA history files. Entries are
// append-only; the only deletion is the sweeper removing whole files.
type HistoryLog struct {
	mu     sync.Mutex
	layout Layout
}

func NewHistoryLog(layout Layout) *HistoryLog {
	return &HistoryLog{layout: layout}
}

// Append records an interaction for the named document.
func (h *HistoryLog) Append(filename, question, answer string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	path := h.layout.HistoryPath(filename)
	history, err := readHistory(path)
	if err != nil {
		return err
	}

	history = append(history, Interaction{
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now(),
	})

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// For returns the interactions saved for the named document, oldest first.
// A document with no history yields an empty slice, not an error.
func (h *HistoryLog) For(filename string) ([]Interaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return readHistory(h.layout.HistoryPath(filename))
}

func readHistory(path string) ([]Interaction, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []Interaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var history []Interaction
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return history, nil
}
