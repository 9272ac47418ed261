// Package history maintains the append-only JSONL run log consumed by
// downstream meta-analysis and reproducibility audits: one
// RunFingerprint record per line.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/trendlab-go/trendlab/internal/fingerprint"
)

// Writer appends RunFingerprint records to one JSONL file. Safe for
// concurrent use by sweep workers.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens (creating if needed) the history file for appending.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return &Writer{file: f}, nil
}

// Append writes one record as a single JSON line.
func (w *Writer) Append(record fingerprint.RunFingerprint) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("history: marshal: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Close releases the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// Read loads every record from path.
func Read(path string) ([]fingerprint.RunFingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer f.Close()

	var records []fingerprint.RunFingerprint
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec fingerprint.RunFingerprint
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("history: corrupt record: %w", err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}
