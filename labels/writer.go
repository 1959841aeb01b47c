package labels

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer appends records as JSON lines. Earlier runs are kept, so one file
// grows into the whole label archive.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
	path string
}

func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create label directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	buf := bufio.NewWriter(f)
	return &Writer{f: f, buf: buf, enc: json.NewEncoder(buf), path: path}, nil
}

func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) Write(records []Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, record := range records {
		if err := w.enc.Encode(record); err != nil {
			return fmt.Errorf("failed to encode label: %w", err)
		}
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush labels: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("failed to flush labels: %w", err)
	}
	return w.f.Close()
}

// Read loads every record in a label file.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer f.Close()

	var records []Record
	dec := json.NewDecoder(bufio.NewReader(f))
	for dec.More() {
		var record Record
		if err := dec.Decode(&record); err != nil {
			return records, fmt.Errorf("failed to decode label %d: %w", len(records), err)
		}
		records = append(records, record)
	}
	return records, nil
}
