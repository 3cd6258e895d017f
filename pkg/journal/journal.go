package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CycleRecord captures one batch pipeline stage run for audit and replay.
type CycleRecord struct {
	Timestamp    time.Time      `json:"timestamp"`
	RunID        string         `json:"run_id"`
	Stage        string         `json:"stage"`
	CycleNumber  int            `json:"cycle_number"`
	DurationMs   int64          `json:"duration_ms"`
	Artifacts    []string       `json:"artifacts,omitempty"`
	Records      int            `json:"records,omitempty"`
	Skipped      int            `json:"skipped,omitempty"`
	SkippedIDs   []string       `json:"skipped_ids,omitempty"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// Writer persists cycle records to a directory as JSON files (journal style).
type Writer struct {
	dir   string
	mu    sync.Mutex
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// Dir returns the journal directory.
func (w *Writer) Dir() string { return w.dir }

// WriteCycle writes a cycle record to a timestamped JSON file.
func (w *Writer) WriteCycle(rec *CycleRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	rec.CycleNumber = w.seq
	name := fmt.Sprintf("cycle_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), w.seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
