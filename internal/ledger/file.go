package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"SignalSentinel/internal/model"
)

// FileLedger stores the alert ledger as an indented JSON array on disk.
type FileLedger struct {
	mu   sync.Mutex
	path string
}

// NewFileLedger creates a FileLedger. The file is created on first Save.
func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path}
}

func (l *FileLedger) Name() string { return "file" }

// Load reads the ledger. Returns an empty ledger if the file doesn't exist.
func (l *FileLedger) Load(_ context.Context) ([]model.AlertRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.AlertRecord{}, nil
		}
		return nil, err
	}
	var records []model.AlertRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.path, err)
	}
	return records, nil
}

// Save replaces the ledger file via a temp file and rename.
func (l *FileLedger) Save(_ context.Context, records []model.AlertRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if records == nil {
		records = []model.AlertRecord{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}
