package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"account-hub/internal/models"
)

// Trail is an append-only JSONL audit log. Appends run under a mutex and are
// flushed before returning; readers re-open the file so Tail sees every
// completed append.
type Trail struct {
	mu   sync.Mutex
	path string
}

func Open(path string) (*Trail, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &Trail{path: path}, nil
}

// Append writes one event as a single JSON line.
func (t *Trail) Append(ev models.AuditEvent) error {
	raw, err := json.Marshal(&ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	raw = append(raw, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(raw); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return f.Sync()
}

// Tail returns up to n most recent events, oldest first. Lines that fail to
// parse are skipped rather than failing the whole read.
func (t *Trail) Tail(n int) ([]models.AuditEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	var events []models.AuditEvent
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var ev models.AuditEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read audit file: %w", err)
	}

	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events, nil
}
