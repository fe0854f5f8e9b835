package audit

import (
	"path/filepath"
	"testing"
	"time"

	"account-hub/internal/models"
)

func TestAppendAndTail(t *testing.T) {
	t.Parallel()

	trail, err := Open(filepath.Join(t.TempDir(), "audit.jsonl"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 5; i++ {
		ev := models.AuditEvent{
			Time:      time.Now(),
			AccountID: "acc-1",
			Method:    "POST",
			Path:      "/api/profile",
			Status:    200,
			IP:        "127.0.0.1",
		}
		if err := trail.Append(ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	events, err := trail.Tail(3)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events, want 3", len(events))
	}

	all, err := trail.Tail(0)
	if err != nil {
		t.Fatalf("Tail(0): %v", err)
	}
	if len(all) != 5 {
		t.Errorf("got %d events, want 5", len(all))
	}
	if all[0].Path != "/api/profile" {
		t.Errorf("event not round-tripped: %+v", all[0])
	}
}

func TestTail_NoFile(t *testing.T) {
	t.Parallel()

	trail, err := Open(filepath.Join(t.TempDir(), "audit.jsonl"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	events, err := trail.Tail(10)
	if err != nil {
		t.Fatalf("Tail on missing file: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}
