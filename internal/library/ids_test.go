package library

import (
	"strings"
	"testing"
)

func TestNewIDShape(t *testing.T) {
	id := NewID(VideoIDPrefix)
	if !strings.HasPrefix(id, "video_") {
		t.Fatalf("missing prefix: %q", id)
	}
	rest := strings.TrimPrefix(id, "video_")
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		t.Fatalf("expected {timestamp}_{suffix}, got %q", rest)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID(NoteIDPrefix)
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}
