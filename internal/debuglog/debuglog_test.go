package debuglog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
)

func TestLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run.jsonl")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	l.LogSessionStart("render", []string{"--width", "80"}, "/tmp")
	l.LogFrame(Frame{BufferLen: 6, Blocks: 1, Changed: []int{0}, Closers: "**"})
	l.LogFrame(Frame{BufferLen: 12, Blocks: 2, Stable: 1, Changed: []int{1}})
	l.LogFrame(Frame{BufferLen: 12, Blocks: 2, Stable: 2, Final: true})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	// Writes after close are dropped
	l.LogFrame(Frame{BufferLen: 99})

	s, err := ParseSession(path)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if s.ID != "run" {
		t.Errorf("ID = %q, want run", s.ID)
	}
	if s.Command != "render" || len(s.Args) != 2 || s.Cwd != "/tmp" {
		t.Errorf("session start = %q %v %q", s.Command, s.Args, s.Cwd)
	}
	if len(s.Frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(s.Frames))
	}
	for i, f := range s.Frames {
		if f.Seq != i+1 {
			t.Errorf("frame %d seq = %d", i, f.Seq)
		}
	}
	if !s.Frames[2].Final {
		t.Error("last frame should be final")
	}
	if s.Renders() != 2 {
		t.Errorf("Renders() = %d, want 2", s.Renders())
	}
	if s.Completions() != 1 {
		t.Errorf("Completions() = %d, want 1", s.Completions())
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.LogSessionStart("render", nil, "")
	l.LogFrame(Frame{})
	l.Flush()
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil logger: %v", err)
	}
}

func TestParseSessionSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	content := strings.Join([]string{
		`not json`,
		`{"timestamp":"nope","type":"frame","seq":1}`,
		`{"timestamp":"2026-01-02T03:04:05Z","type":"frame","seq":2,"buffer_len":3,"blocks":1}`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := ParseSession(path)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if len(s.Frames) != 1 || s.Frames[0].Seq != 2 || s.Frames[0].BufferLen != 3 {
		t.Errorf("frames = %+v", s.Frames)
	}

	lines, err := ParseRawLines(path)
	if err != nil || len(lines) != 3 {
		t.Errorf("ParseRawLines = %d lines, %v", len(lines), err)
	}
}

func writeLog(t *testing.T, dir, name, ts string) {
	t.Helper()
	line := `{"timestamp":"` + ts + `","type":"frame","seq":1,"changed":[0,1]}` + "\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(line), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestListAndResolveSessions(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "old.jsonl", "2026-01-01T00:00:00Z")
	writeLog(t, dir, "new.jsonl", "2026-02-01T00:00:00Z")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	sessions, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "new" || sessions[1].ID != "old" {
		t.Fatalf("sessions = %+v", sessions)
	}
	if sessions[0].Renders != 2 || sessions[0].Frames != 1 {
		t.Errorf("summary = %+v", sessions[0])
	}

	tests := []struct {
		id   string
		want string
	}{
		{"1", "new"},
		{"2", "old"},
		{"old", "old"},
		{"3", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		got, err := ResolveSession(dir, tt.id)
		if err != nil {
			t.Fatalf("ResolveSession(%q): %v", tt.id, err)
		}
		gotID := ""
		if got != nil {
			gotID = got.ID
		}
		if gotID != tt.want {
			t.Errorf("ResolveSession(%q) = %q, want %q", tt.id, gotID, tt.want)
		}
	}

	missing, err := ListSessions(filepath.Join(dir, "none"))
	if err != nil || missing != nil {
		t.Errorf("ListSessions on missing dir = %v, %v", missing, err)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "stale.jsonl", "2026-01-01T00:00:00Z")
	writeLog(t, dir, "fresh.jsonl", "2026-01-01T00:00:00Z")
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "stale.jsonl"), old, old); err != nil {
		t.Fatal(err)
	}

	if err := CleanupOldLogs(dir, 24*time.Hour); err != nil {
		t.Fatalf("CleanupOldLogs: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "stale.jsonl")); !os.IsNotExist(err) {
		t.Error("stale log should be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "fresh.jsonl")); err != nil {
		t.Error("fresh log should be kept")
	}
}

func TestFormatSession(t *testing.T) {
	s := &Session{
		ID:      "run",
		Command: "render",
		Frames: []FrameEntry{
			{Seq: 1, Frame: Frame{BufferLen: 1500, Blocks: 1, Changed: []int{0}, Closers: "**"}},
			{Seq: 2, Frame: Frame{BufferLen: 1500, Blocks: 1, Stable: 1}},
			{Seq: 3, Frame: Frame{BufferLen: 1501, Blocks: 1, Changed: []int{0}, OpenFence: true, Final: true}},
		},
	}

	var buf bytes.Buffer
	FormatSession(&buf, s, FormatOptions{NoColor: true, ChangedOnly: true})
	out := ansi.Strip(buf.String())

	for _, want := range []string{
		"Session: run",
		"Command: render",
		"3 frames, 2 renders, 1 completed",
		"#1 len=1,500 blocks=1 stable=0 changed=[0] closers=**",
		"#3 FINAL len=1,501",
		"open-fence",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "#2 ") {
		t.Errorf("unchanged frame should be skipped:\n%s", out)
	}
}

func TestFormatTailEntry(t *testing.T) {
	var buf bytes.Buffer
	FormatTailEntry(&buf, []byte(`{"timestamp":"2026-01-02T03:04:05Z","type":"frame","seq":4,"buffer_len":10,"blocks":2,"stable":1}`), true)
	if !strings.Contains(ansi.Strip(buf.String()), "#4 len=10 blocks=2 stable=1") {
		t.Errorf("tail = %q", buf.String())
	}

	buf.Reset()
	FormatTailEntry(&buf, []byte(`garbage`), true)
	if buf.Len() != 0 {
		t.Errorf("garbage produced output %q", buf.String())
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567"}
	for n, want := range tests {
		if got := formatNumber(n); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}
