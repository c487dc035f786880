package debuglog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// rawEntry is the raw JSON structure for parsing
type rawEntry struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	// session_start fields
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Cwd     string   `json:"cwd,omitempty"`
	// frame fields
	Seq int `json:"seq,omitempty"`
	Frame
}

// ListSessions returns summaries of all logs in dir, most recent first.
func ListSessions(dir string) ([]SessionSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sessions []SessionSummary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}

		s, err := ParseSession(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue // Skip malformed files
		}
		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		sessions = append(sessions, SessionSummary{
			ID:        s.ID,
			FilePath:  s.FilePath,
			StartTime: s.StartTime,
			Frames:    len(s.Frames),
			Renders:   s.Renders(),
			FileSize:  size,
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})

	return sessions, nil
}

// ResolveSession resolves a 1-based index (1 = most recent) or a session ID.
// It returns nil when nothing matches.
func ResolveSession(dir, identifier string) (*SessionSummary, error) {
	sessions, err := ListSessions(dir)
	if err != nil {
		return nil, err
	}

	if num, err := strconv.Atoi(identifier); err == nil {
		if num < 1 || num > len(sessions) {
			return nil, nil
		}
		return &sessions[num-1], nil
	}

	for i := range sessions {
		if sessions[i].ID == identifier {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// ParseSession parses a log file into a Session. Malformed lines are
// skipped.
func ParseSession(filePath string) (*Session, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	session := &Session{
		ID:       strings.TrimSuffix(filepath.Base(filePath), ".jsonl"),
		FilePath: filePath,
	}

	scanner := bufio.NewScanner(file)
	// Increase buffer size for large log lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		var entry rawEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		if err != nil {
			continue
		}

		if session.StartTime.IsZero() || ts.Before(session.StartTime) {
			session.StartTime = ts
		}
		if ts.After(session.EndTime) {
			session.EndTime = ts
		}

		switch entry.Type {
		case "session_start":
			session.Command = entry.Command
			session.Args = entry.Args
			session.Cwd = entry.Cwd

		case "frame":
			session.Frames = append(session.Frames, FrameEntry{
				Timestamp: ts,
				Seq:       entry.Seq,
				Frame:     entry.Frame,
			})
		}
	}

	return session, scanner.Err()
}

// ParseRawLines parses a log file and returns raw JSON lines
func ParseRawLines(filePath string) ([]json.RawMessage, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []json.RawMessage
	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		// Make a copy since scanner reuses the buffer
		lineCopy := make([]byte, len(line))
		copy(lineCopy, line)
		lines = append(lines, json.RawMessage(lineCopy))
	}

	return lines, scanner.Err()
}
