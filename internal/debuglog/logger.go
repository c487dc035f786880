// Package debuglog records how a streamed document evolves, one JSON line per
// update, and reads those logs back for display.
package debuglog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger logs document frames to a JSONL file for debugging.
// A nil *Logger is valid and discards everything.
type Logger struct {
	sessionID string
	mu        sync.Mutex
	file      *os.File
	writer    *bufio.Writer
	seq       int
	closeOnce sync.Once
	closed    bool
}

// logEntry is the common structure for all log entries
type logEntry struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id"`
	Type      string `json:"type"` // "session_start" or "frame"
}

type sessionStartEntry struct {
	logEntry
	Command string   `json:"command"`
	Args    []string `json:"args"`
	Cwd     string   `json:"cwd"`
}

type frameEntry struct {
	logEntry
	Seq int `json:"seq"`
	Frame
}

// NewLogger opens path for appending, creating its directory if needed.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	return &Logger{
		sessionID: time.Now().UTC().Format("20060102-150405.000"),
		file:      file,
		writer:    bufio.NewWriter(file),
	}, nil
}

// NewSessionLogger creates a logger writing to a fresh timestamped file in dir.
func NewSessionLogger(dir string) (*Logger, error) {
	name := time.Now().Format("2006-01-02T15-04-05.000000") + ".jsonl"
	return NewLogger(filepath.Join(dir, name))
}

// LogSessionStart logs the CLI invocation that started the stream.
func (l *Logger) LogSessionStart(command string, args []string, cwd string) {
	if l == nil {
		return
	}

	l.writeEntry(sessionStartEntry{
		logEntry: l.newEntry("session_start"),
		Command:  command,
		Args:     args,
		Cwd:      cwd,
	})
	l.Flush()
}

// LogFrame logs one document update.
func (l *Logger) LogFrame(f Frame) {
	if l == nil {
		return
	}

	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.mu.Unlock()

	l.writeEntry(frameEntry{
		logEntry: l.newEntry("frame"),
		Seq:      seq,
		Frame:    f,
	})
	// Final frames are rare and the interesting ones
	if f.Final {
		l.Flush()
	}
}

func (l *Logger) newEntry(typ string) logEntry {
	return logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		SessionID: l.sessionID,
		Type:      typ,
	}
}

// Close closes the logger and flushes any buffered data.
// Close is idempotent and safe to call multiple times.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}

	var closeErr error
	l.closeOnce.Do(func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		if l.file == nil {
			return
		}

		if err := l.writer.Flush(); err != nil {
			closeErr = err
		}
		if err := l.file.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
		l.closed = true
	})
	return closeErr
}

// writeEntry writes a single log entry as a JSON line.
// Does not flush the buffer - caller is responsible for flushing when appropriate.
func (l *Logger) writeEntry(entry any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.writer.Write(data)
	l.writer.WriteString("\n")
}

// Flush flushes the buffered writer to disk.
func (l *Logger) Flush() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.writer == nil {
		return
	}
	l.writer.Flush()
}

// CleanupOldLogs removes JSONL log files older than maxAge from dir.
func CleanupOldLogs(dir string, maxAge time.Duration) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}

	return nil
}
