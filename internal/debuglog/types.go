package debuglog

import (
	"time"
)

// Frame describes one update of a streamed document.
type Frame struct {
	BufferLen int      `json:"buffer_len"`
	Blocks    int      `json:"blocks"`
	Stable    int      `json:"stable"`            // leading blocks unchanged since the last update
	Changed   []int    `json:"changed,omitempty"` // indices handed to the renderer
	Closers   string   `json:"closers,omitempty"` // markers appended to the growing block
	OpenFence bool     `json:"open_fence,omitempty"`
	Kinds     []string `json:"kinds,omitempty"`
	Final     bool     `json:"final,omitempty"` // update made after the stream ended
}

// FrameEntry is a logged frame.
type FrameEntry struct {
	Timestamp time.Time
	Seq       int
	Frame
}

// Session is a parsed log file.
type Session struct {
	ID        string
	FilePath  string
	StartTime time.Time
	EndTime   time.Time
	Command   string   // CLI command that started the session
	Args      []string // CLI arguments
	Cwd       string   // Working directory
	Frames    []FrameEntry
}

// Renders returns the number of block renders across the session.
func (s *Session) Renders() int {
	n := 0
	for _, f := range s.Frames {
		n += len(f.Changed)
	}
	return n
}

// Completions returns the number of frames whose growing block needed
// closing markers.
func (s *Session) Completions() int {
	n := 0
	for _, f := range s.Frames {
		if f.Closers != "" {
			n++
		}
	}
	return n
}

// SessionSummary is a lightweight session info for listing
type SessionSummary struct {
	ID        string
	FilePath  string
	StartTime time.Time
	Frames    int
	Renders   int
	FileSize  int64
}
