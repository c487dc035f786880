package ui

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

// Pacing defaults for 60fps adaptive release
const (
	DefaultFrameInterval = 16 * time.Millisecond // 60fps
	DefaultBacklog       = 500                   // characters
	DefaultMinWords      = 1
	DefaultMaxWords      = 5
	DefaultMaxWordLength = 12 // Chunk words longer than this
)

// Pacing controls how fast a SmoothBuffer releases text.
type Pacing struct {
	Interval      time.Duration // time between frames
	Backlog       int           // buffered characters at which MaxWords is reached
	MinWords      int
	MaxWords      int
	MaxWordLength int
}

// DefaultPacing releases one to five words every 16ms.
func DefaultPacing() Pacing {
	return Pacing{
		Interval:      DefaultFrameInterval,
		Backlog:       DefaultBacklog,
		MinWords:      DefaultMinWords,
		MaxWords:      DefaultMaxWords,
		MaxWordLength: DefaultMaxWordLength,
	}
}

func (p Pacing) withDefaults() Pacing {
	d := DefaultPacing()
	if p.Interval <= 0 {
		p.Interval = d.Interval
	}
	if p.Backlog <= 0 {
		p.Backlog = d.Backlog
	}
	if p.MinWords <= 0 {
		p.MinWords = d.MinWords
	}
	if p.MaxWords < p.MinWords {
		p.MaxWords = max(d.MaxWords, p.MinWords)
	}
	if p.MaxWordLength <= 0 {
		p.MaxWordLength = d.MaxWordLength
	}
	return p
}

// SmoothTickMsg is sent to trigger the next frame of smooth text rendering
type SmoothTickMsg struct{}

// SmoothBuffer releases streamed Markdown word by word at a pace that
// adapts to how much text is waiting, so a bursty source reads like a
// steady one.
type SmoothBuffer struct {
	mu        sync.Mutex
	pacing    Pacing
	buffer    strings.Builder
	inputDone bool
}

// NewSmoothBuffer creates a SmoothBuffer. Zero fields of p take their
// defaults.
func NewSmoothBuffer(p Pacing) *SmoothBuffer {
	return &SmoothBuffer{pacing: p.withDefaults()}
}

// Pacing returns the effective pacing.
func (b *SmoothBuffer) Pacing() Pacing {
	return b.pacing
}

// Write adds incoming text to the buffer
func (b *SmoothBuffer) Write(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer.WriteString(text)
}

// MarkDone signals that the input stream has ended
func (b *SmoothBuffer) MarkDone() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inputDone = true
}

// IsDrained returns true if the stream is done and buffer is empty
func (b *SmoothBuffer) IsDrained() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inputDone && b.buffer.Len() == 0
}

// Len returns the current buffer size in bytes
func (b *SmoothBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Len()
}

// IsEmpty returns true if the buffer is empty
func (b *SmoothBuffer) IsEmpty() bool {
	return b.Len() == 0
}

// wordsPerFrame scales linearly with the backlog. Caller holds the lock.
func (b *SmoothBuffer) wordsPerFrame() int {
	p := b.pacing
	fillRatio := float64(b.buffer.Len()) / float64(p.Backlog)

	if fillRatio < 0.2 {
		return p.MinWords // Buffer low - slow down
	} else if fillRatio > 0.8 {
		return p.MaxWords // Buffer full - speed up
	}
	return int(float64(p.MinWords) + float64(p.MaxWords-p.MinWords)*fillRatio)
}

// NextWords returns the next few words. Long words are chunked into pieces.
// Whitespace is preserved.
func (b *SmoothBuffer) NextWords() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buffer.Len() == 0 {
		return ""
	}

	result, remaining := extractWords(b.buffer.String(), b.wordsPerFrame(), b.pacing.MaxWordLength)

	b.buffer.Reset()
	b.buffer.WriteString(remaining)

	return result
}

// FlushAll returns all remaining content (for immediate display on skip or cancel)
func (b *SmoothBuffer) FlushAll() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	content := b.buffer.String()
	b.buffer.Reset()
	return content
}

// Reset clears the buffer and resets the done flag
func (b *SmoothBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer.Reset()
	b.inputDone = false
}

// Tick returns a tea.Cmd that sends a SmoothTickMsg after one frame.
func (b *SmoothBuffer) Tick() tea.Cmd {
	return tea.Tick(b.pacing.Interval, func(time.Time) tea.Msg {
		return SmoothTickMsg{}
	})
}

// Pump calls emit with the next words once per frame until the buffer is
// drained or ctx is cancelled. On cancellation whatever is still buffered
// is emitted at once.
func (b *SmoothBuffer) Pump(ctx context.Context, emit func(string) error) error {
	ticker := time.NewTicker(b.pacing.Interval)
	defer ticker.Stop()

	for !b.IsDrained() {
		select {
		case <-ctx.Done():
			if rest := b.FlushAll(); rest != "" {
				if err := emit(rest); err != nil {
					return err
				}
			}
			return ctx.Err()
		case <-ticker.C:
		}
		if words := b.NextWords(); words != "" {
			if err := emit(words); err != nil {
				return err
			}
		}
	}
	return nil
}

// extractWords extracts up to n words from content, chunking words longer
// than maxLen. Returns (extracted, remaining).
func extractWords(content string, n, maxLen int) (string, string) {
	if content == "" || n <= 0 {
		return "", content
	}

	runes := []rune(content)
	pos := 0
	wordsExtracted := 0
	var result strings.Builder

	for pos < len(runes) && wordsExtracted < n {
		// Skip and collect leading whitespace
		wsStart := pos
		for pos < len(runes) && unicode.IsSpace(runes[pos]) {
			pos++
		}
		if pos > wsStart {
			result.WriteString(string(runes[wsStart:pos]))
		}

		if pos >= len(runes) {
			break
		}

		wordStart := pos
		for pos < len(runes) && !unicode.IsSpace(runes[pos]) {
			pos++
		}

		word := runes[wordStart:pos]
		if maxLen > 0 && len(word) > maxLen {
			result.WriteString(string(word[:maxLen]))
			return result.String(), string(word[maxLen:]) + string(runes[pos:])
		}

		result.WriteString(string(word))
		wordsExtracted++
	}

	return result.String(), string(runes[pos:])
}
