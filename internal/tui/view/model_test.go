package view

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/samsaffron/streamdown/internal/ui"
)

func newTestModel() *Model {
	return New("test.md", nil, ui.Pacing{}, nil, 60, 10, nil, nil)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStreamCompletesGrowingBlock(t *testing.T) {
	m := newTestModel()

	m.Update(chunkMsg("**hel"))
	m.Update(ui.SmoothTickMsg{})
	if m.rendered != "**hel**" {
		t.Fatalf("mid-stream render = %q, want %q", m.rendered, "**hel**")
	}
	if !m.streaming {
		t.Fatal("should still be streaming")
	}

	_, cmd := m.Update(inputDoneMsg{})
	if cmd == nil {
		t.Fatal("input done should schedule a tick to drain the buffer")
	}
	m.Update(ui.SmoothTickMsg{})
	if m.streaming {
		t.Fatal("should be done once input ended and the buffer drained")
	}
	if m.rendered != "**hel" {
		t.Errorf("final render = %q, open markers should stay open", m.rendered)
	}
	if out := ansi.Strip(m.View()); !strings.Contains(out, "done") || !strings.Contains(out, "1 blocks") {
		t.Errorf("footer missing status: %q", out)
	}
}

func TestTicksReleaseWordsGradually(t *testing.T) {
	m := New("t", nil, ui.Pacing{MinWords: 1, MaxWords: 1}, nil, 60, 10, nil, nil)
	m.Update(chunkMsg("one two three"))

	m.Update(ui.SmoothTickMsg{})
	if m.Markdown() != "one" {
		t.Fatalf("after one tick: %q", m.Markdown())
	}
	m.Update(ui.SmoothTickMsg{})
	if m.Markdown() != "one two" {
		t.Fatalf("after two ticks: %q", m.Markdown())
	}
}

func TestSkipShowsEverything(t *testing.T) {
	m := New("t", nil, ui.Pacing{MinWords: 1, MaxWords: 1}, nil, 60, 10, nil, nil)
	m.Update(chunkMsg("one two three"))

	m.Update(keyRunes("s"))
	if m.Markdown() != "one two three" {
		t.Errorf("skip showed %q", m.Markdown())
	}
	if !m.streaming {
		t.Error("skip before input ends should keep streaming")
	}

	m.Update(inputDoneMsg{})
	m.Update(keyRunes("s"))
	if m.streaming {
		t.Error("skip after input ended should finish")
	}
}

func TestListen(t *testing.T) {
	chunks := make(chan string, 1)
	errc := make(chan error, 1)
	m := New("t", nil, ui.Pacing{}, nil, 60, 10, chunks, errc)

	chunks <- "abc"
	if msg := m.listen()(); msg != chunkMsg("abc") {
		t.Fatalf("got %#v, want chunk", msg)
	}

	boom := errors.New("boom")
	errc <- boom
	close(chunks)
	msg, ok := m.listen()().(inputDoneMsg)
	if !ok || !errors.Is(msg.err, boom) {
		t.Fatalf("got %#v, want inputDoneMsg with error", msg)
	}

	m.Update(msg)
	m.Update(ui.SmoothTickMsg{})
	if !errors.Is(m.Err(), boom) {
		t.Errorf("Err() = %v", m.Err())
	}
	if out := ansi.Strip(m.View()); !strings.Contains(out, "error: boom") {
		t.Errorf("footer should show the error: %q", out)
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.viewport.Width != 100 || m.viewport.Height != 30-footerHeight {
		t.Errorf("viewport = %dx%d", m.viewport.Width, m.viewport.Height)
	}
}

func TestFollowToggle(t *testing.T) {
	m := newTestModel()
	m.Update(keyRunes("g"))
	if m.follow {
		t.Fatal("jumping to the top should stop following")
	}
	if !strings.Contains(ansi.Strip(m.View()), "follow off") {
		t.Error("footer should say follow is off")
	}
	m.Update(keyRunes("G"))
	if !m.follow {
		t.Error("jumping to the bottom should follow again")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}
