// Package clipboard moves Markdown and rendered HTML between streamdown and
// the system clipboard using the platform's command-line utilities.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable is returned when no clipboard utility is installed.
var ErrUnavailable = errors.New("no clipboard utility found (install wl-clipboard or xclip)")

// MIME types in the order they are preferred when pasting.
var preferredText = []string{"text/markdown", "text/x-markdown", "text/plain;charset=utf-8", "text/plain", "UTF8_STRING", "STRING"}

// tool describes one clipboard utility.
type tool struct {
	bin       string
	listTypes []string                   // args printing the offered types, one per line
	read      func(mime string) []string // args reading the clipboard as mime ("" = default)
	write     func(mime string) []string // args writing stdin to the clipboard as mime
}

var tools = map[string][]tool{
	"darwin": {
		{
			bin:  "pbpaste",
			read: func(string) []string { return nil },
		},
		{
			bin:   "pbcopy",
			write: func(string) []string { return nil },
		},
	},
	"linux": {
		{
			bin:       "wl-paste",
			listTypes: []string{"--list-types"},
			read: func(mime string) []string {
				if mime == "" {
					return []string{"--no-newline"}
				}
				return []string{"--no-newline", "--type", mime}
			},
		},
		{
			bin: "wl-copy",
			write: func(mime string) []string {
				if mime == "" {
					return nil
				}
				return []string{"--type", mime}
			},
		},
		{
			bin:       "xclip",
			listTypes: []string{"-selection", "clipboard", "-t", "TARGETS", "-o"},
			read: func(mime string) []string {
				if mime == "" {
					return []string{"-selection", "clipboard", "-o"}
				}
				return []string{"-selection", "clipboard", "-t", mime, "-o"}
			},
			write: func(mime string) []string {
				if mime == "" {
					mime = "text/plain"
				}
				return []string{"-selection", "clipboard", "-t", mime}
			},
		},
	},
}

func readers() []tool {
	var out []tool
	for _, t := range tools[runtime.GOOS] {
		if t.read != nil {
			out = append(out, t)
		}
	}
	return out
}

func writers() []tool {
	var out []tool
	for _, t := range tools[runtime.GOOS] {
		if t.write != nil {
			out = append(out, t)
		}
	}
	return out
}

// ReadText reads Markdown (or plain text) from the system clipboard.
func ReadText() (string, error) {
	if _, ok := tools[runtime.GOOS]; !ok {
		return "", fmt.Errorf("clipboard read not supported on %s", runtime.GOOS)
	}
	for _, t := range readers() {
		if _, err := exec.LookPath(t.bin); err != nil {
			continue
		}
		mime := ""
		if t.listTypes != nil {
			if types, err := run(t.bin, t.listTypes, nil); err == nil {
				mime = detectPreferredTextMIME(types)
			}
		}
		out, err := run(t.bin, t.read(mime), nil)
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return out, nil
	}
	return "", ErrUnavailable
}

// CopyText copies text to the system clipboard
func CopyText(text string) error {
	return copyAs("", text)
}

// CopyHTML copies rendered HTML to the system clipboard so it pastes as rich
// text where the target supports it.
func CopyHTML(html string) error {
	return copyAs("text/html", html)
}

func copyAs(mime, text string) error {
	if _, ok := tools[runtime.GOOS]; !ok {
		return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}
	for _, t := range writers() {
		if _, err := exec.LookPath(t.bin); err != nil {
			continue
		}
		if _, err := run(t.bin, t.write(mime), strings.NewReader(text)); err != nil {
			return fmt.Errorf("failed to write clipboard: %w", err)
		}
		return nil
	}
	return ErrUnavailable
}

func run(bin string, args []string, stdin *strings.Reader) (string, error) {
	cmd := exec.Command(bin, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return out.String(), nil
}

// detectPreferredTextMIME picks the best text type from a newline separated
// list of offered types. Markdown wins over plain text; an offer with no
// text type yields "" so the utility falls back to its default.
func detectPreferredTextMIME(types string) string {
	offered := make(map[string]string)
	var firstText string
	for _, line := range strings.Split(types, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(line, " ", ""))
		if _, ok := offered[key]; !ok {
			offered[key] = line
		}
		if firstText == "" && strings.HasPrefix(key, "text/") && key != "text/html" && !strings.HasPrefix(key, "text/uri-list") {
			firstText = line
		}
	}
	for _, want := range preferredText {
		if line, ok := offered[strings.ToLower(want)]; ok {
			return line
		}
	}
	return firstText
}
