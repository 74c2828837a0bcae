package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Field is one key=value pair trailing a log message.
type Field struct {
	Key   string
	Value string
}

// Line is a parsed log line.
type Line struct {
	Raw     string
	Time    time.Time
	Level   string
	Message string
	Fields  []Field
}

var levels = map[string]struct{}{
	"DEBU": {}, "INFO": {}, "WARN": {}, "ERRO": {}, "FATA": {},
}

// Parse splits a logfmt-style line into timestamp, level, message and
// fields. Lines that do not follow the format come back with only Message
// set.
func Parse(raw string) Line {
	line := Line{Raw: raw}
	rest := strings.TrimSpace(raw)

	if head, tail, ok := strings.Cut(rest, " "); ok {
		if ts, err := time.Parse(time.RFC3339, head); err == nil {
			line.Time = ts
			rest = tail
		}
	}
	if head, tail, ok := strings.Cut(rest, " "); ok {
		if _, known := levels[head]; known {
			line.Level = head
			rest = tail
		}
	} else if _, known := levels[rest]; known {
		line.Level = rest
		rest = ""
	}

	tokens := tokenize(rest)
	msgEnd := len(tokens)
	for i, tok := range tokens {
		if isField(tok) {
			msgEnd = i
			break
		}
	}
	line.Message = strings.Join(tokens[:msgEnd], " ")
	for _, tok := range tokens[msgEnd:] {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			line.Message = strings.TrimSpace(line.Message + " " + tok)
			continue
		}
		line.Fields = append(line.Fields, Field{Key: k, Value: v})
	}
	return line
}

func isField(tok string) bool {
	k, _, ok := strings.Cut(tok, "=")
	if !ok || k == "" {
		return false
	}
	for i, r := range k {
		if r == '_' || r == '.' || r == '-' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// tokenize splits on spaces outside double quotes.
func tokenize(s string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quoted:
			cur.WriteRune(r)
			escaped = true
		case r == '"':
			cur.WriteRune(r)
			quoted = !quoted
		case r == ' ' && !quoted:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// Styles colors the parts of a parsed line.
type Styles struct {
	Time    lipgloss.Style
	Debug   lipgloss.Style
	Info    lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Message lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
}

func (s Styles) level(level string) lipgloss.Style {
	switch level {
	case "DEBU":
		return s.Debug
	case "INFO":
		return s.Info
	case "WARN":
		return s.Warn
	case "ERRO", "FATA":
		return s.Error
	default:
		return s.Message
	}
}

// ColorizeLine renders one raw log line with styles.
func ColorizeLine(raw string, styles Styles) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	line := Parse(raw)
	parts := make([]string, 0, 3+len(line.Fields))
	if !line.Time.IsZero() {
		parts = append(parts, styles.Time.Render(line.Time.Format("15:04:05")))
	}
	if line.Level != "" {
		parts = append(parts, styles.level(line.Level).Render(line.Level))
	}
	if line.Message != "" {
		parts = append(parts, styles.Message.Render(line.Message))
	}
	for _, f := range line.Fields {
		parts = append(parts, styles.Key.Render(f.Key+"=")+styles.Value.Render(f.Value))
	}
	return strings.Join(parts, " ")
}

// ColorizeLines renders every line with styles.
func ColorizeLines(lines []string, styles Styles) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line, styles)
	}
	return out
}
