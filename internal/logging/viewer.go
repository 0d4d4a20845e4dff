package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	// followInterval is how often Follow polls for appended data.
	followInterval = 100 * time.Millisecond
	// maxLineSize bounds a single JSON log line.
	maxLineSize = 1024 * 1024
)

// LogEntry is one parsed line of the JSON log.
type LogEntry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Msg     string         `json:"msg"`
	Attrs   map[string]any `json:"-"` // attributes beyond the fixed fields
	Raw     string         `json:"-"` // the line as read
	IsValid bool           `json:"-"` // false when the line is not JSON
}

// ViewerConfig holds the filters applied while viewing.
type ViewerConfig struct {
	Level   string         // drop entries below this level
	Pattern *regexp.Regexp // keep only lines matching this pattern
	NoColor bool
}

// Viewer reads, filters, and renders the scoutmcp log file.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
}

// NewViewer creates a viewer writing rendered entries to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{config: cfg, out: out}
}

// Tail returns the entries among the last n lines of the file that pass
// the configured filters.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Ring of the trailing n lines, so the whole log never has to fit
	// in memory.
	ring := make([]string, n)
	count := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)
	for scanner.Scan() {
		ring[count%n] = scanner.Text()
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	first := 0
	if count > n {
		first = count - n
	}

	var entries []LogEntry
	for i := first; i < count; i++ {
		entry := v.parseLine(ring[i%n])
		if v.allow(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Follow streams entries appended to the file until ctx is cancelled.
// New data is polled on a short interval, like tail -f without inotify.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !v.forward(ctx, reader, entries) {
				return nil
			}
		}
	}
}

// forward sends every complete line currently buffered. It reports
// false once ctx is cancelled mid-send.
func (v *Viewer) forward(ctx context.Context, reader *bufio.Reader, entries chan<- LogEntry) bool {
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return true // partial line or no data yet
		}

		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			continue
		}
		entry := v.parseLine(line)
		if !v.allow(entry) {
			continue
		}

		select {
		case entries <- entry:
		case <-ctx.Done():
			return false
		}
	}
}

// Print renders entries to the viewer's output.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

// FormatEntry renders one entry as "HH:MM:SS.mmm LEVEL msg k=v ...".
// Lines that never parsed as JSON pass through untouched.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	var b strings.Builder
	b.WriteString(entry.Time.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(v.paintLevel(entry.Level))
	b.WriteByte(' ')
	b.WriteString(entry.Msg)

	for _, k := range sortedKeys(entry.Attrs) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Attrs[k])
	}
	return b.String()
}

// parseLine decodes a JSON log line. On any decode failure the entry
// carries only the raw text, marked invalid.
func (v *Viewer) parseLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var fields map[string]any
	if json.Unmarshal([]byte(line), &fields) != nil {
		return entry
	}
	entry.IsValid = true

	if s, ok := fields["time"].(string); ok {
		entry.Time, _ = time.Parse(time.RFC3339Nano, s)
	}
	entry.Level, _ = fields["level"].(string)
	entry.Msg, _ = fields["msg"].(string)

	delete(fields, "time")
	delete(fields, "level")
	delete(fields, "msg")
	entry.Attrs = fields

	return entry
}

// allow applies the level and pattern filters.
func (v *Viewer) allow(entry LogEntry) bool {
	if v.config.Level != "" &&
		LevelFromString(entry.Level) < LevelFromString(v.config.Level) {
		return false
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}
	return true
}

var levelColors = map[string]string{
	"debug":   "\033[90m",
	"info":    "\033[32m",
	"warn":    "\033[33m",
	"warning": "\033[33m",
	"error":   "\033[31m",
}

// paintLevel renders the level as a fixed-width, optionally colored tag.
func (v *Viewer) paintLevel(level string) string {
	tag := strings.ToUpper(level)
	if len(tag) > 5 {
		tag = tag[:5]
	}
	tag = fmt.Sprintf("%-5s", tag)

	color, ok := levelColors[strings.ToLower(level)]
	if v.config.NoColor || !ok {
		return tag
	}
	return color + tag + "\033[0m"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
