// Package output provides consistent CLI output formatting.
//
// Status lines belong on stderr and payload (reports, JSON) on stdout,
// so piped output stays clean; the caller picks the stream when
// constructing a Writer. Styling is enabled only for interactive
// terminals and can always be forced off.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool
	styles   Styles
}

// Option configures a Writer.
type Option func(*Writer)

// WithNoColor forces styling off when set. Passing false keeps the
// automatic TTY detection.
func WithNoColor(noColor bool) Option {
	return func(w *Writer) {
		if noColor {
			w.useColor = false
		}
	}
}

// New creates a new output Writer. Color is enabled when out is an
// interactive terminal and neither NO_COLOR nor a CI environment is
// detected.
func New(out io.Writer, opts ...Option) *Writer {
	w := &Writer{
		out:      out,
		useColor: IsTTY(out) && !DetectNoColor() && !DetectCI(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.styles = GetStyles(!w.useColor)
	return w
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", w.styles.Success.Render(msg))
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", w.styles.Warning.Render(msg))
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", w.styles.Error.Render(msg))
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Header prints a bold section header.
func (w *Writer) Header(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(msg))
}

// Detail prints a dimmed secondary line.
func (w *Writer) Detail(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Label.Render(msg))
}

// Detailf prints a formatted dimmed secondary line.
func (w *Writer) Detailf(format string, args ...any) {
	w.Detail(fmt.Sprintf(format, args...))
}

// Code prints a block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	// Indent each line
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Progressf prints a transient progress line. On a terminal the line is
// rewritten in place; otherwise each update is its own line.
func (w *Writer) Progressf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.useColor {
		_, _ = fmt.Fprintf(w.out, "\r%s", w.styles.Label.Render(msg))
		return
	}
	_, _ = fmt.Fprintln(w.out, msg)
}

// ProgressDone completes an in-place progress line with a newline.
func (w *Writer) ProgressDone() {
	if w.useColor {
		_, _ = fmt.Fprintln(w.out)
	}
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
