package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a status message
	w.Status("🔍", "Walking directory...")

	// Then: output contains icon and message
	output := buf.String()
	assert.Contains(t, output, "🔍")
	assert.Contains(t, output, "Walking directory...")
}

func TestWriter_Status_NoIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("", "continuation line")

	assert.Equal(t, "   continuation line\n", buf.String())
}

func TestWriter_Success_PrintsCheckmark(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("Search complete")

	output := buf.String()
	assert.Contains(t, output, "✅")
	assert.Contains(t, output, "Search complete")
}

func TestWriter_Warning_PrintsWarningIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Warning("telemetry disabled")

	output := buf.String()
	assert.Contains(t, output, "⚠️")
	assert.Contains(t, output, "telemetry disabled")
}

func TestWriter_Error_PrintsErrorIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Error("path is not a directory")

	output := buf.String()
	assert.Contains(t, output, "❌")
	assert.Contains(t, output, "path is not a directory")
}

func TestWriter_Errorf_FormatsMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Errorf("exit code %d", 1)

	assert.Contains(t, buf.String(), "exit code 1")
}

func TestWriter_BufferIsNotTTY_NoEscapeCodes(t *testing.T) {
	// A bytes.Buffer is not a terminal, so styling must be off and the
	// output must carry no ANSI escape sequences.
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("done")
	w.Warning("careful")
	w.Error("broken")
	w.Header("Summary")
	w.Detail("secondary")

	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestWriter_WithNoColor_ForcesPlain(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, WithNoColor(true))

	w.Header("Totals")

	assert.Equal(t, "Totals\n", buf.String())
}

func TestWriter_Code_IndentsEveryLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Code("line one\nline two")

	lines := strings.Split(buf.String(), "\n")
	assert.Contains(t, lines, "  line one")
	assert.Contains(t, lines, "  line two")
}

func TestWriter_Progressf_PlainModeOneLinePerUpdate(t *testing.T) {
	// Without a TTY each progress update is a full line, no carriage
	// returns.
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progressf("searching %d files", 10)
	w.Progressf("searching %d files", 20)
	w.ProgressDone()

	output := buf.String()
	assert.NotContains(t, output, "\r")
	assert.Equal(t, 2, strings.Count(output, "\n"))
}

func TestWriter_Newline(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Newline()

	assert.Equal(t, "\n", buf.String())
}

func TestIsTTY_NilAndBuffer(t *testing.T) {
	assert.False(t, IsTTY(nil))
	assert.False(t, IsTTY(&bytes.Buffer{}))
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestDetectCI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestGetStyles_NoColorRendersPlain(t *testing.T) {
	styles := GetStyles(true)

	assert.Equal(t, "hello", styles.Header.Render("hello"))
	assert.Equal(t, "hello", styles.Error.Render("hello"))
}
