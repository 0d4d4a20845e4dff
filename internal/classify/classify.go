// Package classify decides whether a file is indexable text or excluded binary.
//
// The decision is a fixed chain of rules applied in order, first match wins:
// extension denylist, empty sample, NUL byte, control-character ratio, and
// finally encoding. Classification is pure: it never touches the filesystem
// and never fails. Callers sample the leading bytes of a file (SampleSize)
// and pass them in.
package classify

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// SampleSize is the number of leading bytes callers should read for
	// classification.
	SampleSize = 8192

	// maxControlRatio is the fraction of control characters above which a
	// sample is considered binary.
	maxControlRatio = 0.30

	// minASCIIRatio is the fraction of ASCII bytes required for a sample
	// that is not valid UTF-8 to still count as text.
	minASCIIRatio = 0.80
)

// Rule names carried on a Verdict, in chain order.
const (
	RuleExtension    = "extension"
	RuleEmpty        = "empty"
	RuleNulByte      = "nul-byte"
	RuleControlRatio = "control-ratio"
	RuleEncoding     = "encoding"
)

// binaryExtensions is the denylist of file extensions that are never
// indexed, regardless of content.
var binaryExtensions = []string{
	"exe", "dll", "so", "dylib", "bin", "obj", "o", "a", "lib",
	"png", "jpg", "jpeg", "gif", "bmp", "tiff", "webp", "ico",
	"mp3", "mp4", "wav", "ogg", "flac", "avi", "mov", "mkv",
	"zip", "gz", "tar", "7z", "rar", "jar", "war",
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
	"db", "sqlite", "mdb", "iso", "dmg", "class",
}

var binaryExtSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(binaryExtensions))
	for _, ext := range binaryExtensions {
		set[ext] = struct{}{}
	}
	return set
}()

// Verdict is the outcome of classifying one file.
type Verdict struct {
	// Text is true when the file should be indexed.
	Text bool
	// Rule names the chain rule that decided the verdict.
	Rule string
}

// checkFunc inspects a file and either decides the verdict or passes.
// The second return value reports whether the rule decided.
type checkFunc func(path string, sample []byte) (text bool, decided bool)

var chain = []struct {
	name  string
	check checkFunc
}{
	{RuleExtension, checkExtension},
	{RuleEmpty, checkEmpty},
	{RuleNulByte, checkNulByte},
	{RuleControlRatio, checkControlRatio},
	{RuleEncoding, checkEncoding},
}

// Classify runs the rule chain over a path and its sampled leading bytes.
// An unreadable file should be passed with a nil sample; it classifies as
// binary via the empty rule.
func Classify(path string, sample []byte) Verdict {
	for _, r := range chain {
		if text, decided := r.check(path, sample); decided {
			return Verdict{Text: text, Rule: r.name}
		}
	}
	// The encoding rule always decides; this is unreachable.
	return Verdict{Text: false, Rule: RuleEncoding}
}

// BinaryExtensions returns the extension denylist in canonical order.
func BinaryExtensions() []string {
	out := make([]string, len(binaryExtensions))
	copy(out, binaryExtensions)
	return out
}

func checkExtension(path string, _ []byte) (bool, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false, false
	}
	if _, ok := binaryExtSet[ext]; ok {
		return false, true
	}
	return false, false
}

func checkEmpty(_ string, sample []byte) (bool, bool) {
	if len(sample) == 0 {
		return false, true
	}
	return false, false
}

func checkNulByte(_ string, sample []byte) (bool, bool) {
	if bytes.IndexByte(sample, 0x00) >= 0 {
		return false, true
	}
	return false, false
}

func checkControlRatio(_ string, sample []byte) (bool, bool) {
	control := 0
	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			control++
		}
	}
	if float64(control)/float64(len(sample)) > maxControlRatio {
		return false, true
	}
	return false, false
}

func checkEncoding(_ string, sample []byte) (bool, bool) {
	if utf8.Valid(sample) {
		return true, true
	}
	ascii := 0
	for _, b := range sample {
		if b < 0x80 {
			ascii++
		}
	}
	return float64(ascii)/float64(len(sample)) >= minASCIIRatio, true
}
