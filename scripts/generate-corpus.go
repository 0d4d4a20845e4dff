//go:build ignore

// Package main generates a synthetic mixed corpus for search benchmarking.
// Usage: go run scripts/generate-corpus.go -files 1000 -output testdata/bench
//
// The corpus mixes prose, notes, logs, and CSV files with a slice of
// binary files (denylisted extensions and extensionless NUL blobs), so a
// walk over it exercises every classifier rule. Marker terms are seeded
// into a known fraction of the text files and reported on completion,
// giving searches a verifiable expected hit count.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

var (
	numFiles  = flag.Int("files", 1000, "Number of files to generate")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Word pools for prose generation.
var (
	subjects = []string{
		"the committee", "our team", "the supplier", "a reviewer",
		"the architect", "the customer", "the auditor", "the intern",
		"the contractor", "the neighbor", "the librarian", "the curator",
	}
	verbs = []string{
		"approved", "rejected", "postponed", "reviewed", "shipped",
		"archived", "drafted", "measured", "catalogued", "repaired",
		"scheduled", "cancelled", "inspected", "renovated",
	}
	objects = []string{
		"the quarterly report", "the garden fence", "the travel budget",
		"the kitchen renovation", "the invoice batch", "the reading list",
		"the maintenance plan", "the exhibition notes", "the backup archive",
		"the delivery schedule", "the insurance claim", "the annual survey",
	}
	trailers = []string{
		"before the deadline", "without further delay", "after long discussion",
		"under protest", "with minor corrections", "for the third time",
		"despite the weather", "ahead of schedule", "at considerable cost",
	}

	// markers are seeded into a known fraction of text files. They do not
	// occur in the word pools, so their hit counts are exact.
	markers = []string{"bluejay", "cormorant", "kestrel"}
)

var logLevels = []string{"DEBUG", "INFO", "INFO", "INFO", "WARN", "ERROR"}

var csvHeader = "date,item,quantity,unit_price,total\n"

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	subdirs := []string{"prose", "notes", "logs", "tables", "blobs"}
	for _, subdir := range subdirs {
		if err := os.MkdirAll(filepath.Join(*outputDir, subdir), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory %s: %v\n", subdir, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Generating %d files in %s...\n", *numFiles, *outputDir)

	// Distribution across file kinds.
	proseFiles := *numFiles * 40 / 100
	noteFiles := *numFiles * 25 / 100
	logFiles := *numFiles * 15 / 100
	csvFiles := *numFiles * 10 / 100
	binFiles := *numFiles - proseFiles - noteFiles - logFiles - csvFiles

	markerCounts := make(map[string]int)
	generated := 0

	write := func(kind string, i int, gen func(*rand.Rand, int) (string, string)) {
		name, content := gen(rng, i)
		path := filepath.Join(*outputDir, kind, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			return
		}
		generated++
	}

	for i := 0; i < proseFiles; i++ {
		write("prose", i, func(rng *rand.Rand, i int) (string, string) {
			content := paragraphs(rng, 3+rng.Intn(5))
			if marker, ok := maybeMarker(rng, i); ok {
				content += marker + "\n"
				markerCounts[marker]++
			}
			return fmt.Sprintf("essay_%04d.txt", i), content
		})
	}

	for i := 0; i < noteFiles; i++ {
		write("notes", i, func(rng *rand.Rand, i int) (string, string) {
			content := fmt.Sprintf("# Meeting notes %04d\n\n%s\n## Action items\n\n%s",
				i, paragraphs(rng, 2), paragraphs(rng, 1))
			if marker, ok := maybeMarker(rng, i); ok {
				content += marker + "\n"
				markerCounts[marker]++
			}
			return fmt.Sprintf("meeting_%04d.md", i), content
		})
	}

	for i := 0; i < logFiles; i++ {
		write("logs", i, func(rng *rand.Rand, i int) (string, string) {
			return fmt.Sprintf("service_%04d.log", i), logLines(rng, 40+rng.Intn(60))
		})
	}

	for i := 0; i < csvFiles; i++ {
		write("tables", i, func(rng *rand.Rand, i int) (string, string) {
			return fmt.Sprintf("ledger_%04d.csv", i), csvRows(rng, 20+rng.Intn(30))
		})
	}

	for i := 0; i < binFiles; i++ {
		write("blobs", i, func(rng *rand.Rand, i int) (string, string) {
			// Half decided by extension, half by NUL content.
			if i%2 == 0 {
				return fmt.Sprintf("image_%04d.png", i), blob(rng, 2048)
			}
			return fmt.Sprintf("dump_%04d", i), blob(rng, 2048)
		})
	}

	fmt.Printf("Generated %d files (%d text, %d binary).\n", generated, generated-binFiles, binFiles)
	for _, m := range markers {
		fmt.Printf("Marker %q occurs in %d files.\n", m, markerCounts[m])
	}
}

// maybeMarker seeds a marker term into roughly every tenth text file.
func maybeMarker(rng *rand.Rand, i int) (string, bool) {
	if i%10 != 0 {
		return "", false
	}
	return markers[rng.Intn(len(markers))], true
}

func sentence(rng *rand.Rand) string {
	return fmt.Sprintf("%s %s %s %s.",
		subjects[rng.Intn(len(subjects))],
		verbs[rng.Intn(len(verbs))],
		objects[rng.Intn(len(objects))],
		trailers[rng.Intn(len(trailers))])
}

func paragraphs(rng *rand.Rand, n int) string {
	var out string
	for p := 0; p < n; p++ {
		for s := 0; s < 3+rng.Intn(4); s++ {
			out += sentence(rng) + " "
		}
		out += "\n\n"
	}
	return out
}

func logLines(rng *rand.Rand, n int) string {
	var out string
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		ts = ts.Add(time.Duration(rng.Intn(5000)) * time.Millisecond)
		out += fmt.Sprintf("%s %s %s\n",
			ts.Format(time.RFC3339),
			logLevels[rng.Intn(len(logLevels))],
			sentence(rng))
	}
	return out
}

func csvRows(rng *rand.Rand, n int) string {
	out := csvHeader
	for i := 0; i < n; i++ {
		qty := 1 + rng.Intn(9)
		price := 100 + rng.Intn(9900)
		out += fmt.Sprintf("2025-06-%02d,%s,%d,%d.%02d,%d.%02d\n",
			1+rng.Intn(28),
			objects[rng.Intn(len(objects))],
			qty,
			price/100, price%100,
			qty*price/100, qty*price%100)
	}
	return out
}

// blob produces bytes that fail every text check: NUL-laden and far from
// valid UTF-8.
func blob(rng *rand.Rand, size int) string {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(rng.Intn(256))
	}
	buf[0] = 0x00
	return string(buf)
}
