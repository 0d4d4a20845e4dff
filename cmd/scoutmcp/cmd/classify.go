package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scoutmcp/scoutmcp/internal/classify"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <path>...",
		Short: "Show how files would be classified",
		Long: `Show whether each file would be indexed as text or skipped as
binary, and which rule decided.

Rules run in a fixed order, first match wins: extension denylist,
empty file, NUL byte, control-character ratio, encoding. This is the
same chain the directory walk applies, so classify answers "why was
this file skipped?".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args)
		},
	}

	return cmd
}

func runClassify(cmd *cobra.Command, paths []string) error {
	w := cmd.OutOrStdout()

	for _, path := range paths {
		verdict, err := classifyFile(path)
		if err != nil {
			return err
		}

		kind := "binary"
		if verdict.Text {
			kind = "text"
		}
		_, _ = fmt.Fprintf(w, "%s: %s (rule: %s)\n", path, kind, verdict.Rule)
	}

	return nil
}

// classifyFile samples a file and runs the classification chain on it,
// mirroring what the walk does per candidate.
func classifyFile(path string) (classify.Verdict, error) {
	info, err := os.Stat(path)
	if err != nil {
		return classify.Verdict{}, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	if info.IsDir() {
		return classify.Verdict{}, fmt.Errorf("%s is a directory, expected a file", path)
	}

	// An unreadable file classifies as binary via the empty rule, which
	// matches how the walk treats it.
	f, err := os.Open(path)
	if err != nil {
		return classify.Classify(path, nil), nil
	}
	defer func() { _ = f.Close() }()

	sample := make([]byte, classify.SampleSize)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return classify.Classify(path, nil), nil
	}

	return classify.Classify(path, sample[:n]), nil
}
