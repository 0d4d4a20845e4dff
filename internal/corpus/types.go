package corpus

// Document is one indexable text file discovered by a walk.
type Document struct {
	// Path is the file path as enumerated, used verbatim in search results.
	Path string
	// Content is the full decoded file content.
	Content string
}

// Stats counts per-file outcomes of one walk.
// Found == Indexed + Skipped always holds at completion.
type Stats struct {
	// Found is the number of file entries seen.
	Found int
	// Indexed is the number of files accepted into the corpus.
	Indexed int
	// Skipped is the number of files rejected (binary, empty, unreadable).
	Skipped int
}

// Corpus is the ordered result of one walk. Document order equals
// enumeration order and is stable across runs on an unchanged tree.
type Corpus struct {
	Docs  []Document
	Stats Stats
}
