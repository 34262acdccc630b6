package export

import "github.com/brogergvhs/crunchymanga/internal/config"

// Batch is a contiguous run of chapter indices [Start, End].
type Batch struct {
	Start int
	End   int
}

func (b Batch) Len() int {
	return b.End - b.Start + 1
}

// Boundary reports whether the batch closes after chapter i of n, for divide d.
type Boundary func(i, n, d int) bool

// EbookBoundary closes after every d-th chapter: [0, d-1], [d, 2d-1], ...
func EbookBoundary(i, n, d int) bool {
	return i == n-1 || (d > 0 && (i+1)%d == 0)
}

// DocumentBoundary is the paginated document rule. It matches EbookBoundary.
func DocumentBoundary(i, n, d int) bool {
	return EbookBoundary(i, n, d)
}

// LegacyDocumentBoundary closes at chapter indices that are multiples of d, so the
// first batch holds d+1 chapters: [0, d], [d+1, 2d], ...
func LegacyDocumentBoundary(i, n, d int) bool {
	return i == n-1 || (d > 0 && i > 0 && i%d == 0)
}

// DocumentBoundaryFor maps the pdf_batching setting to its rule.
func DocumentBoundaryFor(batching string) Boundary {
	if batching == config.BatchingLegacy {
		return LegacyDocumentBoundary
	}
	return DocumentBoundary
}

// Plan partitions n chapters into batches. d = 0 yields a single batch.
func Plan(n, d int, closes Boundary) []Batch {
	var out []Batch
	start := 0
	for i := 0; i < n; i++ {
		if closes(i, n, d) {
			out = append(out, Batch{Start: start, End: i})
			start = i + 1
		}
	}
	return out
}
