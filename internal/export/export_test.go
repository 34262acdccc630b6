package export

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/crunchymanga/internal/config"
	"github.com/brogergvhs/crunchymanga/internal/manga"
	"github.com/brogergvhs/crunchymanga/internal/ui"
)

func TestPlanScenario(t *testing.T) {
	want := []Batch{{0, 9}, {10, 19}, {20, 22}}
	assert.Equal(t, want, Plan(23, 10, EbookBoundary))
	assert.Equal(t, want, Plan(23, 10, DocumentBoundary))
}

func TestPlanSingleBatch(t *testing.T) {
	for _, rule := range []Boundary{EbookBoundary, DocumentBoundary, LegacyDocumentBoundary} {
		assert.Equal(t, []Batch{{0, 22}}, Plan(23, 0, rule))
		assert.Equal(t, []Batch{{0, 0}}, Plan(1, 0, rule))
		assert.Empty(t, Plan(0, 0, rule))
	}
}

func TestPlanLegacyDocumentBoundary(t *testing.T) {
	assert.Equal(t, []Batch{{0, 10}, {11, 20}, {21, 22}}, Plan(23, 10, LegacyDocumentBoundary))
	assert.Equal(t, []Batch{{0, 1}, {2, 2}, {3, 3}}, Plan(4, 1, LegacyDocumentBoundary))
	assert.Equal(t, []Batch{{0, 0}}, Plan(1, 5, LegacyDocumentBoundary))
}

func TestPlanEveryChapter(t *testing.T) {
	assert.Equal(t, []Batch{{0, 0}, {1, 1}, {2, 2}}, Plan(3, 1, EbookBoundary))
}

func TestPlanCoversAllChaptersOnce(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for d := 0; d <= 12; d++ {
			for name, rule := range map[string]Boundary{"ebook": EbookBoundary, "legacy": LegacyDocumentBoundary} {
				batches := Plan(n, d, rule)

				next := 0
				for _, b := range batches {
					require.Equal(t, next, b.Start, "%s n=%d d=%d", name, n, d)
					require.GreaterOrEqual(t, b.End, b.Start)
					next = b.End + 1
				}
				require.Equal(t, n, next, "%s n=%d d=%d", name, n, d)

				if name == "ebook" {
					want := 1
					if d > 0 {
						want = (n + d - 1) / d
					}
					assert.Len(t, batches, want, "n=%d d=%d", n, d)
				}
			}
		}
	}
}

func TestDocumentBoundaryFor(t *testing.T) {
	assert.Equal(t, []Batch{{0, 10}, {11, 11}}, Plan(12, 10, DocumentBoundaryFor(config.BatchingLegacy)))
	assert.Equal(t, []Batch{{0, 9}, {10, 11}}, Plan(12, 10, DocumentBoundaryFor(config.BatchingAligned)))
}

func TestParseChoices(t *testing.T) {
	f, err := ParseFormat("PDF file")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	f, err = ParseFormat("Both")
	require.NoError(t, err)
	assert.Equal(t, FormatBoth, f)

	_, err = ParseFormat("cbz")
	assert.Error(t, err)

	for i, label := range DivideChoices {
		d, err := ParseDivide(label)
		require.NoError(t, err)
		assert.Equal(t, Divides[i], d)
		assert.Equal(t, label, DivideLabel(d))
	}

	d, err := ParseDivide("1")
	require.NoError(t, err)
	assert.Equal(t, 1, d)

	_, err = ParseDivide("-3")
	assert.Error(t, err)

	assert.True(t, WantsPDF(FormatBoth))
	assert.True(t, WantsEPUB(FormatBoth))
	assert.False(t, WantsPDF(FormatImages))
	assert.False(t, WantsEPUB(FormatPDF))
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// publication lays out n chapters of two pages each under root/<title>.
func publication(t *testing.T, root string, n, divide int) *manga.Publication {
	t.Helper()
	dir := filepath.Join(root, "Series")
	require.NoError(t, os.MkdirAll(dir, 0755))

	pub := &manga.Publication{
		Title:     "Series",
		Info:      manga.Info{Artist: "Someone", Publisher: "House"},
		Divide:    divide,
		CoverPath: filepath.Join(dir, manga.CoverFile),
	}
	writeJPEG(t, pub.CoverPath, 30, 45)

	for i := 0; i < n; i++ {
		ch := manga.Chapter{Title: "Chapter " + string(rune('A'+i))}
		for p := 1; p <= 2; p++ {
			path := filepath.Join(dir, manga.PageFileName(i, p))
			writeJPEG(t, path, 20+p*10, 40)
			ch.Pages = append(ch.Pages, manga.Page{Chapter: i, Index: p, Path: path})
		}
		pub.Chapters = append(pub.Chapters, ch)
	}
	return pub
}

func TestWritePDF(t *testing.T) {
	dir := t.TempDir()
	pub := publication(t, dir, 1, 0)

	path := filepath.Join(dir, "out.pdf")
	require.NoError(t, WritePDF(path, pub.PagePaths(0, 0), "a4"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))

	assert.Error(t, WritePDF(path, nil, "A4"))
	assert.Error(t, WritePDF(path, pub.PagePaths(0, 0), "B52"))
}

func TestFit(t *testing.T) {
	x, y, w, h := fit(100, 200, 400, 400)
	assert.InDelta(t, 100, x, 0.001)
	assert.InDelta(t, 0, y, 0.001)
	assert.InDelta(t, 200, w, 0.001)
	assert.InDelta(t, 400, h, 0.001)

	x, y, w, h = fit(400, 100, 200, 400)
	assert.InDelta(t, 0, x, 0.001)
	assert.InDelta(t, 175, y, 0.001)
	assert.InDelta(t, 200, w, 0.001)
	assert.InDelta(t, 50, h, 0.001)
}

func zipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	out := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(b)
	}
	return out
}

func TestWriteEPUB(t *testing.T) {
	dir := t.TempDir()
	pub := publication(t, dir, 2, 0)

	path := filepath.Join(dir, "vol.epub")
	require.NoError(t, WriteEPUB(path, Volume{
		Title:    manga.VolumeTitle(pub.Title, 1),
		Series:   pub.Title,
		Info:     pub.Info,
		Cover:    pub.CoverPath,
		Chapters: pub.Chapters,
	}))

	entries := zipEntries(t, path)

	var images, sections []string
	for name, body := range entries {
		switch {
		case strings.HasSuffix(name, ".jpg"):
			images = append(images, filepath.Base(name))
		case strings.Contains(name, "chapter") && strings.HasSuffix(name, ".xhtml"):
			sections = append(sections, body)
		}
	}
	assert.ElementsMatch(t, []string{"cover.jpg", "000_p001.jpg", "000_p002.jpg", "001_p001.jpg", "001_p002.jpg"}, images)
	require.Len(t, sections, 2)

	all := strings.Join(sections, "\n")
	assert.Contains(t, all, `title="Series - Chapter A - Page 1"`)
	assert.Contains(t, all, `title="Series - Chapter B - Page 2"`)

	var opf string
	for name, body := range entries {
		if strings.HasSuffix(name, ".opf") {
			opf = body
		}
	}
	assert.Contains(t, opf, "Series - Volume 1.")
	assert.Contains(t, opf, "Someone")
}

func TestExportScenario(t *testing.T) {
	root := t.TempDir()
	pub := publication(t, root, 23, 10)
	stats := &ui.Stats{}

	x := New(nil, stats, Options{Dir: root, Name: "Series", Format: FormatBoth, PageSize: "LETTER"})
	paths, err := x.Export(pub)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		assert.FileExists(t, p)
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{
		"Series - 001-010.pdf",
		"Series - 011-020.pdf",
		"Series - 021-023.pdf",
		"Series - Volume 1.001-010.epub",
		"Series - Volume 2.011-020.epub",
		"Series - Volume 3.021-023.epub",
	}, names)
	assert.Equal(t, int64(6), stats.Documents.Load())
}

func TestExportLegacyBatchingAndFormats(t *testing.T) {
	root := t.TempDir()
	pub := publication(t, root, 12, 10)

	x := New(nil, nil, Options{Dir: root, Name: "Series", Format: FormatPDF, PageSize: "A5", Batching: config.BatchingLegacy})
	paths, err := x.Export(pub)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"Series - 001-011.pdf", "Series - 012-012.pdf"}, names)

	paths, err = New(nil, nil, Options{Dir: root, Name: "Series", Format: FormatImages}).Export(pub)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

var rePDFPage = regexp.MustCompile(`/Type /Page[^s]`)

func pdfPages(t *testing.T, path string) int {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return len(rePDFPage.FindAll(b, -1))
}

func TestCoverOnlyInFirstPDF(t *testing.T) {
	root := t.TempDir()
	pub := publication(t, root, 3, 1)

	paths, err := New(nil, nil, Options{Dir: root, Name: "Series", Format: FormatPDF, PageSize: "A4"}).Export(pub)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	// two pages per chapter, plus the cover in the first file
	assert.Equal(t, 3, pdfPages(t, paths[0]))
	assert.Equal(t, 2, pdfPages(t, paths[1]))
	assert.Equal(t, 2, pdfPages(t, paths[2]))
}
