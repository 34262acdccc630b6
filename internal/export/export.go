// Package export groups downloaded chapters into batches and writes each batch as a
// PDF document and/or an EPUB volume.
package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brogergvhs/crunchymanga/internal/config"
	"github.com/brogergvhs/crunchymanga/internal/manga"
	"github.com/brogergvhs/crunchymanga/internal/ui"
)

const (
	FormatImages = "images"
	FormatPDF    = "pdf"
	FormatEPUB   = "epub"
	FormatBoth   = "both"
)

// FormatChoices are the prompt labels, in the order of Formats.
var (
	Formats       = []string{FormatImages, FormatPDF, FormatEPUB, FormatBoth}
	FormatChoices = []string{"Images - each page is a JPEG file", "PDF file", "EPUB file", "Both PDF and EPUB"}
)

// DivideChoices are the prompt labels, in the order of Divides.
var (
	Divides       = []int{0, 20, 10, 5, 1}
	DivideChoices = []string{
		"Single file",
		"Every 20 chapters into a new file",
		"Every 10 chapters into a new file",
		"Every 5 chapters into a new file",
		"Every single chapter into a new file",
	}
)

// ParseFormat accepts a format key or its prompt label.
func ParseFormat(s string) (string, error) {
	for i, f := range Formats {
		if strings.EqualFold(s, f) || s == FormatChoices[i] {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, want one of %s", s, strings.Join(Formats, ", "))
}

// FormatLabel is the prompt label of a format key.
func FormatLabel(f string) string {
	for i, k := range Formats {
		if k == f {
			return FormatChoices[i]
		}
	}
	return f
}

// ParseDivide accepts a prompt label or a non-negative chapter count.
func ParseDivide(s string) (int, error) {
	for i, c := range DivideChoices {
		if s == c {
			return Divides[i], nil
		}
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid chapter divide %q", s)
	}
	return n, nil
}

// DivideLabel is the prompt label for d, or d itself when no label matches.
func DivideLabel(d int) string {
	for i, v := range Divides {
		if v == d {
			return DivideChoices[i]
		}
	}
	return strconv.Itoa(d)
}

func WantsPDF(format string) bool {
	return format == FormatPDF || format == FormatBoth
}

func WantsEPUB(format string) bool {
	return format == FormatEPUB || format == FormatBoth
}

type Options struct {
	// Dir receives the documents, usually the parent of the page directory.
	Dir string
	// Name is the sanitized title used in file names.
	Name     string
	Format   string
	PageSize string
	// Batching is config.BatchingAligned or config.BatchingLegacy.
	Batching string
}

type Exporter struct {
	opts  Options
	log   *ui.Logger
	stats *ui.Stats
}

func New(log *ui.Logger, stats *ui.Stats, opts Options) *Exporter {
	if log == nil {
		log = ui.NewNopLogger()
	}
	if stats == nil {
		stats = &ui.Stats{}
	}
	if opts.Batching == "" {
		opts.Batching = config.BatchingAligned
	}
	return &Exporter{opts: opts, log: log, stats: stats}
}

// Export writes every document the format asks for and returns their paths.
func (x *Exporter) Export(pub *manga.Publication) ([]string, error) {
	var out []string

	if WantsPDF(x.opts.Format) {
		x.log.Infof("Exporting to PDF...")
		paths, err := x.documents(pub)
		out = append(out, paths...)
		if err != nil {
			return out, err
		}
	}

	if WantsEPUB(x.opts.Format) {
		x.log.Infof("Exporting to EPUB...")
		paths, err := x.volumes(pub)
		out = append(out, paths...)
		if err != nil {
			return out, err
		}
	}

	return out, nil
}

func (x *Exporter) documents(pub *manga.Publication) ([]string, error) {
	var out []string

	batches := Plan(len(pub.Chapters), pub.Divide, DocumentBoundaryFor(x.opts.Batching))
	for i, b := range batches {
		var images []string
		if i == 0 && pub.CoverPath != "" {
			images = append(images, pub.CoverPath)
		}
		images = append(images, pub.PagePaths(b.Start, b.End)...)

		path := filepath.Join(x.opts.Dir, manga.DocumentName(x.opts.Name, b.Start, b.End))
		if len(images) == 0 {
			x.log.Warnf("Chapters %d-%d have no pages, skipping %s", b.Start+1, b.End+1, path)
			continue
		}

		if err := WritePDF(path, images, x.opts.PageSize); err != nil {
			return out, err
		}
		x.log.Infof("Saved %s", path)
		x.stats.Documents.Add(1)
		out = append(out, path)
	}

	return out, nil
}

func (x *Exporter) volumes(pub *manga.Publication) ([]string, error) {
	var out []string

	batches := Plan(len(pub.Chapters), pub.Divide, EbookBoundary)
	for i, b := range batches {
		n := i + 1
		path := filepath.Join(x.opts.Dir, manga.VolumeName(x.opts.Name, n, b.Start, b.End))

		err := WriteEPUB(path, Volume{
			Title:    manga.VolumeTitle(pub.Title, n),
			Series:   pub.Title,
			Info:     pub.Info,
			Cover:    pub.CoverPath,
			Chapters: pub.Chapters[b.Start : b.End+1],
		})
		if err != nil {
			return out, err
		}
		x.log.Infof("Saved %s", path)
		x.stats.Documents.Add(1)
		out = append(out, path)
	}

	return out, nil
}
