package export

import (
	_ "embed"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	epub "github.com/go-shiori/go-epub"

	"github.com/brogergvhs/crunchymanga/internal/manga"
)

//go:embed epub.css
var stylesheet []byte

// Volume is one e-book: a title, its metadata and the chapters it holds.
type Volume struct {
	Title    string
	Series   string
	Info     manga.Info
	Cover    string
	Chapters []manga.Chapter
}

// WriteEPUB packages a volume with one section per chapter and one image per page.
func WriteEPUB(path string, v Volume) error {
	e, err := epub.NewEpub(v.Title)
	if err != nil {
		return fmt.Errorf("epub %s: %w", path, err)
	}

	e.SetAuthor(v.Info.Creator())
	if d := description(v.Info); d != "" {
		e.SetDescription(d)
	}
	e.SetLang("en")

	cssFile, err := os.CreateTemp("", "crunchymanga-*.css")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(cssFile.Name())
	}()
	if _, err := cssFile.Write(stylesheet); err != nil {
		_ = cssFile.Close()
		return err
	}
	if err := cssFile.Close(); err != nil {
		return err
	}

	css, err := e.AddCSS(cssFile.Name(), "epub.css")
	if err != nil {
		return fmt.Errorf("epub %s: stylesheet: %w", path, err)
	}

	if v.Cover != "" {
		img, err := e.AddImage(v.Cover, manga.CoverFile)
		if err != nil {
			return fmt.Errorf("epub %s: cover: %w", path, err)
		}
		if err := e.SetCover(img, ""); err != nil {
			return fmt.Errorf("epub %s: cover: %w", path, err)
		}
	}

	for i, ch := range v.Chapters {
		body, err := chapterBody(e, v.Series, ch)
		if err != nil {
			return fmt.Errorf("epub %s: %w", path, err)
		}

		name := fmt.Sprintf("chapter%03d.xhtml", i+1)
		if _, err := e.AddSection(body, ch.Title, name, css); err != nil {
			return fmt.Errorf("epub %s: chapter %q: %w", path, ch.Title, err)
		}
	}

	return e.Write(path)
}

func chapterBody(e *epub.Epub, series string, ch manga.Chapter) (string, error) {
	var b strings.Builder
	for k, pg := range ch.Pages {
		src, err := e.AddImage(pg.Path, filepath.Base(pg.Path))
		if err != nil {
			return "", fmt.Errorf("page %s: %w", pg.Path, err)
		}

		title := html.EscapeString(manga.PageTitle(series, ch.Title, k+1))
		fmt.Fprintf(&b, `<img src="%s" title="%s" alt="%s"/>`+"\n", src, title, title)
	}
	return b.String(), nil
}

func description(info manga.Info) string {
	var parts []string
	for _, f := range []struct{ label, value string }{
		{"Publisher", info.Publisher},
		{"First published", info.FirstPublished},
		{"Artist", info.Artist},
		{"Translator", info.Translator},
		{"Editor", info.Editor},
		{"Letterer", info.Letterer},
		{"Copyright", info.Copyright},
	} {
		if f.value != "" {
			parts = append(parts, f.label+": "+f.value)
		}
	}
	return strings.Join(parts, ". ")
}
