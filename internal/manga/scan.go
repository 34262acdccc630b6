package manga

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/maruel/natural"
	"gopkg.in/yaml.v3"
)

var ErrNoPages = errors.New("no page files found")

var rePageFile = regexp.MustCompile(`^(\d{3,})_p(\d{3,})\.jpg$`)

// SaveManifest stores the series description next to its pages so that a later
// export can rebuild chapter titles and metadata.
func SaveManifest(dir string, p *Publication) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644)
}

func loadManifest(dir string) (*Publication, error) {
	b, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	p := &Publication{}
	if err := yaml.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}

	return p, nil
}

// Scan rebuilds a Publication from a title directory written by a previous run.
// Pages are grouped by their chapter prefix and ordered naturally. Chapters with no
// pages on disk are kept empty when the manifest lists them.
func Scan(dir string) (*Publication, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && rePageFile.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoPages)
	}
	sort.Sort(natural.StringSlice(names))

	pub, err := loadManifest(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		pub = &Publication{Title: filepath.Base(dir)}
	}

	for _, name := range names {
		m := rePageFile.FindStringSubmatch(name)
		ch, _ := strconv.Atoi(m[1])
		idx, _ := strconv.Atoi(m[2])

		for len(pub.Chapters) <= ch {
			pub.Chapters = append(pub.Chapters, Chapter{
				Title: fmt.Sprintf("Chapter %d", len(pub.Chapters)+1),
			})
		}

		pub.Chapters[ch].Pages = append(pub.Chapters[ch].Pages, Page{
			Chapter: ch,
			Index:   idx,
			Path:    filepath.Join(dir, name),
		})
	}

	cover := filepath.Join(dir, CoverFile)
	if _, err := os.Stat(cover); err == nil {
		pub.CoverPath = cover
	}

	return pub, nil
}
