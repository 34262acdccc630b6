package manga

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
)

const (
	CoverFile    = "cover.jpg"
	ManifestFile = "manga.yaml"
)

var (
	reIllegal  = regexp.MustCompile(`[/\\?<>:*|"]`)
	reReserved = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	reSpaces   = regexp.MustCompile(`\s+`)
)

// SanitizeTitle turns a series title into a name usable as a file or folder name on
// every common filesystem. With transliterate set the result is also reduced to ASCII.
func SanitizeTitle(title string, transliterate bool) string {
	s := title
	if transliterate {
		s = transliterateWords(s)
	}

	s = reIllegal.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = reSpaces.ReplaceAllString(s, " ")
	s = strings.TrimRight(strings.TrimSpace(s), ". ")

	if s == "" || reReserved.MatchString(s) {
		s = "manga" + s
	}
	if len(s) > 200 {
		s = strings.TrimSpace(truncate(s, 200))
	}

	return s
}

// transliterateWords reduces each word to ASCII and keeps the spacing between words.
func transliterateWords(s string) string {
	words := strings.Fields(s)

	prev := slug.Lowercase
	slug.Lowercase = false
	defer func() { slug.Lowercase = prev }()

	for i, w := range words {
		if t := slug.Make(w); t != "" {
			words[i] = t
		}
	}

	return strings.Join(words, " ")
}

func truncate(s string, max int) string {
	n := 0
	for i := range s {
		if i > max {
			return s[:n]
		}
		n = i
	}
	return s
}

// PageFileName names a page so that a lexical sort gives reading order.
// chapter is 0-based, page is 1-based.
func PageFileName(chapter, page int) string {
	return fmt.Sprintf("%03d_p%03d.jpg", chapter, page)
}

// Dir is the working directory of a title: <output>/<sanitized title>.
func Dir(output, sanitized string) string {
	return filepath.Join(output, sanitized)
}

// DocumentName is the paginated document of chapters [start, end] (0-based, printed 1-based).
func DocumentName(sanitized string, start, end int) string {
	return fmt.Sprintf("%s - %03d-%03d.pdf", sanitized, start+1, end+1)
}

// VolumeTitle is the e-book title of volume n (1-based).
func VolumeTitle(title string, n int) string {
	return fmt.Sprintf("%s - Volume %d.", title, n)
}

// VolumeName is the e-book file of volume n covering chapters [start, end].
func VolumeName(sanitized string, n, start, end int) string {
	if start == end {
		return fmt.Sprintf("%s - Volume %d.%03d.epub", sanitized, n, start+1)
	}
	return fmt.Sprintf("%s - Volume %d.%03d-%03d.epub", sanitized, n, start+1, end+1)
}

// PageTitle is the caption of page k (1-based) of a chapter inside an e-book.
func PageTitle(title, chapter string, k int) string {
	return fmt.Sprintf("%s - %s - Page %d", title, chapter, k)
}
