package manga

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/gosimple/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		transliterate bool
		want          string
	}{
		{"plain", "Attack on Titan", false, "Attack on Titan"},
		{"illegal chars", `Who? Me: "Hero" / Villain*`, false, "Who Me Hero Villain"},
		{"trailing dots", "Yotsuba&!...", false, "Yotsuba&!"},
		{"reserved", "CON", false, "mangaCON"},
		{"empty", "???", false, "manga"},
		{"transliterated", "Война и мир", true, "Voina i mir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.in, tt.transliterate))
		})
	}
}

func TestPageFileNamesSortInReadingOrder(t *testing.T) {
	var want []string
	for ch := 0; ch < 12; ch++ {
		for p := 1; p <= 25; p++ {
			want = append(want, PageFileName(ch, p))
		}
	}

	got := append([]string(nil), want...)
	sort.Sort(sort.Reverse(sort.StringSlice(got)))
	sort.Strings(got)

	assert.Equal(t, want, got)
	assert.Equal(t, "003_p017.jpg", PageFileName(3, 17))
}

func TestOutputNames(t *testing.T) {
	assert.Equal(t, "Title - 001-010.pdf", DocumentName("Title", 0, 9))
	assert.Equal(t, "Title - Volume 2.", VolumeTitle("Title", 2))
	assert.Equal(t, "Title - Volume 2.011-020.epub", VolumeName("Title", 2, 10, 19))
	assert.Equal(t, "Title - Volume 3.021.epub", VolumeName("Title", 3, 20, 20))
	assert.Equal(t, "T - Ch 1 - Page 4", PageTitle("T", "Ch 1", 4))
}

func TestInfo(t *testing.T) {
	var info Info
	for i, k := range InfoKeys {
		info.Set(k, string(rune('a'+i)))
	}
	info.Set("unknown", "x")

	assert.Equal(t, Info{
		Publisher:      "a",
		FirstPublished: "b",
		Author:         "c",
		Artist:         "d",
		Copyright:      "e",
		Translator:     "f",
		Editor:         "g",
		Letterer:       "h",
	}, info)

	assert.Equal(t, "c", info.Creator())
	assert.Equal(t, "d", Info{Artist: "d"}.Creator())
	assert.Equal(t, "Unknown", Info{}.Creator())
}

func TestPagePaths(t *testing.T) {
	p := &Publication{Chapters: []Chapter{
		{Pages: []Page{{Path: "a"}, {Path: "b"}}},
		{Pages: []Page{{Path: "c"}}},
		{Pages: []Page{{Path: "d"}}},
	}}

	assert.Equal(t, 4, p.PageCount())
	assert.Equal(t, []string{"c", "d"}, p.PagePaths(1, 2))
	assert.Equal(t, []string{"a", "b", "c", "d"}, p.PagePaths(0, 10))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		PageFileName(1, 2), PageFileName(0, 10), PageFileName(0, 2),
		PageFileName(0, 1), PageFileName(1, 1), "notes.txt", CoverFile,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	require.NoError(t, SaveManifest(dir, &Publication{
		Title:  "Series",
		Info:   Info{Author: "Someone"},
		Divide: 5,
		Chapters: []Chapter{
			{Title: "Prologue", URL: "u0"},
			{Title: "Beginnings", URL: "u1"},
			{Title: "Empty", URL: "u2"},
		},
	}))

	pub, err := Scan(dir)
	require.NoError(t, err)

	assert.Equal(t, "Series", pub.Title)
	assert.Equal(t, "Someone", pub.Info.Author)
	assert.Equal(t, 5, pub.Divide)
	assert.Equal(t, filepath.Join(dir, CoverFile), pub.CoverPath)

	require.Len(t, pub.Chapters, 3)
	assert.Equal(t, "Prologue", pub.Chapters[0].Title)
	assert.Equal(t, []string{
		filepath.Join(dir, "000_p001.jpg"),
		filepath.Join(dir, "000_p002.jpg"),
		filepath.Join(dir, "000_p010.jpg"),
	}, pub.PagePaths(0, 0))
	assert.Len(t, pub.Chapters[1].Pages, 2)
	assert.Empty(t, pub.Chapters[2].Pages)
}

func TestScanWithoutManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Lone Title")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, PageFileName(1, 1)), []byte("x"), 0644))

	pub, err := Scan(dir)
	require.NoError(t, err)

	assert.Equal(t, "Lone Title", pub.Title)
	require.Len(t, pub.Chapters, 2)
	assert.Equal(t, "Chapter 1", pub.Chapters[0].Title)
	assert.Empty(t, pub.Chapters[0].Pages)
	assert.Empty(t, pub.CoverPath)
}

func TestScanEmptyDir(t *testing.T) {
	_, err := Scan(t.TempDir())
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestFilter(t *testing.T) {
	all := []Chapter{{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"}}

	titles := func(chs []Chapter) []string {
		var out []string
		for _, c := range chs {
			out = append(out, c.Title)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, titles(Filter(all, "", "")))
	assert.Equal(t, []string{"2", "3"}, titles(Filter(all, "2-3", "")))
	assert.Equal(t, []string{"1", "4"}, titles(Filter(all, "", "1, 4, 9, x")))
	assert.Empty(t, Filter(all, "3-2", ""))
	assert.Empty(t, Filter(all, "1-5", ""))
	assert.Empty(t, Filter(all, "1-2-3", ""))
}

func TestTransliterateRestoresSlugCase(t *testing.T) {
	prev := slug.Lowercase
	t.Cleanup(func() { slug.Lowercase = prev })

	slug.Lowercase = false
	assert.Equal(t, "Voina i mir", SanitizeTitle("Война и мир", true))
	assert.False(t, slug.Lowercase)

	slug.Lowercase = true
	assert.Equal(t, "Voina i mir", SanitizeTitle("Война и мир", true))
	assert.True(t, slug.Lowercase)
}
