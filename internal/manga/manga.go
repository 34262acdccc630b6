package manga

// Info is the series metadata shown on the source's "More Information" block.
type Info struct {
	Publisher      string `yaml:"publisher,omitempty"`
	FirstPublished string `yaml:"first_published,omitempty"`
	Author         string `yaml:"author,omitempty"`
	Artist         string `yaml:"artist,omitempty"`
	Copyright      string `yaml:"copyright,omitempty"`
	Translator     string `yaml:"translator,omitempty"`
	Editor         string `yaml:"editor,omitempty"`
	Letterer       string `yaml:"letterer,omitempty"`
}

// InfoKeys is the display order of the metadata lines on the series page.
var InfoKeys = []string{
	"publisher",
	"firstPublished",
	"author",
	"artist",
	"copyright",
	"translator",
	"editor",
	"letterer",
}

// Set assigns the field named by one of InfoKeys. Unknown keys are ignored.
func (i *Info) Set(key, value string) {
	switch key {
	case "publisher":
		i.Publisher = value
	case "firstPublished":
		i.FirstPublished = value
	case "author":
		i.Author = value
	case "artist":
		i.Artist = value
	case "copyright":
		i.Copyright = value
	case "translator":
		i.Translator = value
	case "editor":
		i.Editor = value
	case "letterer":
		i.Letterer = value
	}
}

// Creator is the e-book author: author, then artist, then "Unknown".
func (i Info) Creator() string {
	if i.Author != "" {
		return i.Author
	}
	if i.Artist != "" {
		return i.Artist
	}
	return "Unknown"
}

type Publication struct {
	Title    string `yaml:"title"`
	CoverURL string `yaml:"cover_url,omitempty"`
	Info     Info   `yaml:"info"`

	// Divide is the chapter batch size, 0 means a single batch.
	Divide int `yaml:"divide"`

	Chapters []Chapter `yaml:"chapters"`

	// CoverPath is the local cover file, empty when no cover was stored.
	CoverPath string `yaml:"-"`
}

type Chapter struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Pages []Page `yaml:"-"`
}

// Page is one stored page image. Index is 1-based within the chapter.
type Page struct {
	Chapter int
	Index   int
	Path    string
}

// PageCount sums the pages of all chapters.
func (p *Publication) PageCount() int {
	n := 0
	for _, ch := range p.Chapters {
		n += len(ch.Pages)
	}
	return n
}

// PagePaths lists the page files of chapters [start, end] in reading order.
func (p *Publication) PagePaths(start, end int) []string {
	var out []string
	for i := start; i <= end && i < len(p.Chapters); i++ {
		for _, pg := range p.Chapters[i].Pages {
			out = append(out, pg.Path)
		}
	}
	return out
}
