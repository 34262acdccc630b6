package pages

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 92

// Page is one logical page cut from a slot image.
type Page struct {
	Image image.Image
	// Rect is the crop of the source image this page covers.
	Rect image.Rectangle

	raw []byte
}

// SplitPoint is where a spread of width w is cut: round(w/2).
func SplitPoint(w int) int {
	return (w + 1) / 2
}

// Geometry returns the crops for a w x h image: the whole image when w <= h, otherwise
// the right half followed by the left half.
func Geometry(w, h int) []image.Rectangle {
	if w <= h {
		return []image.Rectangle{image.Rect(0, 0, w, h)}
	}

	split := SplitPoint(w)
	return []image.Rectangle{
		image.Rect(split, 0, w, h),
		image.Rect(0, 0, split, h),
	}
}

// Reconstruct decodes a payload and returns one page, or two for a spread.
func Reconstruct(p Payload) ([]Page, error) {
	img, err := imaging.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.MIME, err)
	}

	return Split(img, p), nil
}

// Split applies Geometry to an already decoded image. A single JPEG page keeps the
// payload bytes so it can be stored unchanged.
func Split(img image.Image, p Payload) []Page {
	b := img.Bounds()
	rects := Geometry(b.Dx(), b.Dy())

	if len(rects) == 1 {
		pg := Page{Image: img, Rect: rects[0]}
		if p.MIME == "image/jpeg" || p.MIME == "image/jpg" {
			pg.raw = p.Data
		}
		return []Page{pg}
	}

	out := make([]Page, 0, len(rects))
	for _, r := range rects {
		out = append(out, Page{
			Image: imaging.Crop(img, r.Add(b.Min)),
			Rect:  r,
		})
	}
	return out
}

// Save writes the page as a JPEG file and returns the number of bytes written.
func (pg Page) Save(path string) (int64, error) {
	if pg.raw != nil {
		if err := os.WriteFile(path, pg.raw, 0644); err != nil {
			return 0, err
		}
		return int64(len(pg.raw)), nil
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, pg.Image, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return 0, fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return 0, err
	}

	return int64(buf.Len()), nil
}
