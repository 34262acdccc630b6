package export

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PageSizes are the paginated document sizes offered to the user.
var PageSizes = []string{"A3", "A4", "A5", "LETTER", "LEGAL", "TABLOID"}

// ValidPageSize reports whether size is one of PageSizes, ignoring case.
func ValidPageSize(size string) bool {
	for _, s := range PageSizes {
		if strings.EqualFold(s, size) {
			return true
		}
	}
	return false
}

// WritePDF composes one page per image, each scaled to fit and centered on a page of
// the given size.
func WritePDF(path string, images []string, size string) error {
	if len(images) == 0 {
		return fmt.Errorf("pdf %s: no pages", path)
	}
	if !ValidPageSize(size) {
		return fmt.Errorf("pdf %s: unknown page size %q", path, size)
	}

	pdf := gofpdf.New("P", "pt", strings.ToUpper(size), "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for _, img := range images {
		w, h, err := imageSize(img)
		if err != nil {
			return fmt.Errorf("pdf %s: %w", path, err)
		}

		pdf.AddPage()
		pw, ph := pdf.GetPageSize()
		x, y, dw, dh := fit(float64(w), float64(h), pw, ph)

		pdf.ImageOptions(img, x, y, dw, dh, false, gofpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("pdf %s: %s: %w", path, img, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// fit scales w x h into the page box keeping the aspect ratio and centers it.
func fit(w, h, pw, ph float64) (x, y, dw, dh float64) {
	scale := pw / w
	if s := ph / h; s < scale {
		scale = s
	}

	dw, dh = w*scale, h*scale
	return (pw - dw) / 2, (ph - dh) / 2, dw, dh
}
