package crunchyroll

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/brogergvhs/crunchymanga/internal/util"
)

// DownloadCover fetches the cover image and stores it at path as a JPEG.
// It returns the number of bytes written. progress, when set, receives the running
// count of bytes received.
func DownloadCover(ctx context.Context, c *http.Client, url, path string, progress func(done int64)) (int64, error) {
	data, ct, err := util.Fetch(ctx, c, url, progress)
	if err != nil {
		return 0, fmt.Errorf("cover: %w", err)
	}

	if !strings.Contains(ct, "jpeg") && !strings.Contains(ct, "jpg") {
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return 0, fmt.Errorf("cover %s: %w", url, err)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(92)); err != nil {
			return 0, fmt.Errorf("cover %s: %w", url, err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, err
	}

	return int64(len(data)), nil
}
