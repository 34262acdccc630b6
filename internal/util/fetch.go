package util

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetch downloads url into memory, reporting the running byte count to progress.
func Fetch(ctx context.Context, c *http.Client, url string, progress func(done int64)) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := DoWithRetry(c, req, 3, 500*time.Millisecond)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := copyWithProgress(&buf, resp.Body, progress); err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}

	return buf.Bytes(), resp.Header.Get("Content-Type"), nil
}

func copyWithProgress(dst io.Writer, src io.Reader, progress func(done int64)) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		nr, er := src.Read(buf)

		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])

			if nw > 0 {
				total += int64(nw)
				if progress != nil {
					progress(total)
				}
			}

			if ew != nil {
				return total, ew
			}

			if nr != nw {
				return total, io.ErrShortWrite
			}
		}

		if er != nil {
			if er == io.EOF {
				break
			}
			return total, er
		}
	}

	return total, nil
}
