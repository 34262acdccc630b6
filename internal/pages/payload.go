package pages

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// ErrNoImage means the slot has no image yet: its background is still "none".
var ErrNoImage = errors.New("no image payload")

// Payload is an embedded image read from a slot's background.
type Payload struct {
	MIME string
	Data []byte
}

// DecodePayload parses the computed background-image of a slot. Both the CSS form
// url("data:image/jpeg;base64,...") and a bare data URL are accepted.
func DecodePayload(css string) (Payload, error) {
	s := strings.TrimSpace(css)
	if s == "" || strings.EqualFold(s, "none") {
		return Payload{}, ErrNoImage
	}

	if strings.HasPrefix(strings.ToLower(s), "url(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[4 : len(s)-1])
		s = strings.Trim(s, `"'`)
	}

	if !strings.HasPrefix(s, "data:") {
		return Payload{}, fmt.Errorf("not a data URL: %.40q", s)
	}

	u, err := dataurl.DecodeString(s)
	if err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	if u.Encoding != dataurl.EncodingBase64 {
		return Payload{}, fmt.Errorf("data URL is not base64 encoded")
	}
	if u.Type != "image" {
		return Payload{}, fmt.Errorf("unexpected MIME %q", u.ContentType())
	}
	if len(u.Data) == 0 {
		return Payload{}, ErrNoImage
	}

	return Payload{MIME: u.ContentType(), Data: u.Data}, nil
}
