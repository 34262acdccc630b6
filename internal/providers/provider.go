// Package providers is the boundary between the traversal engine and the browser
// that renders the remote reader.
package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/brogergvhs/crunchymanga/internal/retry"
)

var ErrUnsupportedBrowser = errors.New("unsupported browser")

// Key is a non-text key sent to an element.
type Key string

const (
	KeyHome Key = "Home"
)

// Driver is one exclusively owned browser session.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	// Locate returns the elements currently matching an XPath query. It does not wait:
	// an empty result is not an error.
	Locate(ctx context.Context, xpath string) ([]Element, error)
	// Close quits the browser session.
	Close() error
}

type Element interface {
	// Attribute returns the attribute value, or "" when it is absent.
	Attribute(ctx context.Context, name string) (string, error)
	// Style returns the computed value of a CSS property.
	Style(ctx context.Context, property string) (string, error)
	Text(ctx context.Context) (string, error)
	InnerHTML(ctx context.Context) (string, error)
	Click(ctx context.Context) error
	// Input types text into the element.
	Input(ctx context.Context, text string) error
	Press(ctx context.Context, key Key) error
}

// First locates xpath and returns the first match, or nil.
func First(ctx context.Context, d Driver, xpath string) (Element, error) {
	els, err := d.Locate(ctx, xpath)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}

// Exists reports whether xpath currently matches anything.
func Exists(ctx context.Context, d Driver, xpath string) (bool, error) {
	els, err := d.Locate(ctx, xpath)
	return len(els) > 0, err
}

// WaitFor polls until xpath matches and returns the first match.
func WaitFor(ctx context.Context, d Driver, xpath string, opts retry.Options) (Element, error) {
	els, err := WaitForAll(ctx, d, xpath, opts)
	if err != nil {
		return nil, err
	}
	return els[0], nil
}

// WaitForAll polls until xpath matches at least one element and returns all matches.
func WaitForAll(ctx context.Context, d Driver, xpath string, opts retry.Options) ([]Element, error) {
	var found []Element
	err := retry.Until(ctx, opts, func(ctx context.Context) (bool, error) {
		els, err := d.Locate(ctx, xpath)
		if err != nil {
			return false, err
		}
		found = els
		return len(els) > 0, nil
	})
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", xpath, err)
	}
	return found, nil
}
