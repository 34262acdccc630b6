// Package crunchyroll knows the pages of the Crunchyroll manga site: login, series
// page metadata, the chapter carousel and the cover image.
package crunchyroll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/brogergvhs/crunchymanga/internal/manga"
	"github.com/brogergvhs/crunchymanga/internal/providers"
	"github.com/brogergvhs/crunchymanga/internal/retry"
)

var ErrNoChapters = errors.New("no chapters found")

const maxCarouselClicks = 500

type Options struct {
	// PageLoadTimeout bounds the wait for the series page, error banner retries included.
	PageLoadTimeout time.Duration
	// SeriesPoll is the polling interval of the series page wait.
	SeriesPoll time.Duration
	// ElementTimeout bounds every other element wait.
	ElementTimeout time.Duration
	Poll           time.Duration
}

func DefaultOptions() Options {
	return Options{
		PageLoadTimeout: 60 * time.Second,
		SeriesPoll:      2 * time.Second,
		ElementTimeout:  30 * time.Second,
		Poll:            500 * time.Millisecond,
	}
}

type Site struct {
	d    providers.Driver
	opts Options
	log  *zap.Logger
}

func New(d providers.Driver, log *zap.Logger, opts Options) *Site {
	if log == nil {
		log = zap.NewNop()
	}
	return &Site{d: d, opts: opts, log: log}
}

func (s *Site) wait() retry.Options {
	return retry.Options{Timeout: s.opts.ElementTimeout, Interval: s.opts.Poll}
}

func (s *Site) click(ctx context.Context, xpath string) error {
	el, err := providers.WaitFor(ctx, s.d, xpath, s.wait())
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

// Login signs in from the home page and declines non-essential cookies.
func (s *Site) Login(ctx context.Context, username, password string) error {
	if err := s.d.Navigate(ctx, HomeURL); err != nil {
		return err
	}

	for _, xp := range []string{XPathProfileMenu, XPathLoginLink, XPathCookieDecline} {
		if err := s.click(ctx, xp); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	user, err := providers.WaitFor(ctx, s.d, XPathUsername, s.wait())
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	pass, err := providers.WaitFor(ctx, s.d, XPathPassword, s.wait())
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := user.Input(ctx, username); err != nil {
		return fmt.Errorf("login: type username: %w", err)
	}
	if err := pass.Input(ctx, password); err != nil {
		return fmt.Errorf("login: type password: %w", err)
	}
	if err := s.click(ctx, XPathLoginButton); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if _, err := providers.WaitFor(ctx, s.d, XPathLogout, s.wait()); err != nil {
		return fmt.Errorf("login rejected or timed out: %w", err)
	}
	s.log.Debug("logged in", zap.String("user", username))

	// the consent banner comes back on the landing page
	if err := s.click(ctx, XPathCookieDecline); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	return nil
}

// OpenSeries loads the series page, reloading it while the error banner is shown.
func (s *Site) OpenSeries(ctx context.Context, url string) error {
	navigate := func(ctx context.Context) error { return s.d.Navigate(ctx, url) }

	err := retry.Healing{
		Action: navigate,
		Success: func(ctx context.Context) (bool, error) {
			return providers.Exists(ctx, s.d, XPathMoreInfo)
		},
		Recoverable: func(ctx context.Context) (bool, error) {
			return providers.Exists(ctx, s.d, XPathErrorBanner)
		},
		Recover: func(ctx context.Context) error {
			s.log.Warn("series page unavailable, reloading", zap.String("url", url))
			return navigate(ctx)
		},
	}.Run(ctx, retry.Options{Timeout: s.opts.PageLoadTimeout, Interval: s.opts.SeriesPoll})
	if err != nil {
		return fmt.Errorf("series page %s: %w", url, err)
	}

	return nil
}

// Info reads the "More Information" lines in the order of manga.InfoKeys.
func (s *Site) Info(ctx context.Context) (manga.Info, error) {
	var info manga.Info

	lines, err := s.d.Locate(ctx, XPathInfoLines)
	if err != nil {
		return info, err
	}

	for i, line := range lines {
		if i >= len(manga.InfoKeys) {
			break
		}
		raw, err := line.InnerHTML(ctx)
		if err != nil {
			return info, fmt.Errorf("info line %d: %w", i+1, err)
		}
		v, err := OwnText(raw)
		if err != nil {
			return info, fmt.Errorf("info line %d: %w", i+1, err)
		}
		info.Set(manga.InfoKeys[i], v)
	}

	return info, nil
}

// OwnText returns the text nodes directly inside an HTML fragment, ignoring markup
// and the text of nested elements.
func OwnText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<ul><li>" + fragment + "</li></ul>"))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	doc.Find("li").First().Contents().Each(func(_ int, sel *goquery.Selection) {
		if n := sel.Get(0); n != nil && n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
	})

	return strings.Join(strings.Fields(b.String()), " "), nil
}

// Chapters pages the carousel to both ends so every thumbnail is loaded, then lists
// the chapters in display order.
func (s *Site) Chapters(ctx context.Context) ([]manga.Chapter, error) {
	for _, side := range []string{"left", "right"} {
		if err := s.exhaustArrow(ctx, side); err != nil {
			return nil, err
		}
	}

	links, err := providers.WaitForAll(ctx, s.d, XPathChapters, s.wait())
	if err != nil {
		if errors.Is(err, retry.ErrTimeout) {
			return nil, ErrNoChapters
		}
		return nil, err
	}

	out := make([]manga.Chapter, 0, len(links))
	for _, a := range links {
		title, err := a.Attribute(ctx, "title")
		if err != nil {
			return nil, err
		}
		href, err := a.Attribute(ctx, "href")
		if err != nil {
			return nil, err
		}
		out = append(out, manga.Chapter{Title: strings.TrimSpace(title), URL: href})
	}

	return out, nil
}

func (s *Site) exhaustArrow(ctx context.Context, side string) error {
	xp := XPathCarouselArrow(side)

	for range maxCarouselClicks {
		arrow, err := providers.WaitFor(ctx, s.d, xp, s.wait())
		if err != nil {
			return fmt.Errorf("carousel: %w", err)
		}

		class, err := arrow.Attribute(ctx, "class")
		if err != nil {
			return err
		}
		if strings.Contains(class, "disabled") {
			return nil
		}

		if err := arrow.Click(ctx); err != nil {
			return fmt.Errorf("carousel %s arrow: %w", side, err)
		}

		err = retry.Until(ctx, s.wait(), func(ctx context.Context) (bool, error) {
			class, err := arrow.Attribute(ctx, "class")
			return !strings.Contains(class, "loading"), err
		})
		if err != nil {
			return fmt.Errorf("carousel %s arrow: %w", side, err)
		}
	}

	return fmt.Errorf("carousel %s arrow never disabled after %d clicks", side, maxCarouselClicks)
}

func (s *Site) CoverURL(ctx context.Context) (string, error) {
	img, err := providers.WaitFor(ctx, s.d, XPathCover, s.wait())
	if err != nil {
		return "", err
	}
	return img.Attribute(ctx, "src")
}

// ReaderTitle reads the series title from an open chapter reader.
func (s *Site) ReaderTitle(ctx context.Context) (string, error) {
	a, err := providers.WaitFor(ctx, s.d, XPathReaderTitle, s.wait())
	if err != nil {
		return "", err
	}

	t, err := a.Text(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(t), nil
}
