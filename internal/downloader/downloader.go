// Package downloader walks the chapters and page slots of the remote reader and
// stores every page as a JPEG file.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/brogergvhs/crunchymanga/internal/config"
	"github.com/brogergvhs/crunchymanga/internal/manga"
	"github.com/brogergvhs/crunchymanga/internal/pages"
	"github.com/brogergvhs/crunchymanga/internal/providers"
	"github.com/brogergvhs/crunchymanga/internal/providers/crunchyroll"
	"github.com/brogergvhs/crunchymanga/internal/retry"
	"github.com/brogergvhs/crunchymanga/internal/ui"
)

var (
	ErrPageLoadTimeout = errors.New("page load timed out")
	ErrSlotUnresolved  = errors.New("page image cannot be loaded")
)

// Selectors are the reader page queries the engine drives.
type Selectors struct {
	Reader      string
	ErrorBanner string
	ScrollBar   string
	Slots       string
	NextButton  string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Reader:      crunchyroll.XPathReader,
		ErrorBanner: crunchyroll.XPathErrorBanner,
		ScrollBar:   crunchyroll.XPathScrollBar,
		Slots:       crunchyroll.XPathSlots,
		NextButton:  crunchyroll.XPathNextButton,
	}
}

type Options struct {
	// Dir receives the page files.
	Dir string

	PageLoadTimeout  time.Duration
	PagePoll         time.Duration
	ScrollBarTimeout time.Duration
	SlotTimeout      time.Duration
	SlotPoll         time.Duration
	ElementTimeout   time.Duration
	ElementPoll      time.Duration
	// SettleDelay is slept before and after resetting the scroll bar.
	SettleDelay time.Duration

	// OnMissingPage is config.MissingPageSkip or config.MissingPageAbort.
	OnMissingPage string

	Selectors Selectors
}

func DefaultOptions(dir string) Options {
	return Options{
		Dir:              dir,
		PageLoadTimeout:  60 * time.Second,
		PagePoll:         5 * time.Second,
		ScrollBarTimeout: 20 * time.Second,
		SlotTimeout:      10 * time.Second,
		SlotPoll:         250 * time.Millisecond,
		ElementTimeout:   30 * time.Second,
		ElementPoll:      500 * time.Millisecond,
		SettleDelay:      3 * time.Second,
		OnMissingPage:    config.MissingPageSkip,
		Selectors:        DefaultSelectors(),
	}
}

// Engine is the chapter/page traversal. It owns the driver session for the run but
// does not close it.
type Engine struct {
	d        providers.Driver
	opts     Options
	log      *ui.Logger
	progress ui.Progress
	stats    *ui.Stats
}

func New(d providers.Driver, log *ui.Logger, progress ui.Progress, stats *ui.Stats, opts Options) *Engine {
	if log == nil {
		log = ui.NewNopLogger()
	}
	if progress == nil {
		progress = ui.NopProgress{}
	}
	if stats == nil {
		stats = &ui.Stats{}
	}
	return &Engine{d: d, opts: opts, log: log, progress: progress, stats: stats}
}

// WithDir returns an engine writing its page files to dir.
func (e *Engine) WithDir(dir string) *Engine {
	c := *e
	c.opts.Dir = dir
	return &c
}

// OpenChapter navigates to a chapter and waits for the reader, reloading while the
// transient error banner is shown. Running out of time is ErrPageLoadTimeout.
func (e *Engine) OpenChapter(ctx context.Context, url string) error {
	sel := e.opts.Selectors
	navigate := func(ctx context.Context) error { return e.d.Navigate(ctx, url) }

	err := retry.Healing{
		Action: navigate,
		Success: func(ctx context.Context) (bool, error) {
			return providers.Exists(ctx, e.d, sel.Reader)
		},
		Recoverable: func(ctx context.Context) (bool, error) {
			return providers.Exists(ctx, e.d, sel.ErrorBanner)
		},
		Recover: func(ctx context.Context) error {
			e.log.Warnf("Reader unavailable, reloading %s", url)
			return navigate(ctx)
		},
	}.Run(ctx, retry.Options{Timeout: e.opts.PageLoadTimeout, Interval: e.opts.PagePoll})

	if errors.Is(err, retry.ErrTimeout) {
		return fmt.Errorf("%s: %w", url, ErrPageLoadTimeout)
	}
	return err
}

// Run downloads every chapter of pub in order. The first chapter must already be open
// (see OpenChapter); later chapters are navigated to here.
func (e *Engine) Run(ctx context.Context, pub *manga.Publication) error {
	for i := range pub.Chapters {
		ch := &pub.Chapters[i]
		e.log.Infof("Now downloading %s...", ch.Title)

		if i > 0 {
			if err := e.OpenChapter(ctx, ch.URL); err != nil {
				return fmt.Errorf("chapter %q: %w", ch.Title, err)
			}
		}

		if err := e.chapter(ctx, i, ch); err != nil {
			return fmt.Errorf("chapter %q: %w", ch.Title, err)
		}

		e.stats.TotalChapters.Add(1)
	}

	return nil
}

func (e *Engine) chapter(ctx context.Context, index int, ch *manga.Chapter) error {
	if err := e.resetPosition(ctx); err != nil {
		return err
	}

	slots, err := providers.WaitForAll(ctx, e.d, e.opts.Selectors.Slots, retry.Options{
		Timeout:  e.opts.PageLoadTimeout,
		Interval: e.opts.ElementPoll,
	})
	if err != nil {
		return fmt.Errorf("page slots: %w", err)
	}
	e.log.Infof("Found %d pages.", len(slots))

	tracker := e.progress.Register(fmt.Sprintf("%03d %s", index+1, ch.Title))
	tracker.SetTotal(len(slots))
	defer tracker.MarkDone()

	var written int64
	page := 1
	for page <= len(slots) {
		e.log.Debugf("Retrieving %s, page %d...", ch.Title, page)

		produced, n, err := e.slot(ctx, slots[page-1], index, page, ch)
		switch {
		case errors.Is(err, ErrSlotUnresolved) && e.opts.OnMissingPage != config.MissingPageAbort:
			e.log.Errorf("Image in chapter %d page %d cannot be loaded, skipping: %v", index+1, page, err)
			e.stats.SkippedSlots.Add(1)
			produced = 1
		case err != nil:
			return err
		}

		written += n
		page += produced

		if page == 1 || page%2 != 0 {
			if err := e.turnPage(ctx); err != nil {
				return err
			}
		}

		tracker.Update(page-1, written)
	}

	e.log.Debugf("All pages of %s finished", ch.Title)
	return nil
}

// slot resolves one slot into one or two page files and returns how many pages it produced.
func (e *Engine) slot(ctx context.Context, slot providers.Element, index, page int, ch *manga.Chapter) (int, int64, error) {
	var css string
	err := retry.Until(ctx, retry.Options{Timeout: e.opts.SlotTimeout, Interval: e.opts.SlotPoll}, func(ctx context.Context) (bool, error) {
		v, err := slot.Style(ctx, "background-image")
		if err != nil {
			return false, err
		}
		css = strings.TrimSpace(v)
		return css != "" && css != "none", nil
	})
	if errors.Is(err, retry.ErrTimeout) {
		return 0, 0, fmt.Errorf("page %d: %w", page, ErrSlotUnresolved)
	}
	if err != nil {
		return 0, 0, err
	}

	payload, err := pages.DecodePayload(css)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d: %w: %v", page, ErrSlotUnresolved, err)
	}
	parts, err := pages.Reconstruct(payload)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d: %w: %v", page, ErrSlotUnresolved, err)
	}
	if len(parts) == 2 {
		e.stats.Spreads.Add(1)
	}

	var written int64
	for k, part := range parts {
		path := filepath.Join(e.opts.Dir, manga.PageFileName(index, page+k))
		n, err := part.Save(path)
		if err != nil {
			return k, written, fmt.Errorf("save %s: %w", path, err)
		}

		written += n
		ch.Pages = append(ch.Pages, manga.Page{Chapter: index, Index: page + k, Path: path})
		e.stats.TotalPages.Add(1)
		e.stats.TotalBytes.Add(n)
	}

	return len(parts), written, nil
}

// resetPosition pulls the reader's scroll bar back to the first page.
func (e *Engine) resetPosition(ctx context.Context) error {
	bar, err := providers.WaitFor(ctx, e.d, e.opts.Selectors.ScrollBar, retry.Options{
		Timeout:  e.opts.ScrollBarTimeout,
		Interval: e.opts.ElementPoll,
	})
	if err != nil {
		return fmt.Errorf("scroll bar: %w", err)
	}

	if err := bar.Click(ctx); err != nil {
		return fmt.Errorf("scroll bar: %w", err)
	}
	if err := sleep(ctx, e.opts.SettleDelay); err != nil {
		return err
	}
	if err := bar.Press(ctx, providers.KeyHome); err != nil {
		return fmt.Errorf("scroll bar: %w", err)
	}

	return sleep(ctx, e.opts.SettleDelay)
}

func (e *Engine) turnPage(ctx context.Context) error {
	btn, err := providers.WaitFor(ctx, e.d, e.opts.Selectors.NextButton, retry.Options{
		Timeout:  e.opts.ElementTimeout,
		Interval: e.opts.ElementPoll,
	})
	if err != nil {
		return fmt.Errorf("next page: %w", err)
	}
	return btn.Click(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
