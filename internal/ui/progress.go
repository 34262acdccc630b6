package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress receives per-chapter progress from the traversal engine.
type Progress interface {
	Register(prefix string) Tracker
	Close()
}

// Tracker follows one chapter: total is the rendered slot count, done the slot cursor.
type Tracker interface {
	SetTotal(total int)
	Update(done int, bytes int64)
	MarkDone()
}

type MPBProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager(out io.Writer) *MPBProgressManager {
	if out == nil {
		out = os.Stdout
	}
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(out),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &MPBProgressManager{p: p}
}

func (pm *MPBProgressManager) Close() {
	pm.p.Wait()
}

func (pm *MPBProgressManager) Register(prefix string) Tracker {
	h := &ProgressHandle{
		pm:     pm,
		prefix: prefix,
	}
	h.initBar()
	return h
}

type ProgressHandle struct {
	pm     *MPBProgressManager
	prefix string
	bar    *mpb.Bar

	total int64
	bytes int64

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
}

func (h *ProgressHandle) initBar() {
	h.start = time.Now()

	h.bar = h.pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d slots", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + Human(atomic.LoadInt64(&h.bytes))
			}),

			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					return fmt.Sprintf(" | %ds", h.elapsed.Load())
				}
				return fmt.Sprintf(" | %ds", int(time.Since(h.start).Seconds()))
			}),
		),
	)
}

func (h *ProgressHandle) SetTotal(total int) {
	if h.final.Load() {
		return
	}

	atomic.StoreInt64(&h.total, int64(total))
	h.bar.SetTotal(int64(total), false)
}

func (h *ProgressHandle) Update(done int, bytes int64) {
	if h.final.Load() {
		return
	}

	total := atomic.LoadInt64(&h.total)
	if int64(done) > total {
		done = int(total)
	}

	atomic.StoreInt64(&h.bytes, bytes)
	h.bar.SetCurrent(int64(done))
}

func (h *ProgressHandle) MarkDone() {
	if h.final.Swap(true) {
		return
	}

	h.elapsed.Store(int64(time.Since(h.start).Seconds()))
	h.bar.SetCurrent(h.total)
	h.bar.SetTotal(h.total, true)
}

// NopProgress satisfies Progress without drawing anything.
type NopProgress struct{}

func (NopProgress) Register(string) Tracker { return nopTracker{} }
func (NopProgress) Close()                  {}

type nopTracker struct{}

func (nopTracker) SetTotal(int)      {}
func (nopTracker) Update(int, int64) {}
func (nopTracker) MarkDone()         {}
