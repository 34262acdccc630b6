// Package chromium drives a Chromium family browser over the DevTools protocol.
package chromium

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/brogergvhs/crunchymanga/internal/providers"
)

// Browsers the user may pick. Firefox is listed so it can be refused with a clear message.
var Browsers = []string{"Chrome", "Firefox", "Edge", "Opera"}

var candidates = map[string][]string{
	"edge": {
		"microsoft-edge", "microsoft-edge-stable", "msedge",
		`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
		`C:\Program Files\Microsoft\Edge\Application\msedge.exe`,
		"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
	},
	"opera": {
		"opera",
		`C:\Program Files\Opera\opera.exe`,
		"/Applications/Opera.app/Contents/MacOS/Opera",
	},
}

type Options struct {
	Browser   string
	Bin       string
	Headless  bool
	UserAgent string
	Log       *zap.Logger
}

type Driver struct {
	l       *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
	log     *zap.Logger
}

// ResolveBin finds the executable for a browser name. An explicit bin always wins.
func ResolveBin(name, bin string) (string, error) {
	if bin != "" {
		return bin, nil
	}

	switch strings.ToLower(name) {
	case "", "chrome", "chromium":
		if p, ok := launcher.LookPath(); ok {
			return p, nil
		}
		// rod downloads a Chromium build when none is installed
		return "", nil
	case "edge", "opera":
		for _, c := range candidates[strings.ToLower(name)] {
			if p, err := exec.LookPath(c); err == nil {
				return p, nil
			}
		}
		return "", fmt.Errorf("%s executable not found on %s, set browser_bin", name, runtime.GOOS)
	case "firefox":
		return "", fmt.Errorf("%w: %s cannot be driven over the DevTools protocol, pick Chrome, Edge or Opera", providers.ErrUnsupportedBrowser, name)
	default:
		return "", fmt.Errorf("%w: %s", providers.ErrUnsupportedBrowser, name)
	}
}

// Launch starts the browser and opens the single tab the run works in.
func Launch(ctx context.Context, opts Options) (*Driver, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	bin, err := ResolveBin(opts.Browser, opts.Bin)
	if err != nil {
		return nil, err
	}

	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Set("lang", "en-US").
		Set("disable-blink-features", "AutomationControlled")
	if bin != "" {
		l = l.Bin(bin)
	}
	if !opts.Headless {
		l = l.Set("start-maximized")
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch %s: %w", opts.Browser, err)
	}
	log.Debug("browser launched", zap.String("bin", bin), zap.String("control", u))

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect %s: %w", opts.Browser, err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			log.Warn("user agent override failed", zap.Error(err))
		}
	}

	return &Driver{l: l, browser: browser, page: page, log: log}, nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.log.Debug("navigate", zap.String("url", url))
	if err := d.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (d *Driver) Locate(ctx context.Context, xpath string) ([]providers.Element, error) {
	els, err := d.page.Context(ctx).ElementsX(xpath)
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", xpath, err)
	}

	out := make([]providers.Element, len(els))
	for i, el := range els {
		out[i] = element{el: el}
	}
	return out, nil
}

// CookieHeader renders the session cookies visible to url as a Cookie header value,
// so plain HTTP requests can reuse the logged in session.
func (d *Driver) CookieHeader(ctx context.Context, url string) (string, error) {
	cookies, err := d.page.Context(ctx).Cookies([]string{url})
	if err != nil {
		return "", fmt.Errorf("cookies: %w", err)
	}
	return cookieHeader(cookies), nil
}

func cookieHeader(cookies []*proto.NetworkCookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// Close quits the browser and removes its temporary profile.
func (d *Driver) Close() error {
	err := d.browser.Close()
	d.l.Cleanup()
	return err
}

type element struct {
	el *rod.Element
}

func (e element) Attribute(ctx context.Context, name string) (string, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func (e element) Style(ctx context.Context, property string) (string, error) {
	res, err := e.el.Context(ctx).Eval(`function (p) { return getComputedStyle(this).getPropertyValue(p) }`, property)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e element) InnerHTML(ctx context.Context) (string, error) {
	v, err := e.el.Context(ctx).Property("innerHTML")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (e element) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e element) Input(ctx context.Context, text string) error {
	return e.el.Context(ctx).Input(text)
}

func (e element) Press(ctx context.Context, key providers.Key) error {
	k, ok := keys[key]
	if !ok {
		return fmt.Errorf("unsupported key %q", key)
	}
	return e.el.Context(ctx).Type(k)
}

var keys = map[providers.Key]input.Key{
	providers.KeyHome: input.Home,
}
