package crunchyroll

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/crunchymanga/internal/manga"
	"github.com/brogergvhs/crunchymanga/internal/providers"
	"github.com/brogergvhs/crunchymanga/internal/providers/providertest"
	"github.com/brogergvhs/crunchymanga/internal/retry"
	"github.com/brogergvhs/crunchymanga/internal/util"
)

func testOptions() Options {
	return Options{
		PageLoadTimeout: time.Second,
		SeriesPoll:      time.Millisecond,
		ElementTimeout:  200 * time.Millisecond,
		Poll:            time.Millisecond,
	}
}

func TestLogin(t *testing.T) {
	d := providertest.New()

	profile := &providertest.Element{}
	link := &providertest.Element{}
	cookie := &providertest.Element{}
	user := &providertest.Element{}
	pass := &providertest.Element{}
	button := &providertest.Element{}
	loggedIn := false
	button.OnClick = func() error {
		loggedIn = true
		return nil
	}

	d.Set(XPathProfileMenu, profile)
	d.Set(XPathLoginLink, link)
	d.Set(XPathCookieDecline, cookie)
	d.Set(XPathUsername, user)
	d.Set(XPathPassword, pass)
	d.Set(XPathLoginButton, button)
	d.Handle(XPathLogout, func() []providers.Element {
		if loggedIn {
			return []providers.Element{&providertest.Element{}}
		}
		return nil
	})

	site := New(d, nil, testOptions())
	require.NoError(t, site.Login(context.Background(), "reader", "secret"))

	assert.Equal(t, []string{HomeURL}, d.Navigations())
	assert.Equal(t, 1, profile.Clicks())
	assert.Equal(t, 1, link.Clicks())
	assert.Equal(t, 2, cookie.Clicks())
	assert.Equal(t, []string{"reader"}, user.Inputs())
	assert.Equal(t, []string{"secret"}, pass.Inputs())
	assert.Equal(t, 1, button.Clicks())
}

func TestLoginRejected(t *testing.T) {
	d := providertest.New()
	for _, xp := range []string{XPathProfileMenu, XPathLoginLink, XPathCookieDecline, XPathUsername, XPathPassword, XPathLoginButton} {
		d.Set(xp, &providertest.Element{})
	}

	err := New(d, nil, testOptions()).Login(context.Background(), "reader", "wrong")
	assert.ErrorIs(t, err, retry.ErrTimeout)
}

func TestOpenSeriesReloadsOnErrorBanner(t *testing.T) {
	d := providertest.New()
	d.Handle(XPathErrorBanner, func() []providers.Element {
		if len(d.Navigations()) < 3 {
			return []providers.Element{&providertest.Element{}}
		}
		return nil
	})
	d.Handle(XPathMoreInfo, func() []providers.Element {
		if len(d.Navigations()) >= 3 {
			return []providers.Element{&providertest.Element{}}
		}
		return nil
	})

	const url = "https://www.crunchyroll.com/comics/manga/x/volumes"
	require.NoError(t, New(d, nil, testOptions()).OpenSeries(context.Background(), url))
	assert.Equal(t, []string{url, url, url}, d.Navigations())
}

func TestOpenSeriesTimeout(t *testing.T) {
	d := providertest.New()
	opts := testOptions()
	opts.PageLoadTimeout = 20 * time.Millisecond

	err := New(d, nil, opts).OpenSeries(context.Background(), "u")
	assert.ErrorIs(t, err, retry.ErrTimeout)
}

func TestOwnText(t *testing.T) {
	tests := map[string]string{
		"Kodansha":                                     "Kodansha",
		"<span>Publisher:</span> Kodansha  Comics ":    "Kodansha Comics",
		"<b>Author</b>\n  Hajime <i>Isayama</i>":       "Hajime",
		"<span class=\"label\">Editor</span>":          "",
		"  &copy; Hajime Isayama <a href=\"#\">x</a> ": "© Hajime Isayama",
	}

	for in, want := range tests {
		got, err := OwnText(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestInfo(t *testing.T) {
	d := providertest.New()
	d.Set(XPathInfoLines,
		&providertest.Element{HTML: "<span>Publisher</span> Kodansha"},
		&providertest.Element{HTML: "<span>First Published</span> 2009"},
		&providertest.Element{HTML: ""},
		&providertest.Element{HTML: "<span>Artist</span> Hajime Isayama"},
	)

	info, err := New(d, nil, testOptions()).Info(context.Background())
	require.NoError(t, err)

	assert.Equal(t, manga.Info{
		Publisher:      "Kodansha",
		FirstPublished: "2009",
		Artist:         "Hajime Isayama",
	}, info)
	assert.Equal(t, "Hajime Isayama", info.Creator())
}

func arrow(clicksUntilDisabled int) *providertest.Element {
	el := &providertest.Element{Attrs: map[string]string{"class": "arrow"}}
	clicks := 0
	el.OnClick = func() error {
		clicks++
		if clicks >= clicksUntilDisabled {
			el.SetAttr("class", "arrow disabled")
		}
		return nil
	}
	return el
}

func TestChaptersExhaustsCarousel(t *testing.T) {
	d := providertest.New()

	left := arrow(2)
	right := arrow(3)
	d.Set(XPathCarouselArrow("left"), left)
	d.Set(XPathCarouselArrow("right"), right)
	d.Set(XPathChapters,
		&providertest.Element{Attrs: map[string]string{"title": " Chapter 1 ", "href": "/c1"}},
		&providertest.Element{Attrs: map[string]string{"title": "Chapter 2", "href": "/c2"}},
	)

	chapters, err := New(d, nil, testOptions()).Chapters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, left.Clicks())
	assert.Equal(t, 3, right.Clicks())
	assert.Equal(t, []manga.Chapter{
		{Title: "Chapter 1", URL: "/c1"},
		{Title: "Chapter 2", URL: "/c2"},
	}, chapters)
}

func TestChaptersNone(t *testing.T) {
	d := providertest.New()
	d.Set(XPathCarouselArrow("left"), &providertest.Element{Attrs: map[string]string{"class": "disabled"}})
	d.Set(XPathCarouselArrow("right"), &providertest.Element{Attrs: map[string]string{"class": "disabled"}})

	_, err := New(d, nil, testOptions()).Chapters(context.Background())
	assert.ErrorIs(t, err, ErrNoChapters)
}

func TestCoverURLAndReaderTitle(t *testing.T) {
	d := providertest.New()
	d.Set(XPathCover, &providertest.Element{Attrs: map[string]string{"src": "https://img/cover.png"}})
	d.Set(XPathReaderTitle, &providertest.Element{TextValue: "  Attack on Titan\n"})

	site := New(d, nil, testOptions())

	u, err := site.CoverURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://img/cover.png", u)

	title, err := site.ReaderTitle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Attack on Titan", title)
}

func TestDownloadCoverConvertsToJPEG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 12))
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	client, err := util.NewHTTPClient(util.HTTPClientOptions{Timeout: 5 * time.Second, Transport: http.DefaultTransport})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), manga.CoverFile)
	var received int64
	n, err := DownloadCover(context.Background(), client, srv.URL+"/cover.png", path, func(done int64) { received = done })
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Equal(t, int64(buf.Len()), received)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 12, cfg.Height)
}
