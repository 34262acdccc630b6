package util

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
)

type HTTPClientOptions struct {
	Timeout     time.Duration
	UserAgent   string
	Cookie      string
	Transport   http.RoundTripper
	DebugLogger interface {
		Debugf(string, ...any)
	}
}

func NewHTTPClient(opts HTTPClientOptions) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	var baseTransport http.RoundTripper
	if opts.Transport != nil {
		baseTransport = opts.Transport
	} else {
		baseTransport = cloudflarebp.AddCloudFlareByPass(&http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			ForceAttemptHTTP2:   true,
		})
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: roundTripper{
			base:         baseTransport,
			ua:           opts.UserAgent,
			cookieHeader: strings.TrimSpace(opts.Cookie),
			log:          opts.DebugLogger,
		},
		Jar: jar,
	}

	if opts.DebugLogger != nil {
		opts.DebugLogger.Debugf("HTTP client initialized (timeout=%s, ua=%q)", opts.Timeout, opts.UserAgent)
	}

	return client, nil
}

type roundTripper struct {
	base         http.RoundTripper
	ua           string
	cookieHeader string
	log          interface{ Debugf(string, ...any) }
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.ua != "" {
		req.Header.Set("User-Agent", rt.ua)
	}

	if rt.cookieHeader != "" && req.Header.Get("Cookie") == "" {
		req.Header.Set("Cookie", rt.cookieHeader)
	}

	if rt.log != nil {
		rt.log.Debugf("HTTP %s %s", req.Method, req.URL.String())
	}

	return rt.base.RoundTrip(req)
}

// DoWithRetry executes request with simple retry policy.
func DoWithRetry(c *http.Client, req *http.Request, attempts int, backoff time.Duration) (*http.Response, error) {
	var resp *http.Response
	var err error

	for i := 1; i <= attempts; i++ {
		resp, err = c.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		if i < attempts {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff * time.Duration(i)):
			}
		}
	}

	if err == nil && resp != nil {
		return nil, fmt.Errorf("HTTP %d after %d attempts", resp.StatusCode, attempts)
	}

	return nil, err
}

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
}
