// google_fonts.go downloads font files from the Google Fonts CSS API.
//
// Font specs use the format "google:FAMILY:WEIGHT" (e.g. "google:Inter:800").
// Downloaded fonts are cached locally so they aren't re-fetched on every run.

package fontsrc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"nathanmyers.co/siteassets/internal/atomicfile"
	"nathanmyers.co/siteassets/internal/woff2"
)

// DefaultCSSBase is the Google Fonts CSS2 endpoint.
const DefaultCSSBase = "https://fonts.googleapis.com/css2"

// fontURLRe extracts the first font file URL from the CSS response.
// Matches: url(https://fonts.gstatic.com/s/inter/v18/xxx.woff2)
var fontURLRe = regexp.MustCompile(`url\((https?://[^)\s]+)\)`)

// ParseGoogleFontSpec parses a "google:Family:Weight" spec into its parts.
// Returns family, weight, and whether the spec is valid.
func ParseGoogleFontSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// Fetcher downloads fonts through a retrying HTTP client.
type Fetcher struct {
	// Client performs the requests.
	Client *retryablehttp.Client
	// CSSBase is the CSS API endpoint; tests point it at a local server.
	CSSBase string
	// UserAgent selects the format Google serves; modern agents get WOFF2.
	UserAgent string
}

var (
	defaultFetcher     *Fetcher
	defaultFetcherOnce sync.Once
)

// DefaultFetcher returns the shared fetcher, initializing it on first call.
func DefaultFetcher() *Fetcher {
	defaultFetcherOnce.Do(func() {
		defaultFetcher = NewFetcher(DefaultCSSBase)
	})
	return defaultFetcher
}

// NewFetcher returns a Fetcher for cssBase with two retries and a 15s
// per-attempt timeout.
func NewFetcher(cssBase string) *Fetcher {
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = 15 * time.Second
	c.Logger = nil // suppress retryablehttp's default logging
	return &Fetcher{
		Client:    c,
		CSSBase:   cssBase,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
	}
}

// CacheFile returns the cache path for a family and weight.
func CacheFile(cacheDir, family, weight string) string {
	name := strings.ReplaceAll(family, " ", "_")
	return filepath.Join(cacheDir, fmt.Sprintf("%s-%s.ttf", name, weight))
}

// Fetch downloads a font for spec, caching the result in cacheDir. The
// returned bytes are SFNT (TTF/OTF), converted from WOFF2 if necessary.
func (f *Fetcher) Fetch(ctx context.Context, spec, cacheDir string) ([]byte, error) {
	family, weight, ok := ParseGoogleFontSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	cacheFile := CacheFile(cacheDir, family, weight)
	if data, err := os.ReadFile(cacheFile); err == nil {
		if _, err := woff2.ParseSFNT(data); err == nil {
			slog.Debug("font cache hit", "path", cacheFile)
			return data, nil
		}
		slog.Warn("ignoring corrupt font cache", "path", cacheFile)
	}

	cssURL := fmt.Sprintf("%s?family=%s:wght@%s", f.CSSBase, url.QueryEscape(family), weight)
	cssBody, err := f.get(ctx, cssURL, 1<<20)
	if err != nil {
		return nil, fmt.Errorf("fetching CSS for %s wght@%s: %w", family, weight, err)
	}

	matches := fontURLRe.FindSubmatch(cssBody)
	if matches == nil {
		return nil, fmt.Errorf("no font URL found in Google Fonts CSS response for %s wght@%s", family, weight)
	}
	fontURL := string(matches[1])

	fontData, err := f.get(ctx, fontURL, 10<<20) // 10 MiB limit
	if err != nil {
		return nil, fmt.Errorf("downloading font file: %w", err)
	}

	fontData, err = ToSFNT(fontURL, fontData)
	if err != nil {
		return nil, err
	}

	if err := atomicfile.WriteAll(cacheFile, fontData, 0o644); err != nil {
		// Non-fatal: the font is still usable for this run.
		slog.Warn("failed to cache font", "path", cacheFile, "error", err)
	}
	return fontData, nil
}

// get performs a GET and returns at most limit bytes of a 200 response body.
func (f *Fetcher) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
