// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the cookie/auth state shared by all backend fetches
// and issues HTTP requests through a single configured client. It also
// implements the two-step preferences protocol the HTML engine requires
// before it will serve citation-export links.
package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/scholar-overlap/internal/httputil"
	"github.com/pdiddy/scholar-overlap/internal/scholar"
	"github.com/pdiddy/scholar-overlap/pkg/types"
)

// defaultUserAgent identifies the crawler to the engines. The engines
// refuse obviously headless clients, so this mirrors a desktop browser.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:27.0) Gecko/20100101 Firefox/27.0"

const settingsFormPath = "/scholar_settings?sciifh=1&hl=en&as_sdt=0,5"

// Session maintains a cookie jar across fetches within one process and
// carries a fixed identifying header on every request.
type Session struct {
	client *resty.Client
	jar    http.CookieJar
	cfg    types.SessionConfig
	out    io.Writer

	// sites lists the site URLs whose cookies are persisted.
	sites []string
}

// New builds a Session from config, applying defaults for unset fields.
func New(cfg types.SessionConfig, out io.Writer) (*Session, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = httputil.DefaultMaxRetries
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	client := resty.New().
		SetCookieJar(jar).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)
	client.SetRetryCount(cfg.MaxRetries)
	client.AddRetryCondition(httputil.RetryOn429)
	client.SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		return httputil.Backoff(resp.Request.Attempt), nil
	})

	return &Session{client: client, jar: jar, cfg: cfg, out: out}, nil
}

// RegisterSite adds a site URL to the set whose cookies are loaded and
// saved by the persistence hooks.
func (s *Session) RegisterSite(site string) {
	s.sites = append(s.sites, site)
}

// Fetch retrieves rawURL with the session's cookie state and identifying
// header, plus any request-specific headers. Transport failures and
// non-200 statuses are returned as errors; the caller treats an error as
// "no results available for this request" and continues the batch.
func (s *Session) Fetch(ctx context.Context, rawURL string, header map[string]string) ([]byte, error) {
	if logged, err := url.QueryUnescape(rawURL); err == nil {
		fmt.Fprintf(s.out, "requesting %s\n", logged)
	}

	resp, err := s.client.R().SetContext(ctx).SetHeaders(header).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned HTTP %d", rawURL, resp.StatusCode())
	}
	return resp.Body(), nil
}

// ApplySettings pushes session preferences (citation export format,
// per-page cap) to the HTML engine at site. The engine only accepts the
// update when it carries the anti-forgery token hidden in its preferences
// form, so this is a two-step protocol: fetch the form, extract the token,
// then request the update URL with the token and the desired values.
// An unconfigured settings value is a no-op.
func (s *Session) ApplySettings(ctx context.Context, site string, settings *scholar.Settings) error {
	if settings == nil || !settings.Configured() {
		return nil
	}

	html, err := s.Fetch(ctx, site+settingsFormPath, nil)
	if err != nil {
		return fmt.Errorf("requesting settings form: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return fmt.Errorf("parsing settings form: %w", err)
	}
	form := doc.Find("form#gs_settings_form")
	if form.Length() == 0 {
		return fmt.Errorf("settings page carries no preferences form")
	}
	token := form.Find("input[type=hidden][name=scisig]").AttrOr("value", "")
	if token == "" {
		return fmt.Errorf("preferences form carries no scisig token")
	}

	scis, scisf := "no", ""
	if f := settings.CitationFormat(); f != scholar.CitationNone {
		scis = "yes"
		scisf = "&scisf=" + strconv.Itoa(int(f))
	}

	update := site + "/scholar_setprefs?q=" +
		"&scisig=" + url.QueryEscape(token) +
		"&inststart=0" +
		"&as_sdt=1,5" +
		"&as_sdtp=" +
		"&num=" + strconv.Itoa(settings.PerPageResults()) +
		"&scis=" + scis + scisf +
		"&hl=en&lang=all&instq=&inst=569367360547434339&save="

	if _, err := s.Fetch(ctx, update, nil); err != nil {
		return fmt.Errorf("applying settings: %w", err)
	}

	fmt.Fprintln(s.out, "settings applied")
	return nil
}
