// Package linkpreview detects links in free text and scrapes preview metadata
// from the pages they point to.
package linkpreview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"tripshare-backend/internal/models"

	"golang.org/x/net/html"
)

const (
	// DefaultTimeout bounds a whole preview fetch
	DefaultTimeout = 5 * time.Second

	maxTitleRunes       = 100
	maxDescriptionRunes = 300
	maxBodyBytes        = 1 << 20
	userAgent           = "tripshare-linkpreview/1.0"
)

// Fetcher scrapes title, description and image metadata from web pages
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher. A nil client gets NewPublicClient with
// DefaultTimeout, which refuses loopback and private addresses.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = NewPublicClient(DefaultTimeout)
	}
	return &Fetcher{client: client}
}

// Fetch downloads rawURL and extracts its preview metadata
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.LinkPreview, error) {
	if !IsURL(rawURL) {
		return nil, fmt.Errorf("invalid url: %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return &models.LinkPreview{URL: rawURL, SiteName: hostOf(resp.Request.URL)}, nil
	}

	return Parse(io.LimitReader(resp.Body, maxBodyBytes), resp.Request.URL)
}

// Parse extracts preview metadata from an HTML document located at base
func Parse(r io.Reader, base *url.URL) (*models.LinkPreview, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var m meta
	m.walk(doc)

	preview := &models.LinkPreview{
		URL:         base.String(),
		Title:       truncate(firstNonEmpty(m.ogTitle, m.title), maxTitleRunes),
		Description: truncate(firstNonEmpty(m.ogDescription, m.description), maxDescriptionRunes),
		Image:       resolve(base, m.ogImage),
		SiteName:    firstNonEmpty(m.ogSiteName, hostOf(base)),
	}
	return preview, nil
}

type meta struct {
	title         string
	description   string
	ogTitle       string
	ogDescription string
	ogImage       string
	ogSiteName    string
}

func (m *meta) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if m.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				m.title = n.FirstChild.Data
			}
		case "meta":
			m.readMeta(n)
		case "body":
			// metadata lives in head
			if m.title != "" || m.ogTitle != "" {
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		m.walk(c)
	}
}

func (m *meta) readMeta(n *html.Node) {
	key := strings.ToLower(firstNonEmpty(attr(n, "property"), attr(n, "name")))
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}
	set := func(dst *string) {
		if *dst == "" {
			*dst = content
		}
	}
	switch key {
	case "og:title", "twitter:title":
		set(&m.ogTitle)
	case "og:description", "twitter:description":
		set(&m.ogDescription)
	case "og:image", "og:image:url", "twitter:image":
		set(&m.ogImage)
	case "og:site_name":
		set(&m.ogSiteName)
	case "description":
		set(&m.description)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func hostOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
