package linkpreview

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// IsURL reports whether s is an absolute http(s) URL with a host
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FindURLs returns every http(s) URL in text, in order of appearance.
// Trailing punctuation that usually ends a sentence is not part of the URL.
func FindURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:!?)]}")
		if IsURL(m) {
			out = append(out, m)
		}
	}
	return out
}

// FirstURL returns the first URL in text, or ""
func FirstURL(text string) string {
	if urls := FindURLs(text); len(urls) > 0 {
		return urls[0]
	}
	return ""
}
