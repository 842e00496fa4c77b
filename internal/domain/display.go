package domain

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DomainInitial returns the upper-cased first letter of the bookmark's
// hostname, ignoring a leading "www.". It returns "?" when the URL has no
// usable hostname.
func DomainInitial(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "?"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	r, _ := utf8.DecodeRuneInString(host)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// ShortenURL renders a URL as hostname plus path, dropping the scheme, port,
// query and fragment. A bare "/" path is omitted. Unparseable input is returned as is.
func ShortenURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	if len(u.Path) > 1 {
		return u.Hostname() + u.Path
	}
	return u.Hostname()
}

// Hostname returns the lower-cased hostname of raw without "www.", or ""
// when raw does not parse.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
