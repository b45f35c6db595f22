package endpoint

import (
	"net/url"
	"strings"
)

// NormalizePath returns the canonical routing form of rawURL.
//
// Only the path component of rawURL is kept; scheme, host, port, query
// string and fragment are discarded. The result is trimmed of surrounding
// whitespace and always begins and ends with a slash:
//
//	""                                  -> "/"
//	"foo"                               -> "/foo/"
//	"/foo"                              -> "/foo/"
//	"http://host:port/foo/bar?x=1#frag" -> "/foo/bar/"
//
// NormalizePath never fails. Input that cannot be parsed as a URL is
// reduced leniently, so every string yields some valid path.
// NormalizePath is idempotent.
func NormalizePath(rawURL string) string {
	p := strings.TrimSpace(pathOf(rawURL))
	if p == "" || !strings.HasSuffix(p, "/") {
		p += "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// pathOf extracts the escaped path component of raw.
func pathOf(raw string) string {
	raw, _, _ = strings.Cut(raw, "#")
	raw, _, _ = strings.Cut(raw, "?")
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "/") {
		u, err := url.Parse(raw)
		switch {
		case err != nil:
			raw = "/" + strings.TrimPrefix(stripAuthority(raw), "/")
		case u.Opaque != "":
			// "scheme:opaque" has no path component.
			return ""
		default:
			return u.EscapedPath()
		}
	}

	// A leading "//" is part of the path here, not an authority.
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return raw
	}
	return u.EscapedPath()
}

// stripAuthority drops a "scheme://host[:port]" prefix from raw, if any.
func stripAuthority(raw string) string {
	_, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i:]
	}
	return ""
}
