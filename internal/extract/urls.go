package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/repplus/paramscope/internal/snapshot"
)

// Special schemes and their default ports. URLs with these schemes must
// carry a host.
var specialSchemes = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

func isSpecial(scheme string) bool {
	_, ok := specialSchemes[strings.ToLower(scheme)]
	return ok
}

// stripURLNoise drops surrounding whitespace and embedded tab/newline
// characters the way browsers do before parsing a URL.
func stripURLNoise(raw string) string {
	raw = strings.TrimSpace(raw)
	return strings.NewReplacer("\t", "", "\n", "", "\r", "").Replace(raw)
}

// slashBackslashes treats '\' as '/' before the query and fragment, as
// browsers do for special-scheme URLs.
func slashBackslashes(raw string) string {
	end := strings.IndexAny(raw, "?#")
	if end < 0 {
		end = len(raw)
	}
	return strings.ReplaceAll(raw[:end], "\\", "/") + raw[end:]
}

// refScheme returns the scheme of ref, or "" for a relative reference.
func refScheme(ref string) string {
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return ref[:i]
		default:
			return ""
		}
	}
	return ""
}

// ParseAbsolute parses raw as an absolute URL. Relative references and
// special-scheme URLs without a host are rejected.
func ParseAbsolute(raw string) (*url.URL, error) {
	raw = stripURLNoise(raw)
	if isSpecial(refScheme(raw)) {
		raw = slashBackslashes(raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("extract: %q is not an absolute URL", raw)
	}
	if isSpecial(u.Scheme) && u.Host == "" {
		return nil, fmt.Errorf("extract: %q has no host", raw)
	}
	return canonical(u), nil
}

// Resolve resolves ref against base.
func Resolve(base *url.URL, ref string) (*url.URL, error) {
	if base == nil {
		return ParseAbsolute(ref)
	}
	ref = stripURLNoise(ref)
	scheme := refScheme(ref)
	if (scheme == "" && isSpecial(base.Scheme)) || isSpecial(scheme) {
		ref = slashBackslashes(ref)
	}
	u, err := base.Parse(ref)
	if err != nil {
		return nil, err
	}
	if isSpecial(u.Scheme) && u.Host == "" {
		return nil, fmt.Errorf("extract: %q has no host", ref)
	}
	return canonical(u), nil
}

// canonical serializes u the way a browser's href does: lowercase scheme
// and host, no default port, root path for an empty path, and spaces,
// quotes, angle brackets and non-ASCII bytes percent-encoded in the query.
func canonical(u *url.URL) *url.URL {
	u.Scheme = strings.ToLower(u.Scheme)
	if port, ok := specialSchemes[u.Scheme]; ok {
		host := strings.ToLower(u.Hostname())
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		if p := u.Port(); p != "" && p != port {
			host += ":" + p
		}
		u.Host = host
		if u.Path == "" && u.Opaque == "" {
			u.Path = "/"
		}
	}
	u.RawQuery = escapeQuery(u.RawQuery, isSpecial(u.Scheme))
	return u
}

// escapeQuery applies the URL standard's query percent-encode set. Existing
// escapes and '%' are left alone.
func escapeQuery(q string, special bool) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	escaped := false
	for i := 0; i < len(q); i++ {
		c := q[i]
		if c <= 0x20 || c >= 0x7F || c == '"' || c == '<' || c == '>' || (special && c == '\'') {
			if !escaped {
				b.WriteString(q[:i])
				escaped = true
			}
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0F])
			continue
		}
		if escaped {
			b.WriteByte(c)
		}
	}
	if !escaped {
		return q
	}
	return b.String()
}

// QueryParams returns the query parameters of rawURL. Malformed URLs yield
// an empty map; the error is deliberately dropped.
func QueryParams(rawURL string) snapshot.ParamMap {
	u, err := ParseAbsolute(rawURL)
	if err != nil {
		return snapshot.ParamMap{}
	}
	return ParseQuery(u.RawQuery)
}

// ParseQuery decodes a raw query string with URLSearchParams rules:
// '+' is a space, bad percent escapes are kept literally and a repeated
// key keeps its last value.
func ParseQuery(rawQuery string) snapshot.ParamMap {
	params := snapshot.ParamMap{}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		params[decodeComponent(key)] = decodeComponent(value)
	}
	return params
}

func decodeComponent(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if !strings.Contains(s, "%") {
		return s
	}
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	// Decode valid escapes one by one and leave the rest untouched.
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
