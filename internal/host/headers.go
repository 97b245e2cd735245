package host

import (
	"fmt"
	"net/http"
	"strings"
)

// ParseHeaders parses "Name: value" lines as given to repeated -H flags.
// A single line may carry several headers separated by ';' except for
// Cookie, whose value legitimately contains semicolons.
func ParseHeaders(lines []string) (http.Header, error) {
	headers := make(http.Header)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := []string{line}
		if name, _, _ := strings.Cut(line, ":"); !strings.EqualFold(strings.TrimSpace(name), "cookie") {
			parts = strings.Split(line, ";")
		}
		for _, h := range parts {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			name, value, ok := strings.Cut(h, ":")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				return nil, fmt.Errorf("invalid header %q: expected \"Name: value\"", h)
			}
			headers.Add(name, strings.TrimSpace(value))
		}
	}
	return headers, nil
}

// HeaderFirst returns the first value for a header name (case-insensitive).
func HeaderFirst(headers http.Header, name string) string {
	for key, values := range headers {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
