package output

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/repplus/paramscope/internal/noise"
	"github.com/repplus/paramscope/internal/snapshot"
)

// Controls a browser never submits as name=value on its own.
var unsubmitted = map[string]bool{
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
	"file":   true,
}

// FormRequest is the request a browser would send when submitting a form
type FormRequest struct {
	Method string
	URL    string
	Body   string
}

// BuildFormRequest encodes f's inputs the way a plain form submission does:
// into the action's query for GET, into an urlencoded body otherwise. With
// useVars, CSRF token values become $CSRF_TOKEN.
//
// Checkbox and radio inputs are always included because the snapshot does
// not record checked state. ok is false for method=dialog forms, which close
// a dialog instead of sending a request.
func BuildFormRequest(f snapshot.Form, useVars bool) (req FormRequest, ok bool) {
	if strings.EqualFold(f.Method, "dialog") {
		return FormRequest{}, false
	}
	pairs := make([]string, 0, len(f.Inputs))
	for _, in := range f.Inputs {
		if unsubmitted[in.Type] {
			continue
		}
		value := url.QueryEscape(in.Value)
		if useVars && noise.IsCSRFParam(in.Name) {
			value = "$CSRF_TOKEN"
		}
		pairs = append(pairs, url.QueryEscape(in.Name)+"="+value)
	}
	encoded := strings.Join(pairs, "&")

	req = FormRequest{Method: f.Method, URL: f.Action}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if req.Method == http.MethodGet {
		if u, err := url.Parse(f.Action); err == nil {
			u.RawQuery = encoded
			req.URL = u.String()
		}
		return req, true
	}
	req.Body = encoded
	return req, true
}

// GenerateCurl renders req as a curl command line.
func GenerateCurl(req FormRequest, headers http.Header, useVars bool) string {
	var parts []string

	parts = append(parts, "curl")

	if req.Method != http.MethodGet {
		parts = append(parts, "-X", req.Method)
	}

	parts = append(parts, fmt.Sprintf("'%s'", escapeQuote(req.URL)))

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range headers[name] {
			if useVars {
				value = replaceWithVars(name, value)
			}
			parts = append(parts, "-H", fmt.Sprintf("'%s: %s'", name, escapeQuote(value)))
		}
	}

	if req.Body != "" {
		if headers.Get("Content-Type") == "" {
			parts = append(parts, "-H", "'Content-Type: application/x-www-form-urlencoded'")
		}
		parts = append(parts, "-d", fmt.Sprintf("'%s'", escapeQuote(req.Body)))
	}

	if len(parts) > 4 {
		return formatCurlMultiline(parts)
	}
	return strings.Join(parts, " ")
}

func replaceWithVars(headerName, value string) string {
	switch strings.ToLower(headerName) {
	case "authorization":
		lower := strings.ToLower(value)
		if strings.HasPrefix(lower, "bearer ") {
			return "Bearer $BEARER_TOKEN"
		}
		if strings.HasPrefix(lower, "basic ") {
			return "Basic $BASIC_AUTH"
		}
		return "$AUTH_TOKEN"
	case "cookie":
		return "$SESSION_COOKIE"
	case "x-api-key":
		return "$API_KEY"
	case "x-csrf-token", "x-xsrf-token":
		return "$CSRF_TOKEN"
	}
	return value
}

func escapeQuote(s string) string {
	return strings.ReplaceAll(s, "'", "'\"'\"'")
}

func formatCurlMultiline(parts []string) string {
	lines := []string{parts[0]}
	for i := 1; i < len(parts); i++ {
		if parts[i] == "-X" || parts[i] == "-H" || parts[i] == "-d" {
			if i+1 < len(parts) {
				lines = append(lines, fmt.Sprintf("  %s %s", parts[i], parts[i+1]))
				i++
			}
		} else {
			lines = append(lines, "  "+parts[i])
		}
	}
	return strings.Join(lines, " \\\n")
}
