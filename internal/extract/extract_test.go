package extract

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/repplus/paramscope/internal/snapshot"
)

func mustPage(t *testing.T, html, pageURL string) *Page {
	t.Helper()
	p, err := NewPageFromHTML([]byte(html), pageURL)
	if err != nil {
		t.Fatalf("NewPageFromHTML: %v", err)
	}
	return p
}

func TestQueryParams(t *testing.T) {
	tests := []struct {
		in   string
		want snapshot.ParamMap
	}{
		{"https://example.com/?a=1&b=2", snapshot.ParamMap{"a": "1", "b": "2"}},
		{"not a url", snapshot.ParamMap{}},
		{"", snapshot.ParamMap{}},
		{"http:///nohost?x=1", snapshot.ParamMap{}},
		{"https://example.com/?a=1&a=2", snapshot.ParamMap{"a": "2"}},
		{"https://example.com/?q=a+b%20c", snapshot.ParamMap{"q": "a b c"}},
		{"https://example.com/?bad=%zz&ok=%41", snapshot.ParamMap{"bad": "%zz", "ok": "A"}},
		{"https://example.com/?flag&empty=", snapshot.ParamMap{"flag": "", "empty": ""}},
		{"mailto:a@example.com?subject=hi", snapshot.ParamMap{"subject": "hi"}},
		{"https://example.com/path", snapshot.ParamMap{}},
	}
	for _, tt := range tests {
		got := QueryParams(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("QueryParams(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

const formsHTML = `<html><head><base href="/app/"></head><body>
<form action="login" method="post">
  <input type="text" name="user">
  <input type="PASSWORD" name="pass" value="x">
  <input type="submit" value="Go">
  <input name="plain">
  <input type="checkbox" name="remember">
  <textarea name="bio">hello</textarea>
  <select name="lang"><option value="en">English</option><option selected>  Deutsch  </option></select>
</form>
<form method="PUT"><input type="text"></form>
</body></html>`

func TestForms(t *testing.T) {
	p := mustPage(t, formsHTML, "https://example.com/start?ref=home")
	forms := p.Forms()
	if len(forms) != 2 {
		t.Fatalf("expected one record per <form>, got %d", len(forms))
	}

	login := forms[0]
	if login.Method != "POST" {
		t.Errorf("method = %q", login.Method)
	}
	if login.Action != "https://example.com/app/login" {
		t.Errorf("action = %q", login.Action)
	}
	want := []snapshot.Input{
		{Name: "user", Type: "text", Value: ""},
		{Name: "pass", Type: "password", Value: "x"},
		{Name: "plain", Type: "input", Value: ""},
		{Name: "remember", Type: "checkbox", Value: "on"},
		{Name: "bio", Type: "textarea", Value: "hello"},
		{Name: "lang", Type: "select", Value: "Deutsch"},
	}
	if !reflect.DeepEqual(login.Inputs, want) {
		t.Errorf("inputs:\n got %+v\nwant %+v", login.Inputs, want)
	}

	other := forms[1]
	if other.Method != "GET" {
		t.Errorf("unknown method should fall back to GET, got %q", other.Method)
	}
	if other.Action != "https://example.com/start?ref=home" {
		t.Errorf("missing action should default to page url, got %q", other.Action)
	}
	if other.Inputs == nil || len(other.Inputs) != 0 {
		t.Errorf("nameless input must be excluded, got %+v", other.Inputs)
	}
}

func TestFormsNamelessInput(t *testing.T) {
	p := mustPage(t, `<form><input type=text></form>`, "https://example.com/")
	forms := p.Forms()
	if len(forms) != 1 || len(forms[0].Inputs) != 0 {
		t.Fatalf("got %+v", forms)
	}
	if forms[0].Method != "GET" || forms[0].Action != "https://example.com/" {
		t.Errorf("defaults: %+v", forms[0])
	}
}

func TestSelectValue(t *testing.T) {
	html := `<form>
<select name="a"><option>one</option><option>two</option></select>
<select name="b" multiple><option>one</option><option>two</option></select>
<select name="c"><option value="1" selected>one</option><option value="2" selected>two</option></select>
<select name="d" multiple><option value="1" selected>one</option><option value="2" selected>two</option></select>
</form>`
	p := mustPage(t, html, "https://example.com/")
	got := map[string]string{}
	for _, in := range p.Forms()[0].Inputs {
		got[in.Name] = in.Value
	}
	want := map[string]string{"a": "one", "b": "", "c": "2", "d": "1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLinksWithParams(t *testing.T) {
	p := mustPage(t, `<a href="/x?y=1">x</a><a href="/z">z</a>`, "https://example.com/")
	links := p.LinksWithParams()
	if len(links) != 1 {
		t.Fatalf("expected exactly one link, got %+v", links)
	}
	if links[0].Href != "https://example.com/x?y=1" {
		t.Errorf("href = %q", links[0].Href)
	}
	if !reflect.DeepEqual(links[0].Params, snapshot.ParamMap{"y": "1"}) {
		t.Errorf("params = %v", links[0].Params)
	}
}

func TestLinksSkipUnresolvable(t *testing.T) {
	html := `<a href="http://[::1">bad</a>
<a href="https://other.example/p?a=1&b=x+y">abs</a>
<a href="#frag?q">frag</a>
<a>no href</a>`
	p := mustPage(t, html, "https://example.com/dir/page")
	links := p.LinksWithParams()
	if len(links) != 2 {
		t.Fatalf("got %+v", links)
	}
	if links[0].Href != "https://other.example/p?a=1&b=x+y" || links[0].Params["b"] != "x y" {
		t.Errorf("absolute link: %+v", links[0])
	}
	// A '?' inside the fragment still counts, with no query params.
	if links[1].Href != "https://example.com/dir/page#frag?q" || len(links[1].Params) != 0 {
		t.Errorf("fragment link: %+v", links[1])
	}
	for _, l := range links {
		if !strings.Contains(l.Href, "?") {
			t.Errorf("link without '?': %s", l.Href)
		}
	}
}

func TestResolveLikeBrowser(t *testing.T) {
	base, err := ParseAbsolute("https://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		ref  string
		want string
	}{
		{"HTTPS://Example.COM/x?a=1", "https://example.com/x?a=1"},
		{"https://example.com:443/y?b=2", "https://example.com/y?b=2"},
		{"http://example.com:80/", "http://example.com/"},
		{"https://example.com:8443/p", "https://example.com:8443/p"},
		{"/s?q=a b", "https://example.com/s?q=a%20b"},
		{"/s?q=café", "https://example.com/s?q=caf%C3%A9"},
		{`/s?q="<it's>"`, "https://example.com/s?q=%22%3Cit%27s%3E%22"},
		{"/s?q=%41%zz", "https://example.com/s?q=%41%zz"},
		{`\\evil.example\p?c=3`, "https://evil.example/p?c=3"},
		{`/a\b?x=\y`, `https://example.com/a/b?x=\y`},
		{"http://[::1]:80/", "http://[::1]/"},
	}
	for _, tt := range tests {
		u, err := Resolve(base, tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tt.ref, err)
			continue
		}
		if got := u.String(); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}

	page, err := ParseAbsolute("HTTP://Example.com:80?q=a b")
	if err != nil {
		t.Fatal(err)
	}
	if page.String() != "http://example.com/?q=a%20b" {
		t.Errorf("page url = %q", page.String())
	}
}

func TestLinksResolveLikeBrowser(t *testing.T) {
	html := `<a href="HTTPS://Example.COM/x?a=1">a</a>
<a href="\\evil.example\p?c=3">b</a>
<a href="/s?q=café">c</a>
<form action="https://example.com:443/go?x=1 2" method="post"></form>`
	p := mustPage(t, html, "https://example.com/")

	links := p.LinksWithParams()
	if len(links) != 3 {
		t.Fatalf("got %+v", links)
	}
	if links[0].Href != "https://example.com/x?a=1" {
		t.Errorf("host not lowercased: %s", links[0].Href)
	}
	if links[1].Href != "https://evil.example/p?c=3" || links[1].Params["c"] != "3" {
		t.Errorf("backslash link: %+v", links[1])
	}
	if links[2].Href != "https://example.com/s?q=caf%C3%A9" || links[2].Params["q"] != "café" {
		t.Errorf("non-ASCII link: %+v", links[2])
	}

	idx := snapshot.BuildIndex(&snapshot.Document{LinksWithParams: links})
	hosts := map[string]int{}
	for _, h := range idx.Hosts {
		hosts[h.Host] = h.Links
	}
	if hosts["evil.example"] != 1 || hosts["example.com"] != 2 {
		t.Errorf("hosts = %v", hosts)
	}

	forms := p.Forms()
	if len(forms) != 1 || forms[0].Action != "https://example.com/go?x=1%202" {
		t.Errorf("forms = %+v", forms)
	}
}

func TestScanNames(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"var x = 1; function f(a, b) {}", []string{"x", "a", "b"}},
		{"let a = 1;\nconst b=2; var a = 3; function (p1 , , p2) {} function(q) {}", []string{"a", "b", "p1", "p2"}},
		{"function f() {} var notAssigned;", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		got := []string(ScanNames(tt.text))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ScanNames(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestJSNamesIgnoresExternalSource(t *testing.T) {
	html := `<script>var one = 1;</script><script src="ext.js"></script><script>function go(two){}</script>`
	p := mustPage(t, html, "https://example.com/")
	got := []string(p.JSNames())
	if !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("got %v", got)
	}
}

func TestJSNamesSkipsTemplateScripts(t *testing.T) {
	html := `<template><script>var hidden = 1;</script></template><script>var shown = 1;</script>`
	p := mustPage(t, html, "https://example.com/")
	got := []string(p.JSNames())
	if !reflect.DeepEqual(got, []string{"shown"}) {
		t.Errorf("got %v", got)
	}
}

func TestScanNamesUnicodeWhitespace(t *testing.T) {
	text := "var\u00a0nb = 1; var\vvt = 2; let ok\u3000= 3; function f(\u00a0a,\ufeffb\u2028) {}"
	got := []string(ScanNames(text))
	want := []string{"nb", "vt", "ok", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScanNames = %q, want %q", got, want)
	}
}

func TestSnapshot(t *testing.T) {
	p := mustPage(t, formsHTML, "https://example.com/start?ref=home")
	p.Clock = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }

	doc := Snapshot(p)
	if doc.URL != "https://example.com/start?ref=home" {
		t.Errorf("url = %q", doc.URL)
	}
	if !reflect.DeepEqual(doc.PageQueryParams, snapshot.ParamMap{"ref": "home"}) {
		t.Errorf("page params = %v", doc.PageQueryParams)
	}
	if len(doc.Forms) != 2 {
		t.Errorf("forms = %d", len(doc.Forms))
	}
	if doc.LinksWithParams == nil || doc.JSNames == nil {
		t.Error("empty sections must be non-nil")
	}
	if doc.Timestamp != "2026-10-19T08:00:00.000Z" {
		t.Errorf("timestamp = %q", doc.Timestamp)
	}
}

func TestNewPageRejectsRelativeURL(t *testing.T) {
	if _, err := NewPageFromHTML([]byte("<p>hi</p>"), "/relative"); err == nil {
		t.Fatal("expected error for relative page url")
	}
}

func TestScriptEmbedded(t *testing.T) {
	if !strings.HasPrefix(strings.TrimSpace(Script), "() =>") {
		t.Fatal("snapshot script must be a function expression")
	}
	call := ScriptCall()
	if !strings.HasPrefix(call, "(() =>") || !strings.HasSuffix(call, ")()") {
		t.Fatalf("unexpected call wrapper: %.40s", call)
	}
}
