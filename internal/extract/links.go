package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/repplus/paramscope/internal/snapshot"
)

// LinksWithParams returns every anchor whose resolved href contains '?'.
// Anchors that do not resolve to a URL are skipped.
func (p *Page) LinksWithParams() []snapshot.Link {
	base := p.BaseURL()
	links := []snapshot.Link{}
	p.Doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		raw, _ := a.Attr("href")
		u, err := Resolve(base, raw)
		if err != nil {
			return
		}
		href := u.String()
		if !strings.Contains(href, "?") {
			return
		}
		links = append(links, snapshot.Link{
			Href:   href,
			Params: ParseQuery(u.RawQuery),
		})
	})
	return links
}
