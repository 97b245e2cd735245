package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/repplus/paramscope/internal/snapshot"
)

// Methods a form's method attribute may name; anything else is GET.
var formMethods = map[string]bool{
	"get":    true,
	"post":   true,
	"dialog": true,
}

// Forms returns one record per <form> in document order. Controls without a
// name are skipped since they submit nothing.
func (p *Page) Forms() []snapshot.Form {
	base := p.BaseURL()
	forms := []snapshot.Form{}
	p.Doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		rec := snapshot.Form{
			Method: formMethod(form),
			Action: p.Href(),
			Inputs: []snapshot.Input{},
		}
		if action := strings.TrimSpace(form.AttrOr("action", "")); action != "" {
			if u, err := Resolve(base, action); err == nil {
				rec.Action = u.String()
			}
		}

		form.Find("input, textarea, select").Each(func(_ int, ctl *goquery.Selection) {
			name := ctl.AttrOr("name", "")
			if name == "" {
				return
			}
			rec.Inputs = append(rec.Inputs, snapshot.Input{
				Name:  name,
				Type:  controlType(ctl),
				Value: controlValue(ctl),
			})
		})
		forms = append(forms, rec)
	})
	return forms
}

func formMethod(form *goquery.Selection) string {
	method := strings.ToLower(strings.TrimSpace(form.AttrOr("method", "")))
	if !formMethods[method] {
		method = "get"
	}
	return strings.ToUpper(method)
}

// controlType is the lowercased type attribute, or the tag name without one.
func controlType(ctl *goquery.Selection) string {
	if t := strings.TrimSpace(ctl.AttrOr("type", "")); t != "" {
		return strings.ToLower(t)
	}
	return strings.ToLower(goquery.NodeName(ctl))
}

func controlValue(ctl *goquery.Selection) string {
	switch goquery.NodeName(ctl) {
	case "textarea":
		return ctl.Text()
	case "select":
		return selectValue(ctl)
	}
	if v, ok := ctl.Attr("value"); ok {
		return v
	}
	switch strings.ToLower(ctl.AttrOr("type", "")) {
	case "checkbox", "radio":
		return "on"
	}
	return ""
}

// selectValue follows the selectedness rules of the HTML spec: the last
// selected option of a single select wins, a multiple select reports its
// first selected option, and a single select with nothing selected falls
// back to its first option.
func selectValue(sel *goquery.Selection) string {
	options := sel.Find("option")
	selected := options.FilterFunction(func(_ int, o *goquery.Selection) bool {
		_, ok := o.Attr("selected")
		return ok
	})
	_, multiple := sel.Attr("multiple")

	switch {
	case selected.Length() > 0 && multiple:
		return optionValue(selected.First())
	case selected.Length() > 0:
		return optionValue(selected.Last())
	case !multiple && options.Length() > 0:
		return optionValue(options.First())
	}
	return ""
}

func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.Join(strings.Fields(opt.Text()), " ")
}
