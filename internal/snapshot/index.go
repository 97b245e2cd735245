package snapshot

import (
	"net/url"
	"sort"

	"github.com/repplus/paramscope/internal/noise"
)

// Parameter sources as reported by the index
const (
	SourcePage = "page"
	SourceForm = "form"
	SourceLink = "link"
	SourceJS   = "js"
)

// ParamSummary aggregates every occurrence of one parameter name
type ParamSummary struct {
	Name      string         `json:"name"`
	Total     int            `json:"total"`
	Sources   map[string]int `json:"sources"`
	NoiseType string         `json:"noise_type,omitempty"`
}

// HostSummary counts links with params per host
type HostSummary struct {
	Host     string `json:"host"`
	Links    int    `json:"links"`
	Category string `json:"category,omitempty"`
}

// Index is a flattened view over a document's parameter names
type Index struct {
	URL    string         `json:"url"`
	Params []ParamSummary `json:"params"`
	Hosts  []HostSummary  `json:"hosts"`
}

// BuildIndex aggregates parameter names from all four sources of doc.
// Params are sorted by total occurrences, then name.
func BuildIndex(doc *Document) Index {
	byName := make(map[string]*ParamSummary)
	add := func(name, source string) {
		if name == "" {
			return
		}
		ps, ok := byName[name]
		if !ok {
			ps = &ParamSummary{
				Name:      name,
				Sources:   make(map[string]int),
				NoiseType: noise.DetectParamType(name),
			}
			byName[name] = ps
		}
		ps.Total++
		ps.Sources[source]++
	}

	for name := range doc.PageQueryParams {
		add(name, SourcePage)
	}
	for _, f := range doc.Forms {
		for _, in := range f.Inputs {
			add(in.Name, SourceForm)
		}
	}
	hostCounts := make(map[string]int)
	for _, l := range doc.LinksWithParams {
		for name := range l.Params {
			add(name, SourceLink)
		}
		if u, err := url.Parse(l.Href); err == nil && u.Host != "" {
			hostCounts[u.Hostname()]++
		}
	}
	for _, name := range doc.JSNames {
		add(name, SourceJS)
	}

	idx := Index{
		URL:    doc.URL,
		Params: make([]ParamSummary, 0, len(byName)),
		Hosts:  make([]HostSummary, 0, len(hostCounts)),
	}
	for _, ps := range byName {
		idx.Params = append(idx.Params, *ps)
	}
	sort.Slice(idx.Params, func(i, j int) bool {
		if idx.Params[i].Total != idx.Params[j].Total {
			return idx.Params[i].Total > idx.Params[j].Total
		}
		return idx.Params[i].Name < idx.Params[j].Name
	})

	for host, n := range hostCounts {
		idx.Hosts = append(idx.Hosts, HostSummary{
			Host:     host,
			Links:    n,
			Category: noise.DetectHostType(host),
		})
	}
	sort.Slice(idx.Hosts, func(i, j int) bool {
		if idx.Hosts[i].Links != idx.Hosts[j].Links {
			return idx.Hosts[i].Links > idx.Hosts[j].Links
		}
		return idx.Hosts[i].Host < idx.Hosts[j].Host
	})
	return idx
}

// NoiseNames returns the names classified as noise, sorted.
func (idx Index) NoiseNames() []string {
	var names []string
	for _, p := range idx.Params {
		if p.NoiseType != "" {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}
