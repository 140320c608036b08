// Package sitelist is the default whitelist of sites the client proxies.
package sitelist

import (
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Defaults ship with every fresh install.
var Defaults = []string{
	"facebook.com",
	"google.com",
	"twitter.com",
	"wikipedia.org",
	"youtube.com",
}

// Entry is one stored site.
type Entry struct {
	Site    string `json:"site" yaml:"site"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

// List is a normalized, sorted, duplicate free set of sites.
type List struct {
	mu      sync.RWMutex
	entries []Entry
}

// New returns a list holding Defaults.
func New() *List {
	l := &List{}
	for _, site := range Defaults {
		l.entries = append(l.entries, Entry{Site: site, Default: true})
	}
	return l
}

// Entries returns the site names in order.
func (l *List) Entries() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Site)
	}
	return out
}

// SetEntries replaces the list. Sites that were shipped as defaults keep
// their flag; anything that does not normalize to a host is skipped.
func (l *List) SetEntries(sites []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	defaults := make(map[string]bool, len(l.entries))
	for _, e := range l.entries {
		if e.Default {
			defaults[e.Site] = true
		}
	}
	l.entries = build(sites, func(site string) bool { return defaults[site] })
}

// Add inserts a single site.
func (l *List) Add(site string) {
	site = Normalize(site)
	if site == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	i, found := l.search(site)
	if found {
		return
	}
	l.entries = slices.Insert(l.entries, i, Entry{Site: site})
}

// Remove deletes a single site.
func (l *List) Remove(site string) {
	site = Normalize(site)
	l.mu.Lock()
	defer l.mu.Unlock()
	if i, found := l.search(site); found {
		l.entries = slices.Delete(l.entries, i, i+1)
	}
}

// Contains reports whether site, after normalization, is listed.
func (l *List) Contains(site string) bool {
	site = Normalize(site)
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, found := l.search(site)
	return found
}

func (l *List) search(site string) (int, bool) {
	return slices.BinarySearchFunc(l.entries, site, func(e Entry, s string) int {
		return strings.Compare(e.Site, s)
	})
}

// Normalize reduces a URL or host to the bare lower-case site name.
// "https://www.Example.com/path" becomes "example.com".
func Normalize(site string) string {
	site = strings.ToLower(strings.TrimSpace(site))
	if i := strings.Index(site, "://"); i >= 0 {
		site = site[i+3:]
	}
	if i := strings.IndexAny(site, "/?#"); i >= 0 {
		site = site[:i]
	}
	site = strings.TrimPrefix(site, "www.")
	return strings.TrimSuffix(site, ".")
}

func build(sites []string, isDefault func(string) bool) []Entry {
	seen := make(map[string]struct{}, len(sites))
	entries := make([]Entry, 0, len(sites))
	for _, raw := range sites {
		site := Normalize(raw)
		if site == "" {
			continue
		}
		if _, ok := seen[site]; ok {
			continue
		}
		seen[site] = struct{}{}
		entries = append(entries, Entry{Site: site, Default: isDefault(site)})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Site, b.Site) })
	return entries
}

// raw is the stored form of the list.
type raw struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

func (l *List) snapshot() raw {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return raw{Entries: append([]Entry{}, l.entries...)}
}

// Clone returns an independent copy, default flags included.
func (l *List) Clone() *List {
	return &List{entries: l.snapshot().Entries}
}

// FromSites builds a list from plain site names. No entry is marked default.
func FromSites(sites []string) *List {
	return &List{entries: build(sites, func(string) bool { return false })}
}

// CopyFrom replaces the contents of l with those of src.
func (l *List) CopyFrom(src *List) {
	if l == src {
		return
	}
	entries := src.snapshot().Entries
	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
}

func (l *List) restore(r raw) {
	flags := make(map[string]bool, len(r.Entries))
	sites := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		site := Normalize(e.Site)
		flags[site] = flags[site] || e.Default
		sites = append(sites, e.Site)
	}
	entries := build(sites, func(site string) bool { return flags[site] })

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
}

func (l *List) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.snapshot())
}

func (l *List) UnmarshalJSON(b []byte) error {
	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	l.restore(r)
	return nil
}

func (l *List) MarshalYAML() (any, error) {
	return l.snapshot(), nil
}

func (l *List) UnmarshalYAML(node *yaml.Node) error {
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	l.restore(r)
	return nil
}
