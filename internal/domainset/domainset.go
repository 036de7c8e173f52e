// Package domainset accumulates the unique hostnames harvested from result
// pages. A Set is threaded explicitly through the run; nothing here is
// global.
package domainset

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Set holds unique, non-empty hostnames. The zero value is not usable; use
// New. A Set is not synchronized: the run loop is strictly sequential.
type Set struct {
	hosts map[string]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{hosts: make(map[string]struct{})}
}

// Add inserts a hostname and reports whether it was new. Empty strings are
// rejected so the set invariant holds no matter what callers pass.
func (s *Set) Add(host string) bool {
	if host == "" {
		return false
	}
	if _, ok := s.hosts[host]; ok {
		return false
	}
	s.hosts[host] = struct{}{}
	return true
}

// Has reports whether host is in the set.
func (s *Set) Has(host string) bool {
	_, ok := s.hosts[host]
	return ok
}

// Len returns the number of hostnames collected.
func (s *Set) Len() int {
	return len(s.hosts)
}

// Sorted returns the hostnames in lexical order. Sorting makes reruns over
// identical inputs produce byte-identical output files.
func (s *Set) Sorted() []string {
	out := make([]string, 0, len(s.hosts))
	for h := range s.hosts {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Hostname extracts the normalized hostname from a result URL: lowercased,
// scheme and path stripped, port preserved. When stripWWW is set, a leading
// "www." label is removed so both spellings collapse to one entry.
func Hostname(rawURL string, stripWWW bool) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Host)
	if stripWWW && strings.HasPrefix(host, "www.") {
		host = host[len("www."):]
	}
	if host == "" {
		return "", false
	}
	return host, true
}

var dorkTLD = regexp.MustCompile(`site:\*\.(?P<tld>[a-zA-Z0-9\-\.]+)`)

// Filter constrains which hostnames enter a Set. A nil Filter admits
// everything.
type Filter func(host string) bool

// DorkFilter derives a hostname filter from the dork. A dork containing a
// wildcard site: clause (site:*.edu) restricts collection to hostnames under
// that suffix; any other dork leaves collection unrestricted.
func DorkFilter(dork string) Filter {
	m := dorkTLD.FindStringSubmatch(dork)
	if m == nil {
		return nil
	}
	suffix := "." + strings.ToLower(m[1])
	return func(host string) bool {
		return strings.HasSuffix(host, suffix)
	}
}
