package match

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// SearchEngine is one keyword search template, e.g. https://www.google.com/search?q={searchTerms}.
type SearchEngine struct {
	Keyword  string `toml:"keyword"`
	Template string `toml:"template"`
}

type engineKey struct {
	host string
	path string
}

type compiledEngine struct {
	SearchEngine
	param string
}

// SearchEngines canonicalises search-result URLs so that the same query
// reached through different URL shapes shares one stripped destination.
type SearchEngines struct {
	byHostPath map[engineKey]compiledEngine
}

var folder = cases.Fold()

// NewSearchEngines compiles templates. Templates without a {searchTerms}
// query parameter are skipped.
func NewSearchEngines(engines ...SearchEngine) *SearchEngines {
	se := &SearchEngines{byHostPath: make(map[engineKey]compiledEngine, len(engines))}
	for _, e := range engines {
		u, err := url.Parse(strings.Replace(e.Template, "{searchTerms}", "__terms__", 1))
		if err != nil {
			log.Warnf("Skipping search engine %q: %v", e.Keyword, err)
			continue
		}
		param := ""
		for k, vs := range u.Query() {
			if len(vs) > 0 && vs[0] == "__terms__" {
				param = k
				break
			}
		}
		if param == "" {
			log.Warnf("Skipping search engine %q: template has no {searchTerms} parameter", e.Keyword)
			continue
		}
		key := engineKey{host: canonicalHost(u.Hostname()), path: u.EscapedPath()}
		se.byHostPath[key] = compiledEngine{SearchEngine: e, param: param}
	}
	return se
}

// Len returns the number of usable templates.
func (se *SearchEngines) Len() int {
	if se == nil {
		return 0
	}
	return len(se.byHostPath)
}

// canonicalize returns the canonical search URL for u when u is a search
// results page of a known engine.
func (se *SearchEngines) canonicalize(u *url.URL, host string) (string, bool) {
	if se == nil || len(se.byHostPath) == 0 {
		return "", false
	}
	e, ok := se.byHostPath[engineKey{host: host, path: u.EscapedPath()}]
	if !ok {
		return "", false
	}
	terms := u.Query().Get(e.param)
	if terms == "" {
		return "", false
	}
	return "http://" + host + u.EscapedPath() + "?" + e.param + "=" + url.QueryEscape(NormalizeTerms(terms)), true
}

// NormalizeTerms folds case, applies NFKC and collapses whitespace in search terms.
func NormalizeTerms(terms string) string {
	return strings.Join(strings.Fields(folder.String(norm.NFKC.String(terms))), " ")
}

// StripDestination computes the identity used for deduplication. It returns
// "" when dest cannot be parsed as an absolute URL.
//
//	scheme https folds into http, host is IDNA/lower-cased with "www." dropped,
//	the fragment is dropped, known search pages keep only their folded terms.
func StripDestination(dest string, engines *SearchEngines) string {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return ""
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	if port != "" && isDefaultPort(scheme, port) {
		port = ""
	}
	if scheme == "https" {
		scheme = "http"
	}
	if u.Host == "" {
		// Opaque schemes such as about: and chrome: have no host to canonicalise.
		return scheme + ":" + u.Opaque + u.EscapedPath()
	}
	host := canonicalHost(u.Hostname())
	if canon, ok := engines.canonicalize(u, host); ok {
		return canon
	}
	if port != "" {
		host += ":" + port
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	out := scheme + "://" + host + path
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out
}

func canonicalHost(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return strings.TrimPrefix(host, "www.")
}

func isDefaultPort(scheme, port string) bool {
	switch scheme {
	case "http":
		return port == "80"
	case "https":
		return port == "443"
	case "ftp":
		return port == "21"
	}
	return false
}
