package geo

import (
	"net/url"
	"strings"
)

// tldOverrides covers ccTLDs that differ from the ISO code, and ccTLDs that
// are commonly used as generic domains and say nothing about the publisher.
var tldOverrides = map[string]string{
	"uk": "GB",
	"io": "",
	"co": "",
	"tv": "",
	"me": "",
	"fm": "",
	"ai": "",
	"ly": "",
	"cc": "",
	"ws": "",
	"eu": "",
}

// CountryFromTLD maps the top level domain of host to a country code.
// Generic TLDs and unknown ccTLDs yield an empty string.
func CountryFromTLD(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	idx := strings.LastIndexByte(host, '.')
	if idx < 0 || idx == len(host)-1 {
		return ""
	}
	tld := host[idx+1:]
	if code, ok := tldOverrides[tld]; ok {
		return code
	}
	if len(tld) != 2 {
		return ""
	}
	if _, ok := Lookup(tld); !ok {
		return ""
	}
	return strings.ToUpper(tld)
}

// ExtractDomain reduces a URL or bare host name to its host without the
// "www." prefix, scheme, port and path.
func ExtractDomain(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			raw = u.Host
		}
	}
	if i := strings.IndexAny(raw, "/?#"); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.LastIndexByte(raw, ':'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimPrefix(raw, "www.")
}
