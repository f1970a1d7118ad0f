package gdelt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"mediawatch/internal/domain/geo"
	"mediawatch/internal/usecase/ingest"
)

// DomainMapper resolves publishing domains to ISO alpha-2 codes. Domains
// missing from the mapping fall back to their ccTLD.
type DomainMapper struct {
	domains map[string]string
}

var _ ingest.CountryResolver = (*DomainMapper)(nil)

// NewDomainMapper returns a mapper with no explicit entries.
func NewDomainMapper() *DomainMapper {
	return &DomainMapper{domains: map[string]string{}}
}

// LoadMapping reads a "domain<TAB>code<TAB>name" file. An empty path yields
// a ccTLD-only mapper.
func LoadMapping(path string) (*DomainMapper, error) {
	if path == "" {
		return NewDomainMapper(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseMapping(f)
}

// ParseMapping reads mapping lines. The country name wins over the code so
// that files using FIPS codes ("UK", "GM") still resolve to ISO codes.
func ParseMapping(r io.Reader) (*DomainMapper, error) {
	m := NewDomainMapper()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		parts := strings.Split(strings.TrimSpace(sc.Text()), "\t")
		if len(parts) < 2 {
			continue
		}
		domain := geo.ExtractDomain(parts[0])
		if domain == "" {
			continue
		}
		code := ""
		if len(parts) >= 3 {
			code, _ = geo.CodeByName(parts[2])
		}
		if code == "" {
			if c, ok := geo.Lookup(parts[1]); ok {
				code = c.Code
			}
		}
		if code != "" {
			m.domains[domain] = code
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	return m, nil
}

// Len returns the number of explicit entries.
func (m *DomainMapper) Len() int { return len(m.domains) }

func (m *DomainMapper) Resolve(domain string) string {
	d := geo.ExtractDomain(domain)
	if d == "" {
		return ""
	}
	if code, ok := m.domains[d]; ok {
		return code
	}
	return geo.CountryFromTLD(d)
}
