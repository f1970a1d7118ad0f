// Package middleware holds the cross-cutting HTTP middleware of the API:
// CORS, per-IP rate limiting, the response cache and admin authentication.
package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"mediawatch/pkg/config"
)

// IPExtractor returns the client IP of a request.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor uses the TCP peer address and ignores proxy headers.
type RemoteAddrExtractor struct{}

func (RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return hostOf(r.RemoteAddr)
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers are
// believed.
type TrustedProxyConfig struct {
	Enabled      bool
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr lies in one of the allowed ranges.
func (c TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	host, err := hostOf(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	for _, p := range c.AllowedCIDRs {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// LoadTrustedProxyConfig reads RATE_LIMIT_TRUST_PROXY and
// RATE_LIMIT_TRUSTED_PROXIES (comma-separated IPs or CIDRs). Enabling trust
// without a valid proxy list is an error.
func LoadTrustedProxyConfig() (TrustedProxyConfig, error) {
	cfg := TrustedProxyConfig{Enabled: config.GetEnvBool("RATE_LIMIT_TRUST_PROXY", false)}
	if !cfg.Enabled {
		return cfg, nil
	}
	for _, s := range config.GetEnvStringList("RATE_LIMIT_TRUSTED_PROXIES", nil) {
		p, err := ParsePrefix(s)
		if err != nil {
			return TrustedProxyConfig{}, err
		}
		cfg.AllowedCIDRs = append(cfg.AllowedCIDRs, p)
	}
	if len(cfg.AllowedCIDRs) == 0 {
		return TrustedProxyConfig{}, fmt.Errorf("RATE_LIMIT_TRUST_PROXY is enabled but RATE_LIMIT_TRUSTED_PROXIES is empty")
	}
	return cfg, nil
}

// ParsePrefix accepts a CIDR or a single address (as /32 or /128).
func ParsePrefix(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if p, err := netip.ParsePrefix(s); err == nil {
		return p, nil
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid IP or CIDR %q", s)
	}
	return netip.PrefixFrom(ip, ip.BitLen()), nil
}

// TrustedProxyExtractor reads X-Forwarded-For, then X-Real-IP, but only for
// requests arriving from a trusted proxy.
type TrustedProxyExtractor struct {
	Config TrustedProxyConfig
}

func (e TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.Config.Enabled || !e.Config.IsTrusted(r.RemoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" && e.Config.Enabled {
			slog.Warn("untrusted proxy attempting to set X-Forwarded-For",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff))
		}
		return hostOf(r.RemoteAddr)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String(), nil
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String(), nil
	}
	return hostOf(r.RemoteAddr)
}

// NewIPExtractor picks the extractor matching cfg.
func NewIPExtractor(cfg TrustedProxyConfig) IPExtractor {
	if cfg.Enabled {
		return TrustedProxyExtractor{Config: cfg}
	}
	return RemoteAddrExtractor{}
}

// hostOf strips the port of "host:port"; bare IPs pass through.
func hostOf(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err == nil {
		return host, nil
	}
	if ip := net.ParseIP(strings.Trim(addr, "[]")); ip != nil {
		return ip.String(), nil
	}
	return "", fmt.Errorf("invalid address format: %s", addr)
}
