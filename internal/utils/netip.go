package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP resolves the address the request came from.
// With trustProxy it prefers CF-Connecting-IP, then the left-most
// X-Forwarded-For entry, then X-Real-IP; otherwise only RemoteAddr counts.
// Enable trustProxy only when the server is reachable solely through that proxy.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		candidates := []string{
			r.Header.Get("CF-Connecting-IP"),
			firstForwardedFor(r.Header.Get("X-Forwarded-For")),
			r.Header.Get("X-Real-IP"),
		}
		for _, c := range candidates {
			if ip := hostNoPort(c); ip != "" {
				return ip
			}
		}
	}
	return hostNoPort(r.RemoteAddr)
}

// hostNoPort returns the host part of "ip:port", "[v6]:port" or "ip".
func hostNoPort(s string) string {
	s = strings.TrimSpace(s)
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return s
}

func firstForwardedFor(xff string) string {
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}

// IPMatcher holds the allow-list of single addresses and prefixes.
type IPMatcher struct {
	prefixes []netip.Prefix
}

// NewIPMatcher parses entries such as "10.0.0.0/8" or "192.168.1.10".
// Unparsable entries are skipped.
func NewIPMatcher(list []string) *IPMatcher {
	m := &IPMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(s); err == nil {
			addr = addr.Unmap()
			m.prefixes = append(m.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return m
}

func (m *IPMatcher) IsEmpty() bool { return len(m.prefixes) == 0 }

// Len is the number of usable rules.
func (m *IPMatcher) Len() int { return len(m.prefixes) }

// Allow reports whether ip falls inside any rule. IPv4-mapped IPv6
// addresses match their IPv4 rules.
func (m *IPMatcher) Allow(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range m.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
