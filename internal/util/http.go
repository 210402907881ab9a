package util

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ExtractClientIP determines the client IP for a request. Forwarding
// headers are only honored when the direct peer (RemoteAddr) is one of the
// configured trusted proxies; otherwise the peer address is authoritative.
// Trusted headers are consulted in configuration order; X-Forwarded-For
// values yield their first (left-most) entry.
func ExtractClientIP(r *http.Request, trustedHeaders, trustedProxies []string) (net.IP, error) {
	peer := remoteIP(r.RemoteAddr)
	if peer == nil {
		return nil, fmt.Errorf("unparseable remote address %q", r.RemoteAddr)
	}

	if !isTrustedProxy(peer, trustedProxies) {
		return peer, nil
	}

	for _, header := range trustedHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		candidate := value
		if strings.Contains(value, ",") {
			candidate = strings.TrimSpace(strings.Split(value, ",")[0])
		}

		if ip := net.ParseIP(strings.TrimSpace(candidate)); ip != nil {
			return ip, nil
		}
	}

	return peer, nil
}

func remoteIP(remoteAddr string) net.IP {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests
		host = remoteAddr
	}
	return net.ParseIP(host)
}

func isTrustedProxy(ip net.IP, trustedProxies []string) bool {
	for _, proxy := range trustedProxies {
		if strings.Contains(proxy, "/") {
			_, cidr, err := net.ParseCIDR(proxy)
			if err != nil {
				continue
			}
			if cidr.Contains(ip) {
				return true
			}
			continue
		}
		if parsed := net.ParseIP(proxy); parsed != nil && parsed.Equal(ip) {
			return true
		}
	}
	return false
}
