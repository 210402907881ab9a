package util

import (
	"fmt"
	"net"
	"strings"

	"github.com/robgibbons/express-unchained/models"
)

// ValidateTrustedHeadersAndProxies warns about forwarding configurations
// that would be silently ignored at request time.
func ValidateTrustedHeadersAndProxies(logger models.Logger, trustedHeaders, trustedProxies []string) {
	if len(trustedHeaders) > 0 && len(trustedProxies) == 0 {
		logger.Warn(
			"Security warning: trusted_headers are defined but trusted_proxies is empty. " +
				"The headers will be ignored to prevent IP spoofing. " +
				"Add your proxy IP to 'trusted_proxies' to enable header extraction.",
		)
	}
}

// ValidateTrustedProxies checks that every trusted proxy is a valid IP or
// CIDR range.
func ValidateTrustedProxies(trustedProxies []string) error {
	for _, proxy := range trustedProxies {
		if strings.Contains(proxy, "/") {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid trusted proxy CIDR %q: %w", proxy, err)
			}
			continue
		}
		if net.ParseIP(proxy) == nil {
			return fmt.Errorf("invalid trusted proxy IP %q", proxy)
		}
	}
	return nil
}
