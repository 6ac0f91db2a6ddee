package internal

import (
	"log/slog"
	"net/netip"
	"strings"

	"github.com/eghojansu/stick/pkg/dnsbl"
)

// blacklisted reports whether the client address is denied. EXEMPT
// entries win over BLACKLIST entries and DNSBL zones.
func (a *App) blacklisted(c *requestContext) bool {
	addr, err := netip.ParseAddr(c.IP())
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	if matchAddr(addr, c.hive.Strings("EXEMPT")) {
		return false
	}
	if matchAddr(addr, c.hive.Strings("BLACKLIST")) {
		a.logger.DebugContext(c, "client blacklisted", slog.String("ip", addr.String()))
		return true
	}

	zones := c.hive.Strings("DNSBL")
	if len(zones) == 0 {
		return false
	}
	zone, err := dnsbl.New(zones, dnsbl.WithResolver(a.resolver)).Listed(c, addr.String())
	if err != nil {
		a.logger.WarnContext(c, "dnsbl lookup failed", slog.String("error", err.Error()))
	}
	if zone != "" {
		a.logger.DebugContext(c, "client listed",
			slog.String("ip", addr.String()),
			slog.String("zone", zone),
		)
		return true
	}
	return false
}

// matchAddr reports whether addr equals an IP entry or falls inside a
// CIDR entry. Malformed entries are skipped.
func matchAddr(addr netip.Addr, entries []string) bool {
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if strings.Contains(e, "/") {
			if p, err := netip.ParsePrefix(e); err == nil && p.Contains(addr) {
				return true
			}
			continue
		}
		if ip, err := netip.ParseAddr(e); err == nil && ip.Unmap() == addr {
			return true
		}
	}
	return false
}
