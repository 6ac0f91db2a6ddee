// Package dnsbl checks IPv4 addresses against DNS-based blocklists.
//
// An address a.b.c.d is listed by a zone when d.c.b.a.<zone> resolves:
//
//	checker := dnsbl.New([]string{"zen.spamhaus.org", "bl.spamcop.net"})
//	zone, err := checker.Listed(ctx, "127.0.0.2")
//	if zone != "" {
//	    // blocked by zone
//	}
//
// Zones are queried concurrently; the first listing zone in configuration
// order is reported. Lookup failures other than "no such host" are joined
// into the returned error and do not count as a listing.
//
// Error values:
//
//   - ErrInvalidIP: the address cannot be parsed
//   - ErrLookupFailed: a DNS query failed for a reason other than NXDOMAIN
package dnsbl
