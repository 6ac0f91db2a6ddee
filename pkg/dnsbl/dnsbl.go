package dnsbl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidIP    = errors.New("dnsbl: invalid ip address")
	ErrLookupFailed = errors.New("dnsbl: lookup failed")
)

// Resolver is the part of *net.Resolver the checker needs.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithResolver replaces the default resolver.
func WithResolver(r Resolver) Option {
	return func(c *Checker) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithTimeout bounds each Listed call. Default: 2 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.timeout = d
	}
}

// Checker queries a fixed set of zones.
type Checker struct {
	resolver Resolver
	zones    []string
	timeout  time.Duration
}

// New creates a checker for zones. Blank entries are ignored.
func New(zones []string, opts ...Option) *Checker {
	c := &Checker{resolver: net.DefaultResolver, timeout: 2 * time.Second}
	for _, z := range zones {
		if z = strings.Trim(strings.TrimSpace(z), "."); z != "" {
			c.zones = append(c.zones, strings.ToLower(z))
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Zones returns the configured zones.
func (c *Checker) Zones() []string {
	return c.zones
}

// Listed returns the first zone listing ip, or "" when none does.
// IPv6 addresses are never listed.
func (c *Checker) Listed(ctx context.Context, ip string) (string, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}
	addr = addr.Unmap()
	if !addr.Is4() || len(c.zones) == 0 {
		return "", nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	hits := make([]bool, len(c.zones))
	errs := make([]error, len(c.zones))

	g, gctx := errgroup.WithContext(ctx)
	for i, zone := range c.zones {
		g.Go(func() error {
			_, err := c.resolver.LookupHost(gctx, Query(addr, zone))
			if err == nil {
				hits[i] = true
				return nil
			}
			var dnsErr *net.DNSError
			if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
				return nil
			}
			errs[i] = fmt.Errorf("%w: %s: %w", ErrLookupFailed, zone, err)
			return nil
		})
	}
	_ = g.Wait()

	for i, hit := range hits {
		if hit {
			return c.zones[i], nil
		}
	}
	return "", errors.Join(errs...)
}

// Query builds the lookup name for addr in zone.
func Query(addr netip.Addr, zone string) string {
	b := addr.As4()
	var sb strings.Builder
	for i := 3; i >= 0; i-- {
		sb.WriteString(strconv.Itoa(int(b[i])))
		sb.WriteByte('.')
	}
	sb.WriteString(zone)
	return sb.String()
}
