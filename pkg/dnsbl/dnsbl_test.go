package dnsbl_test

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eghojansu/stick/pkg/dnsbl"
)

// fakeResolver answers from a fixed table; unknown names are NXDOMAIN.
type fakeResolver struct {
	answers map[string]error
	mu      sync.Mutex
	asked   []string
}

func (f *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	f.mu.Lock()
	f.asked = append(f.asked, host)
	f.mu.Unlock()

	err, ok := f.answers[host]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	if err != nil {
		return nil, err
	}
	return []string{"127.0.0.2"}, nil
}

// --- Query ---

func TestQuery(t *testing.T) {
	t.Parallel()

	require.Equal(t, "4.3.2.1.bl.test", dnsbl.Query(netip.MustParseAddr("1.2.3.4"), "bl.test"))
}

// --- Listed ---

func TestListed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("first listing zone in order wins", func(t *testing.T) {
		t.Parallel()

		r := &fakeResolver{answers: map[string]error{
			"2.0.0.127.b.test": nil,
			"2.0.0.127.c.test": nil,
		}}
		c := dnsbl.New([]string{"a.test", " B.test. ", "", "c.test"}, dnsbl.WithResolver(r))
		require.Equal(t, []string{"a.test", "b.test", "c.test"}, c.Zones())

		zone, err := c.Listed(ctx, "127.0.0.2")
		require.NoError(t, err)
		require.Equal(t, "b.test", zone)
		require.Len(t, r.asked, 3)
	})

	t.Run("not listed", func(t *testing.T) {
		t.Parallel()

		c := dnsbl.New([]string{"a.test"}, dnsbl.WithResolver(&fakeResolver{}))
		zone, err := c.Listed(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.Empty(t, zone)
	})

	t.Run("lookup failure is reported but not a listing", func(t *testing.T) {
		t.Parallel()

		r := &fakeResolver{answers: map[string]error{
			"1.0.0.10.a.test": errors.New("timeout"),
		}}
		c := dnsbl.New([]string{"a.test"}, dnsbl.WithResolver(r))

		zone, err := c.Listed(ctx, "10.0.0.1")
		require.ErrorIs(t, err, dnsbl.ErrLookupFailed)
		require.Empty(t, zone)
	})

	t.Run("ipv6 and mapped addresses", func(t *testing.T) {
		t.Parallel()

		r := &fakeResolver{answers: map[string]error{"2.0.0.127.a.test": nil}}
		c := dnsbl.New([]string{"a.test"}, dnsbl.WithResolver(r))

		zone, err := c.Listed(ctx, "::1")
		require.NoError(t, err)
		require.Empty(t, zone)

		zone, err = c.Listed(ctx, "::ffff:127.0.0.2")
		require.NoError(t, err)
		require.Equal(t, "a.test", zone)
	})

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()

		_, err := dnsbl.New([]string{"a.test"}).Listed(ctx, "not-an-ip")
		require.ErrorIs(t, err, dnsbl.ErrInvalidIP)
	})
}
