// Package netpolicy decides whether a client address belongs to an allowed
// network.
package netpolicy

import (
	"fmt"
	"net/netip"
	"strings"
)

// DefaultNetworks covers loopback and the private ranges used by office LANs.
var DefaultNetworks = []string{"127.0.0.1/32", "::1/128", "10.0.0.0/8", "192.168.0.0/16"}

// ParsePrefix accepts a single address or a CIDR range.
func ParsePrefix(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Prefix{}, fmt.Errorf("empty address")
	}
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func ParsePrefixes(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		p, err := ParsePrefix(v)
		if err != nil {
			return nil, fmt.Errorf("invalid network %q: %w", v, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseAddr strips an optional port and zone from a remote address.
func ParseAddr(remote string) (netip.Addr, error) {
	remote = strings.TrimSpace(remote)
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr().Unmap().WithZone(""), nil
	}
	addr, err := netip.ParseAddr(strings.Trim(remote, "[]"))
	if err != nil {
		return netip.Addr{}, err
	}
	return addr.Unmap().WithZone(""), nil
}

// Contains reports whether remote falls into one of prefixes.
func Contains(prefixes []netip.Prefix, remote string) bool {
	addr, err := ParseAddr(remote)
	if err != nil {
		return false
	}
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
