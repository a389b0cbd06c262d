package model

import "strings"

// AddressCanon applies the single canonical address normalization used for
// every membership and voter-set comparison. The ledger's expected casing is
// configuration, not something to guess per call site.
type AddressCanon struct {
	Lowercase bool
}

// Canon returns the canonical form of an address.
func (c AddressCanon) Canon(addr string) string {
	addr = strings.TrimSpace(addr)
	if c.Lowercase {
		return strings.ToLower(addr)
	}
	return addr
}

// Equal reports whether two addresses are the same account.
func (c AddressCanon) Equal(a, b string) bool {
	return c.Canon(a) == c.Canon(b)
}

// Contains reports whether the address set contains the given address.
func (c AddressCanon) Contains(set []string, addr string) bool {
	want := c.Canon(addr)
	for _, a := range set {
		if c.Canon(a) == want {
			return true
		}
	}
	return false
}
