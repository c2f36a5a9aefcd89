// Package addrset implements the address-set algebra of the rule engine:
// compiling a nested address expression (lists, negation, CIDR blocks,
// ranges, the "any" wildcard, and variables) into a sorted, disjoint list of
// half-open-free intervals suitable for fast lookup during packet
// classification.
package addrset

import (
	"math/bits"
	"net"
	"strconv"
	"strings"
)

// Family identifies the numeric domain an address value belongs to.
type Family uint8

// Supported address families.
const (
	FamilyNone Family = iota
	FamilyV4
	FamilyV6
)

// String implements fmt.Stringer.
func (f Family) String() string {
	switch f {
	case FamilyV4:
		return "v4"
	case FamilyV6:
		return "v6"
	default:
		return "none"
	}
}

// Value is a numeric address value over one family. V4 values use Words[0]
// only; V6 values use all four words, most-significant-first. Both are kept
// in host order once parsed -- comparison never has to re-decode network
// byte order, mirroring the asUint/toUint split in gaissmai/go-inet's
// inet/math.go.
type Value struct {
	Family Family
	Words  [4]uint32
}

// MinValue and MaxValue return the bottom and top of a family's address
// space.
func MinValue(f Family) Value { return Value{Family: f} }

// MaxValue returns the all-ones value for the given family.
func MaxValue(f Family) Value {
	v := Value{Family: f}
	switch f {
	case FamilyV4:
		v.Words[0] = 0xffffffff
	case FamilyV6:
		for i := range v.Words {
			v.Words[i] = 0xffffffff
		}
	}
	return v
}

// wordCount returns how many of the four words are significant for f.
func (f Family) wordCount() int {
	switch f {
	case FamilyV4:
		return 1
	case FamilyV6:
		return 4
	default:
		return 0
	}
}

// Compare returns -1, 0 or 1 if a is less than, equal to or greater than b.
// It returns an error (FamilyMismatch) if a and b belong to different
// families.
func Compare(a, b Value) (int, error) {
	if a.Family != b.Family {
		return 0, newError(FamilyMismatch, "cannot compare %s address with %s address", a.Family, b.Family)
	}
	for i := 0; i < a.Family.wordCount(); i++ {
		if a.Words[i] < b.Words[i] {
			return -1, nil
		}
		if a.Words[i] > b.Words[i] {
			return 1, nil
		}
	}
	return 0, nil
}

// Less reports whether a < b; it panics on a family mismatch since it is
// only ever called internally after family checks have already happened.
func Less(a, b Value) bool {
	c, err := Compare(a, b)
	if err != nil {
		panic(err)
	}
	return c < 0
}

// succ returns the successor of v, saturating at the family's maximum. The
// boolean result is false if v was already at the maximum -- callers treat
// that as a signal that a boundary was hit (relevant for negation at the
// top of the address space).
func succ(v Value) (Value, bool) {
	n := v.Family.wordCount()
	out := v
	var carry uint32 = 1
	for i := n - 1; i >= 0 && carry != 0; i-- {
		out.Words[i], carry = bits.Add32(v.Words[i], carry, 0)
	}
	if carry != 0 {
		return v, false
	}
	return out, true
}

// pred returns the predecessor of v, saturating at zero. The boolean result
// is false if v was already zero.
func pred(v Value) (Value, bool) {
	n := v.Family.wordCount()
	out := v
	var borrow uint32 = 1
	for i := n - 1; i >= 0 && borrow != 0; i-- {
		out.Words[i], borrow = bits.Sub32(v.Words[i], borrow, 0)
	}
	if borrow != 0 {
		return v, false
	}
	return out, true
}

// isZero reports whether v is the bottom of its family's address space.
func isZero(v Value) bool {
	for i := 0; i < v.Family.wordCount(); i++ {
		if v.Words[i] != 0 {
			return false
		}
	}
	return true
}

// isMax reports whether v is the top of its family's address space.
func isMax(v Value) bool {
	switch v.Family {
	case FamilyV4:
		return v.Words[0] == 0xffffffff
	case FamilyV6:
		for _, w := range v.Words {
			if w != 0xffffffff {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// parseV4 parses a dotted-quad IPv4 address into a Value.
func parseV4(s string) (Value, error) {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil || strings.Contains(s, ":") {
		return Value{}, newError(InvalidMask, "not a valid IPv4 address: %q", s)
	}
	b := ip.To4()
	return Value{Family: FamilyV4, Words: [4]uint32{
		uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]),
	}}, nil
}

// parseV6 parses a hex-colon IPv6 address into a Value.
func parseV6(s string) (Value, error) {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() != nil {
		return Value{}, newError(InvalidMask, "not a valid IPv6 address: %q", s)
	}
	b := ip.To16()
	var v Value
	v.Family = FamilyV6
	for i := 0; i < 4; i++ {
		v.Words[i] = uint32(b[4*i])<<24 | uint32(b[4*i+1])<<16 | uint32(b[4*i+2])<<8 | uint32(b[4*i+3])
	}
	return v, nil
}

// maskFromPrefix builds the "all ones then all zeros" mask for a prefix
// length within a family.
func maskFromPrefix(f Family, prefix int) (Value, error) {
	maxPrefix := f.wordCount() * 32
	if prefix < 0 || prefix > maxPrefix {
		return Value{}, newError(InvalidMask, "prefix length %d out of range [0,%d] for %s", prefix, maxPrefix, f)
	}
	var m Value
	m.Family = f
	remaining := prefix
	for i := 0; i < f.wordCount(); i++ {
		switch {
		case remaining >= 32:
			m.Words[i] = 0xffffffff
			remaining -= 32
		case remaining <= 0:
			m.Words[i] = 0
		default:
			m.Words[i] = ^uint32(0) << uint(32-remaining)
			remaining = 0
		}
	}
	return m, nil
}

// dottedQuadMaskToPrefix converts a V4 dotted-quad mask (e.g. 255.255.255.0)
// into a prefix length, requiring the mask bits to be contiguous ones
// followed by contiguous zeros.
func dottedQuadMaskToPrefix(maskStr string) (int, error) {
	m, err := parseV4(maskStr)
	if err != nil {
		return 0, newError(InvalidMask, "invalid dotted-quad mask %q", maskStr)
	}
	word := m.Words[0]
	ones := bits.LeadingZeros32(^word)
	// a contiguous mask, once the leading run of ones is stripped, must be
	// all zero; a non-contiguous mask (e.g. 255.0.255.0) fails this check.
	rebuilt := ^uint32(0) << uint(32-ones)
	if rebuilt != word {
		return 0, newError(InvalidMask, "non-contiguous dotted-quad mask %q", maskStr)
	}
	return ones, nil
}

// applyMask computes (lo, hi) = (addr & mask, addr | ^mask).
func applyMask(addr, mask Value) (lo, hi Value) {
	lo.Family, hi.Family = addr.Family, addr.Family
	for i := 0; i < addr.Family.wordCount(); i++ {
		lo.Words[i] = addr.Words[i] & mask.Words[i]
		hi.Words[i] = addr.Words[i] | ^mask.Words[i]
	}
	return lo, hi
}

// String renders v in its family's textual form.
func (v Value) String() string {
	switch v.Family {
	case FamilyV4:
		b := make(net.IP, 4)
		b[0] = byte(v.Words[0] >> 24)
		b[1] = byte(v.Words[0] >> 16)
		b[2] = byte(v.Words[0] >> 8)
		b[3] = byte(v.Words[0])
		return b.String()
	case FamilyV6:
		b := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			b[4*i] = byte(v.Words[i] >> 24)
			b[4*i+1] = byte(v.Words[i] >> 16)
			b[4*i+2] = byte(v.Words[i] >> 8)
			b[4*i+3] = byte(v.Words[i])
		}
		return b.String()
	default:
		return "<none>"
	}
}

// ParseValue parses a single textual address (v4 or v6, auto-detected) into
// a Value, used by the HTTP API and CLI lookup commands.
func ParseValue(s string) (Value, error) {
	if strings.Contains(s, ":") {
		return parseV6(s)
	}
	return parseV4(s)
}

// parsePrefixLen parses a decimal prefix length token.
func parsePrefixLen(tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, newError(InvalidMask, "invalid prefix length %q", tok)
	}
	return n, nil
}
