package addrset

import (
	"strings"

	"github.com/nrescobar/sentryrules/pkg/addrset/payload"
)

// Flags is a bitset of interval modifiers. ANY and NOT are transient
// parse-time markers; SIGGROUP_COPY, PORTS_COPY and HAS_PORT describe how
// the opaque payload attached to an interval should be released (see
// payload.Strategy). Modeled as a tagged bitset rather than a handful of
// bool fields, per the teacher's IPVersion bitmask convention in
// pkg/types.
type Flags uint8

// Interval flag bits.
const (
	// FlagAny marks an interval produced by the "any" wildcard. It is
	// eliminated during compilation: it always expands to the full range
	// of both families (spec.md §4.5).
	FlagAny Flags = 1 << iota
	// FlagNot marks an interval still awaiting negation. No interval in a
	// compiled SetHead ever carries this flag.
	FlagNot
	// FlagSigGroupCopy marks that Payload.SigIDs is a shared reference
	// rather than an exclusively owned slice; Release must not free it
	// twice.
	FlagSigGroupCopy
	// FlagPortsCopy marks that Payload.PortGroup is a shared reference.
	FlagPortsCopy
	// FlagHasPort marks that the interval's payload carries a port
	// sub-structure (opaque to this package; see spec.md §1 "the
	// parallel port-set algebra").
	FlagHasPort
)

// Has reports whether f contains bit.
func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Interval is a fully closed range [Lo, Hi] over one numeric domain, the
// atomic unit of the address algebra (spec.md §3).
type Interval struct {
	Family  Family
	Lo, Hi  Value
	Flags   Flags
	Payload *payload.Payload
}

// Copy returns a shallow copy of iv with the payload left untouched; the
// caller is responsible for invoking the applicable Strategy.Copy if the
// payload must become a second reference (spec.md §3 "Ownership").
func (iv Interval) Copy() Interval {
	return iv
}

// Contains reports whether addr falls within [iv.Lo, iv.Hi]. It returns an
// error if addr's family does not match the interval's.
func (iv Interval) Contains(addr Value) (bool, error) {
	loCmp, err := Compare(addr, iv.Lo)
	if err != nil {
		return false, err
	}
	hiCmp, err := Compare(addr, iv.Hi)
	if err != nil {
		return false, err
	}
	return loCmp >= 0 && hiCmp <= 0, nil
}

// String renders the interval as "lo-hi", the format used throughout
// spec.md §8's end-to-end scenarios.
func (iv Interval) String() string {
	return iv.Lo.String() + "-" + iv.Hi.String()
}

// parseAtom parses a single address-expression leaf per the grammar table
// in spec.md §4.2. It never handles "!", "[...]" or "$name" -- those are
// the parser's job (parser.go).
func parseAtom(text string) (Interval, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Interval{}, newError(SyntaxError, "empty address atom")
	}
	if low := strings.ToLower(text); low == "any" {
		return Interval{Flags: FlagAny}, nil
	}

	if idx := strings.IndexByte(text, '/'); idx >= 0 {
		return parseCIDRAtom(text[:idx], text[idx+1:])
	}
	if strings.Contains(text, "-") {
		if iv, err := tryParseRangeAtom(text); err == nil {
			return iv, nil
		} else if isRangeErr(err) {
			return Interval{}, err
		}
	}
	return parseHostAtom(text)
}

func isRangeErr(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == ReversedRange
}

// tryParseRangeAtom attempts to split text on the range-separating "-" and
// parse both sides as addresses of the same family. IPv6 addresses may
// themselves be written without "-", so a v6 range is recognized only when
// splitting at some "-" yields two independently parseable v6 addresses.
func tryParseRangeAtom(text string) (Interval, error) {
	candidates := splitCandidates(text)
	var lastErr error
	for _, idx := range candidates {
		loStr, hiStr := text[:idx], text[idx+1:]
		lo, err := ParseValue(loStr)
		if err != nil {
			lastErr = err
			continue
		}
		hi, err := ParseValue(hiStr)
		if err != nil {
			lastErr = err
			continue
		}
		if lo.Family != hi.Family {
			lastErr = newError(InvalidMask, "mismatched families in range %q", text)
			continue
		}
		cmp, _ := Compare(lo, hi)
		if cmp > 0 {
			return Interval{}, newError(ReversedRange, "reversed range: %s > %s", loStr, hiStr)
		}
		return Interval{Family: lo.Family, Lo: lo, Hi: hi}, nil
	}
	if lastErr == nil {
		lastErr = newError(InvalidMask, "not a valid range: %q", text)
	}
	return Interval{}, lastErr
}

// splitCandidates returns every byte offset of '-' in text, since a v6
// range's separator cannot be distinguished from a hex digit boundary by
// position alone.
func splitCandidates(text string) []int {
	var out []int
	for i := 0; i < len(text); i++ {
		if text[i] == '-' {
			out = append(out, i)
		}
	}
	return out
}

func parseHostAtom(text string) (Interval, error) {
	v, err := ParseValue(text)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Family: v.Family, Lo: v, Hi: v}, nil
}

func parseCIDRAtom(addrStr, maskStr string) (Interval, error) {
	addr, err := ParseValue(addrStr)
	if err != nil {
		return Interval{}, err
	}
	var prefix int
	if strings.Contains(maskStr, ".") && addr.Family == FamilyV4 {
		prefix, err = dottedQuadMaskToPrefix(maskStr)
	} else {
		prefix, err = parsePrefixLen(maskStr)
	}
	if err != nil {
		return Interval{}, err
	}
	mask, err := maskFromPrefix(addr.Family, prefix)
	if err != nil {
		return Interval{}, err
	}
	lo, hi := applyMask(addr, mask)
	return Interval{Family: addr.Family, Lo: lo, Hi: hi}, nil
}
