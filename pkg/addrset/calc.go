package addrset

import "github.com/nrescobar/sentryrules/pkg/addrset/payload"

// Relation is the seven-valued outcome of comparing two intervals (spec.md
// §4.3). Modeled as a tagged variant with a String method rather than an
// integer return code, per spec.md §9.
type Relation int

// Relation values. The comment on each names the condition under which
// cmp(a, b) returns it.
const (
	// RelEQ: a.Lo == b.Lo and a.Hi == b.Hi.
	RelEQ Relation = iota
	// RelLT: a.Hi < b.Lo.
	RelLT
	// RelGT: a.Lo > b.Hi.
	RelGT
	// RelES: a is inside b (or shares one edge), b strictly bigger.
	RelES
	// RelEB: b is inside a (or shares one edge), a strictly bigger.
	RelEB
	// RelLE: a overlaps b on the left (a.Lo < b.Lo <= a.Hi < b.Hi).
	RelLE
	// RelGE: a overlaps b on the right (b.Lo < a.Lo <= b.Hi < a.Hi).
	RelGE
	// RelER: different families -- comparison error.
	RelER
)

// String implements fmt.Stringer.
func (r Relation) String() string {
	switch r {
	case RelEQ:
		return "EQ"
	case RelLT:
		return "LT"
	case RelGT:
		return "GT"
	case RelES:
		return "ES"
	case RelEB:
		return "EB"
	case RelLE:
		return "LE"
	case RelGE:
		return "GE"
	default:
		return "ER"
	}
}

// cmp computes the relation of a to b per spec.md §4.3. Note that cmp is
// non-symmetric: cmp(a,b) and cmp(b,a) differ in the overlap (LE/GE) and
// enclosure (ES/EB) cases, as the spec requires.
func cmp(a, b Interval) Relation {
	if a.Family != b.Family {
		return RelER
	}
	loCmp, _ := Compare(a.Lo, b.Lo)
	hiCmp, _ := Compare(a.Hi, b.Hi)

	if loCmp == 0 && hiCmp == 0 {
		return RelEQ
	}

	ahiLoLo, _ := Compare(a.Hi, b.Lo)
	if ahiLoLo < 0 {
		return RelLT
	}
	aloHiHi, _ := Compare(a.Lo, b.Hi)
	if aloHiHi > 0 {
		return RelGT
	}

	// a inside (or edge-sharing with) b, b strictly bigger.
	if loCmp >= 0 && hiCmp <= 0 {
		return RelES
	}
	// b inside (or edge-sharing with) a, a strictly bigger.
	if loCmp <= 0 && hiCmp >= 0 {
		return RelEB
	}
	if loCmp < 0 {
		// a.Lo < b.Lo <= a.Hi < b.Hi
		return RelLE
	}
	// b.Lo < a.Lo <= b.Hi < a.Hi
	return RelGE
}

// cut splits two overlapping intervals a, b into up to three disjoint
// pieces whose union equals a ∪ b, per spec.md §4.3. It must only be
// called when cmp(a, b) is one of ES, EB, LE, GE; other relations are not
// permitted (the caller handles LT/GT/EQ directly in the insertion
// protocol). Payload propagation uses strat to merge, copy and release the
// two input payloads; a and b themselves are treated as read-only sources
// and are never mutated.
func cut(a, b Interval, strat payload.Strategy) ([]Interval, error) {
	switch cmp(a, b) {
	case RelES:
		return cutContained(b, a, strat), nil
	case RelEB:
		return cutContained(a, b, strat), nil
	case RelLE:
		return cutOverlapLeft(a, b, strat), nil
	case RelGE:
		return cutOverlapLeft(b, a, strat), nil
	default:
		return nil, newError(FamilyMismatch, "cut called on non-overlapping or equal intervals")
	}
}

// cutContained handles the EB case: inner is fully inside outer (sharing
// at most one edge). Produces up to three pieces:
//
//	outer.Lo .. pred(inner.Lo)   (outer-only payload)
//	inner.Lo .. inner.Hi         (merged payload)
//	succ(inner.Hi) .. outer.Hi   (outer-only payload)
//
// A piece that would be empty (inner shares an edge with outer) is not
// produced.
func cutContained(outer, inner Interval, strat payload.Strategy) []Interval {
	var out []Interval

	loCmp, _ := Compare(outer.Lo, inner.Lo)
	if loCmp < 0 {
		p, ok := pred(inner.Lo)
		if ok {
			out = append(out, Interval{
				Family:  outer.Family,
				Lo:      outer.Lo,
				Hi:      p,
				Payload: strat.Copy(outer.Payload),
				Flags:   copyFlag(outer.Flags),
			})
		}
	}

	out = append(out, Interval{
		Family:  inner.Family,
		Lo:      inner.Lo,
		Hi:      inner.Hi,
		Payload: strat.Merge(outer.Payload, inner.Payload),
	})

	hiCmp, _ := Compare(outer.Hi, inner.Hi)
	if hiCmp > 0 {
		s, ok := succ(inner.Hi)
		if ok {
			out = append(out, Interval{
				Family:  outer.Family,
				Lo:      s,
				Hi:      outer.Hi,
				Payload: strat.Copy(outer.Payload),
				Flags:   copyFlag(outer.Flags),
			})
		}
	}
	return out
}

// cutOverlapLeft handles the LE case: a.Lo < b.Lo <= a.Hi < b.Hi. Produces:
//
//	a.Lo .. pred(b.Lo)       (a-only payload)
//	b.Lo .. a.Hi             (merged payload)
//	succ(a.Hi) .. b.Hi       (b-only payload)
func cutOverlapLeft(a, b Interval, strat payload.Strategy) []Interval {
	// cmp(a, b) == RelLE guarantees a.Lo < b.Lo <= a.Hi < b.Hi strictly,
	// so pred(b.Lo) and succ(a.Hi) always succeed and no piece collapses.
	predBLo, _ := pred(b.Lo)
	succAHi, _ := succ(a.Hi)

	return []Interval{
		{
			Family:  a.Family,
			Lo:      a.Lo,
			Hi:      predBLo,
			Payload: strat.Copy(a.Payload),
			Flags:   copyFlag(a.Flags),
		},
		{
			Family:  a.Family,
			Lo:      b.Lo,
			Hi:      a.Hi,
			Payload: strat.Merge(a.Payload, b.Payload),
		},
		{
			Family:  b.Family,
			Lo:      succAHi,
			Hi:      b.Hi,
			Payload: strat.Copy(b.Payload),
			Flags:   copyFlag(b.Flags),
		},
	}
}

// copyFlag marks a split-off piece as carrying a copied (not exclusively
// owned) payload, so release does not double-free it.
func copyFlag(f Flags) Flags {
	return f | FlagSigGroupCopy | FlagPortsCopy
}

// cutNot returns up to two intervals that together cover the complement of
// a within its family's full address space, per spec.md §4.3
// "Cut-under-negation". If a covers the entire space (a.Lo == 0 and a.Hi ==
// max), that is a hard error: negation of the whole space is meaningless.
func cutNot(a Interval) ([]Interval, error) {
	atZero := isZero(a.Lo)
	atMax := isMax(a.Hi)
	if atZero && atMax {
		return nil, newError(FullNegation, "cannot negate the entire %s address space", a.Family)
	}

	var out []Interval
	if !atZero {
		if p, ok := pred(a.Lo); ok {
			out = append(out, Interval{Family: a.Family, Lo: MinValue(a.Family), Hi: p})
		}
	}
	if !atMax {
		if s, ok := succ(a.Hi); ok {
			out = append(out, Interval{Family: a.Family, Lo: s, Hi: MaxValue(a.Family)})
		}
	}
	return out, nil
}
