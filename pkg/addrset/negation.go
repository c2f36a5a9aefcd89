package addrset

import "github.com/nrescobar/sentryrules/pkg/addrset/payload"

// listForFamily returns the v4 or v6 list of sh (never the wildcard list).
func (sh *SetHead) listForFamily(f Family) *list {
	switch f {
	case FamilyV4:
		return &sh.v4
	case FamilyV6:
		return &sh.v6
	default:
		return nil
	}
}

// coversFullSpace reports whether l's intervals, which are already sorted
// and pairwise disjoint, union to the entire address space of f: starting
// at the family minimum, running contiguously (no gaps between adjacent
// intervals) through the family maximum.
func coversFullSpace(a *arena, l *list, f Family) bool {
	if l.empty() {
		return false
	}
	first := a.get(l.head).iv
	if !isZero(first.Lo) {
		return false
	}
	prevHi := first.Hi
	for r := a.get(l.head).next; r != nilRef; r = a.get(r).next {
		iv := a.get(r).iv
		s, ok := succ(prevHi)
		if !ok {
			return false
		}
		c, _ := Compare(s, iv.Lo)
		if c != 0 {
			return false
		}
		prevHi = iv.Hi
	}
	return isMax(prevHi)
}

// mergeNegation implements spec.md §4.5's negation compiler: it merges
// shadow into positive in place. shadow itself is only read, never modified;
// Parse releases it afterwards. shadow's wildcard list is always empty --
// "!any" is rejected at parse time, so no negated interval is ever
// ANY-flagged.
func mergeNegation(positive, shadow *SetHead, strat payload.Strategy) error {
	// Step 1: for each family, if positive is empty while shadow is not,
	// seed positive with the family's full range -- unless shadow already
	// covers the full space, which is a hard error (you cannot negate the
	// entire address space of a family).
	for _, fam := range []Family{FamilyV4, FamilyV6} {
		posList := positive.listForFamily(fam)
		shList := shadow.listForFamily(fam)
		if posList.empty() && !shList.empty() {
			if coversFullSpace(&shadow.arena, shList, fam) {
				return newError(FullNegation, "negated coverage spans the entire %s address space", fam)
			}
			full := Interval{Family: fam, Lo: MinValue(fam), Hi: MaxValue(fam)}
			if err := positive.insertInto(posList, full); err != nil {
				return err
			}
		}
	}

	// The ANY sentinel expands to both families simultaneously (spec.md
	// §4.5). It can only ever appear in positive.any: a leaf reached under
	// negate=true rejects ANY outright ("!any" is a syntax error), so
	// shadow.any is always empty.
	if err := materializeAny(positive); err != nil {
		return err
	}

	for _, fam := range []Family{FamilyV4, FamilyV6} {
		shList := shadow.listForFamily(fam)
		var shadowIntervals []Interval
		shadow.arena.walk(shList, func(iv Interval) { shadowIntervals = append(shadowIntervals, iv) })

		// Step 2: copy each shadow interval into positive via the
		// standard insertion protocol. This splits positive at every
		// shadow boundary.
		posList := positive.listForFamily(fam)
		for _, s := range shadowIntervals {
			cp := s
			cp.Payload = strat.Copy(s.Payload)
			cp.Flags = copyFlag(s.Flags)
			if err := positive.insertInto(posList, cp); err != nil {
				return err
			}
		}

		// Step 3: delete every positive interval p for which some shadow
		// interval s satisfies cmp(s, p) in {EQ, EB} -- i.e. s covers p.
		// After step 2, every overlap has already been split into
		// EQ/EB relationships, so ES, LE, GE cannot occur here.
		var toRemove []cellRef
		for r := posList.head; r != nilRef; r = positive.arena.get(r).next {
			c := positive.arena.get(r)
			for _, s := range shadowIntervals {
				rel := cmp(s, c.iv)
				if rel == RelEQ || rel == RelEB {
					toRemove = append(toRemove, r)
					break
				}
			}
		}
		for _, r := range toRemove {
			c := positive.arena.get(r)
			if !c.iv.Flags.Has(FlagSigGroupCopy) && !c.iv.Flags.Has(FlagPortsCopy) {
				strat.Release(c.iv.Payload)
			}
			positive.arena.remove(posList, r)
		}
	}

	// Step 4: if the resulting positive is empty for both families, every
	// positive atom the user wrote was negated away.
	if positive.v4.empty() && positive.v6.empty() {
		return newError(EmptyAfterNegation, "negation removed all positive coverage")
	}
	return nil
}

// materializeAny moves the at-most-one ANY-tagged interval in positive.any
// into both the v4 and v6 lists as a full-range interval, then discards
// the wildcard entry.
func materializeAny(positive *SetHead) error {
	if positive.any.empty() {
		return nil
	}
	r := positive.any.head
	src := positive.arena.get(r).iv

	for _, fam := range []Family{FamilyV4, FamilyV6} {
		full := Interval{
			Family:  fam,
			Lo:      MinValue(fam),
			Hi:      MaxValue(fam),
			Payload: positive.strat.Copy(src.Payload),
			Flags:   copyFlag(src.Flags &^ FlagAny),
		}
		if err := positive.insertInto(positive.listForFamily(fam), full); err != nil {
			return err
		}
	}

	if !src.Flags.Has(FlagSigGroupCopy) && !src.Flags.Has(FlagPortsCopy) {
		positive.strat.Release(src.Payload)
	}
	positive.arena.remove(&positive.any, r)
	return nil
}
