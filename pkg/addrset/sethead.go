package addrset

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/nrescobar/sentryrules/pkg/addrset/payload"
)

// SetHead is a container holding three sorted, pairwise-disjoint interval
// lists -- IPv4, IPv6, and wildcard -- plus the insertion protocol that
// preserves sort+disjoint invariants under arbitrary additions (spec.md
// §3, §4.4). A SetHead is grown only through insert during compilation,
// then frozen and shared read-only across any number of lookup callers
// (spec.md §5).
type SetHead struct {
	arena arena
	v4    list
	v6    list
	any   list
	strat payload.Strategy

	frozen bool
}

// NewSetHead returns an empty SetHead using strat to merge, copy and
// release payloads attached to its intervals. A zero Strategy behaves like
// payload.DefaultStrategy().
func NewSetHead(strat payload.Strategy) *SetHead {
	sh := &SetHead{strat: strat}
	if sh.strat.Merge == nil {
		sh.strat = payload.DefaultStrategy()
	}
	sh.v4 = list{head: nilRef, tail: nilRef}
	sh.v6 = list{head: nilRef, tail: nilRef}
	sh.any = list{head: nilRef, tail: nilRef}
	return sh
}

// listFor returns the list an interval belongs to: the wildcard list for
// FlagAny intervals (which have no settled family yet), otherwise the
// family-matching list.
func (sh *SetHead) listFor(iv Interval) (*list, error) {
	if iv.Flags.Has(FlagAny) {
		return &sh.any, nil
	}
	switch iv.Family {
	case FamilyV4:
		return &sh.v4, nil
	case FamilyV6:
		return &sh.v6, nil
	default:
		return nil, newError(SyntaxError, "interval has no address family")
	}
}

// Insert adds iv to the SetHead, applying the insertion protocol of
// spec.md §4.4: scan ascending by Lo, merge on exact equality, splice on
// strict ordering, and recursively cut-and-reinsert on any overlap. It
// preserves sort order, pairwise disjointness, and payload coverage.
func (sh *SetHead) Insert(iv Interval) error {
	if sh.frozen {
		return newError(SyntaxError, "cannot insert into a frozen SetHead")
	}
	l, err := sh.listFor(iv)
	if err != nil {
		return err
	}
	return sh.insertInto(l, iv)
}

func (sh *SetHead) insertInto(l *list, x Interval) error {
	if l.empty() {
		sh.arena.insertHead(l, sh.arena.alloc(x))
		return nil
	}

	for cur := l.head; cur != nilRef; {
		c := sh.arena.get(cur)
		switch cmp(x, c.iv) {
		case RelEQ:
			c.iv.Payload = sh.strat.Merge(c.iv.Payload, x.Payload)
			c.iv.Flags |= x.Flags &^ (FlagAny | FlagNot)
			return nil

		case RelLT:
			sh.arena.insertBefore(l, cur, sh.arena.alloc(x))
			return nil

		case RelGT:
			if c.next == nilRef {
				sh.arena.appendAfter(l, cur, sh.arena.alloc(x))
				return nil
			}
			cur = c.next
			continue

		case RelES, RelEB, RelLE, RelGE:
			pieces, err := cut(c.iv, x, sh.strat)
			if err != nil {
				return err
			}
			// the cell being cut is replaced wholesale by the products of
			// the cut; the original x is dropped in favor of its split
			// pieces, which is the only choice that preserves the sort
			// and disjoint invariants (spec.md §9 open question).
			sh.arena.remove(l, cur)
			for _, p := range pieces {
				if err := sh.insertInto(l, p); err != nil {
					return err
				}
			}
			return nil

		default: // RelER
			return newError(FamilyMismatch, "cannot compare intervals of different families")
		}
	}
	// unreachable: the loop above always returns.
	return nil
}

// Lookup selects the family list matching addr and linearly scans for the
// interval that contains it, early-exiting once an interval's Lo exceeds
// addr since the list is sorted (spec.md §4.6).
func (sh *SetHead) Lookup(addr Value) (*Interval, bool) {
	var l *list
	switch addr.Family {
	case FamilyV4:
		l = &sh.v4
	case FamilyV6:
		l = &sh.v6
	default:
		return nil, false
	}
	for r := l.head; r != nilRef; {
		c := sh.arena.get(r)
		loCmp, _ := Compare(addr, c.iv.Lo)
		if loCmp < 0 {
			return nil, false
		}
		hiCmp, _ := Compare(addr, c.iv.Hi)
		if hiCmp <= 0 {
			iv := c.iv
			return &iv, true
		}
		r = c.next
	}
	return nil, false
}

// Intervals returns the sorted, disjoint interval list for the given
// family, used for printing (idempotence, spec.md §8 property 5) and by
// the HTTP API / CLI to show compiled results.
func (sh *SetHead) Intervals(f Family) []Interval {
	var l *list
	switch f {
	case FamilyV4:
		l = &sh.v4
	case FamilyV6:
		l = &sh.v6
	default:
		return nil
	}
	out := make([]Interval, 0, sh.arena.len(l))
	sh.arena.walk(l, func(iv Interval) { out = append(out, iv) })
	return out
}

// Print serializes the SetHead as the list of "lo-hi" ranges per family,
// the representation used by the idempotence property in spec.md §8.
func (sh *SetHead) Print() map[Family][]string {
	out := map[Family][]string{}
	for _, f := range []Family{FamilyV4, FamilyV6} {
		var rows []string
		for _, iv := range sh.Intervals(f) {
			rows = append(rows, iv.String())
		}
		out[f] = rows
	}
	return out
}

// Fingerprint returns a content hash of the compiled set's printed interval
// lists, stable across calls as long as the set's contents don't change
// (spec.md §8 idempotence property). Used by the HTTP API as an ETag-style
// response header and logged on compile.
func (sh *SetHead) Fingerprint() string {
	var b strings.Builder
	printed := sh.Print()
	for _, f := range []Family{FamilyV4, FamilyV6} {
		b.WriteByte(byte(f))
		for _, row := range printed[f] {
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}
	return strconv.FormatUint(xxh3.HashString(b.String()), 16)
}

// freeze marks the SetHead read-only. Called once by the parser's
// top-level Parse after the negation compiler has finished (spec.md §3
// "Set Head" lifecycle).
func (sh *SetHead) freeze() { sh.frozen = true }

// Release walks every list and releases every interval, per spec.md §5
// "Resource policy": each interval releases its payload only if it does
// not carry a copy flag.
func (sh *SetHead) Release() {
	for _, l := range []*list{&sh.v4, &sh.v6, &sh.any} {
		for r := l.head; r != nilRef; {
			c := sh.arena.get(r)
			next := c.next
			if !c.iv.Flags.Has(FlagSigGroupCopy) && !c.iv.Flags.Has(FlagPortsCopy) {
				sh.strat.Release(c.iv.Payload)
			}
			r = next
		}
	}
	sh.v4 = list{head: nilRef, tail: nilRef}
	sh.v6 = list{head: nilRef, tail: nilRef}
	sh.any = list{head: nilRef, tail: nilRef}
}
