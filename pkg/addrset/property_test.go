package addrset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nrescobar/sentryrules/pkg/addrset/payload"
)

// randomV4Interval returns a random closed [lo, hi] interval within the V4
// address space, with lo drawn from the lowest 2^20 addresses and widths
// below 2^16, so that random sets actually overlap each other often enough
// to exercise the cut-and-reinsert path.
func randomV4Interval(r *rand.Rand) Interval {
	lo := r.Uint32() % (1 << 20)
	width := r.Uint32() % (1 << 16)
	hi := lo + width
	if hi < lo {
		hi = 0xffffffff
	}
	return Interval{
		Family: FamilyV4,
		Lo:     Value{Family: FamilyV4, Words: [4]uint32{lo}},
		Hi:     Value{Family: FamilyV4, Words: [4]uint32{hi}},
	}
}

// assertSortedDisjoint checks that the family's interval list is sorted
// ascending by Lo and that no two intervals overlap.
func assertSortedDisjoint(t *testing.T, ivs []Interval) {
	t.Helper()
	for i := 1; i < len(ivs); i++ {
		prev, cur := ivs[i-1], ivs[i]
		hiCmp, err := Compare(prev.Hi, cur.Lo)
		require.NoError(t, err)
		require.Less(t, hiCmp, 0, "adjacent intervals %s, %s are not strictly ordered/disjoint", prev, cur)
	}
}

// assertCoverage checks that every address bounding a previously-inserted
// interval is still found by some interval in the SetHead once that
// insertion has taken effect.
func assertCoverage(t *testing.T, sh *SetHead, inserted []Interval) {
	t.Helper()
	for _, want := range inserted {
		for _, addr := range []Value{want.Lo, want.Hi} {
			_, ok := sh.Lookup(addr)
			require.True(t, ok, "address %s from inserted interval %s not covered after insertion", addr, want)
		}
	}
}

// TestSetHeadInsertPropertyRandom generates random sets of random V4
// intervals, inserts them into a SetHead in random order, and verifies
// sortedness, disjointness and coverage preservation after every single
// insertion.
func TestSetHeadInsertPropertyRandom(t *testing.T) {
	const (
		rounds      = 50
		maxSetSize  = 40
		randomSeed0 = 1
	)

	for round := 0; round < rounds; round++ {
		r := rand.New(rand.NewSource(int64(randomSeed0 + round)))

		n := 1 + r.Intn(maxSetSize)
		ivs := make([]Interval, n)
		for i := range ivs {
			ivs[i] = randomV4Interval(r)
		}
		r.Shuffle(n, func(i, j int) { ivs[i], ivs[j] = ivs[j], ivs[i] })

		sh := NewSetHead(payload.DefaultStrategy())
		var inserted []Interval
		for i, iv := range ivs {
			require.NoError(t, sh.Insert(iv), "round %d insert %d of %s", round, i, iv)
			inserted = append(inserted, iv)

			got := sh.Intervals(FamilyV4)
			assertSortedDisjoint(t, got)
			assertCoverage(t, sh, inserted)
		}
		sh.Release()
	}
}
