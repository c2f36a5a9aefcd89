package addrset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nrescobar/sentryrules/pkg/addrset/payload"
)

func newTestHead(t *testing.T) *SetHead {
	t.Helper()
	return NewSetHead(payload.DefaultStrategy())
}

func insertText(t *testing.T, sh *SetHead, text string) {
	t.Helper()
	iv, err := parseAtom(text)
	require.NoError(t, err)
	require.NoError(t, sh.Insert(iv))
}

func stringsOf(ivs []Interval) []string {
	out := make([]string, len(ivs))
	for i, iv := range ivs {
		out[i] = iv.String()
	}
	return out
}

func TestSetHeadInsertDisjointSorted(t *testing.T) {
	sh := newTestHead(t)
	insertText(t, sh, "10.10.10.20")
	insertText(t, sh, "10.10.10.5")
	insertText(t, sh, "10.10.10.10-10.10.10.12")
	got := stringsOf(sh.Intervals(FamilyV4))
	require.Equal(t, []string{
		"10.10.10.5-10.10.10.5",
		"10.10.10.10-10.10.10.12",
		"10.10.10.20-10.10.10.20",
	}, got)
}

func TestSetHeadInsertMergesEqual(t *testing.T) {
	sh := newTestHead(t)
	insertText(t, sh, "10.10.10.10-10.10.10.20")
	insertText(t, sh, "10.10.10.10-10.10.10.20")
	require.Len(t, sh.Intervals(FamilyV4), 1)
}

func TestSetHeadInsertSplitsOnOverlap(t *testing.T) {
	sh := newTestHead(t)
	insertText(t, sh, "10.10.10.10-10.10.11.1")
	insertText(t, sh, "10.10.10.0/24")
	insertText(t, sh, "0.0.0.0/0")
	got := stringsOf(sh.Intervals(FamilyV4))
	require.Equal(t, []string{
		"0.0.0.0-10.10.9.255",
		"10.10.10.0-10.10.10.9",
		"10.10.10.10-10.10.10.255",
		"10.10.11.0-10.10.11.1",
		"10.10.11.2-255.255.255.255",
	}, got)
}

func TestSetHeadLookup(t *testing.T) {
	sh := newTestHead(t)
	insertText(t, sh, "10.10.10.0/24")
	addr, err := ParseValue("10.10.10.42")
	require.NoError(t, err)
	iv, ok := sh.Lookup(addr)
	require.True(t, ok)
	require.Equal(t, "10.10.10.0-10.10.10.255", iv.String())

	miss, err := ParseValue("10.10.11.1")
	require.NoError(t, err)
	_, ok = sh.Lookup(miss)
	require.False(t, ok)
}

func TestSetHeadInsertRejectedAfterFreeze(t *testing.T) {
	sh := newTestHead(t)
	insertText(t, sh, "1.2.3.4")
	sh.freeze()
	iv, _ := parseAtom("1.2.3.5")
	err := sh.Insert(iv)
	require.Error(t, err)
}

func TestSetHeadPrintIndependentOfInsertionOrder(t *testing.T) {
	sh := newTestHead(t)
	insertText(t, sh, "10.10.10.10-10.10.11.1")
	insertText(t, sh, "10.10.10.0/24")
	first := sh.Print()

	sh2 := newTestHead(t)
	insertText(t, sh2, "10.10.10.0/24")
	insertText(t, sh2, "10.10.10.10-10.10.11.1")
	second := sh2.Print()

	require.Equal(t, first, second)
}
