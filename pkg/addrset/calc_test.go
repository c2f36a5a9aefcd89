package addrset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nrescobar/sentryrules/pkg/addrset/payload"
)

func mustIV(t *testing.T, s string) Interval {
	t.Helper()
	iv, err := parseAtom(s)
	require.NoError(t, err)
	return iv
}

func TestCmpRelations(t *testing.T) {
	tests := []struct {
		a, b string
		want Relation
	}{
		{"1.2.3.4-1.2.3.4", "1.2.3.4-1.2.3.4", RelEQ},
		{"1.2.3.0-1.2.3.4", "1.2.3.10-1.2.3.20", RelLT},
		{"1.2.3.10-1.2.3.20", "1.2.3.0-1.2.3.4", RelGT},
		{"1.2.3.4-1.2.3.4", "1.2.3.0-1.2.3.255", RelES},
		{"1.2.3.0-1.2.3.255", "1.2.3.4-1.2.3.4", RelEB},
		{"1.2.3.0-1.2.3.10", "1.2.3.5-1.2.3.20", RelLE},
		{"1.2.3.5-1.2.3.20", "1.2.3.0-1.2.3.10", RelGE},
	}
	for _, tt := range tests {
		a, b := mustIV(t, tt.a), mustIV(t, tt.b)
		require.Equal(t, tt.want, cmp(a, b), "cmp(%s,%s)", tt.a, tt.b)
	}
}

func TestCmpFamilyMismatch(t *testing.T) {
	a := mustIV(t, "1.2.3.4")
	b := mustIV(t, "2001::1")
	require.Equal(t, RelER, cmp(a, b))
}

func TestCutContainedThreeWay(t *testing.T) {
	outer := mustIV(t, "10.10.10.0/24")
	inner := mustIV(t, "10.10.10.4")
	pieces := cutContained(outer, inner, payload.DefaultStrategy())
	require.Len(t, pieces, 3)
	require.Equal(t, "10.10.10.0-10.10.10.3", pieces[0].String())
	require.Equal(t, "10.10.10.4-10.10.10.4", pieces[1].String())
	require.Equal(t, "10.10.10.5-10.10.10.255", pieces[2].String())
}

func TestCutContainedEdgeCollapse(t *testing.T) {
	outer := mustIV(t, "10.10.10.0/24")
	inner := mustIV(t, "10.10.10.0")
	pieces := cutContained(outer, inner, payload.DefaultStrategy())
	require.Len(t, pieces, 2)
	require.Equal(t, "10.10.10.0-10.10.10.0", pieces[0].String())
	require.Equal(t, "10.10.10.1-10.10.10.255", pieces[1].String())
}

func TestCutOverlapLeftThreeWay(t *testing.T) {
	a := mustIV(t, "10.10.10.0-10.10.10.20")
	b := mustIV(t, "10.10.10.10-10.10.10.30")
	pieces := cutOverlapLeft(a, b, payload.DefaultStrategy())
	require.Len(t, pieces, 3)
	require.Equal(t, "10.10.10.0-10.10.10.9", pieces[0].String())
	require.Equal(t, "10.10.10.10-10.10.10.20", pieces[1].String())
	require.Equal(t, "10.10.10.21-10.10.10.30", pieces[2].String())
}

func TestCutDispatch(t *testing.T) {
	a := mustIV(t, "10.10.10.0-10.10.10.20")
	b := mustIV(t, "10.10.10.10-10.10.10.30")
	pieces, err := cut(a, b, payload.DefaultStrategy())
	require.NoError(t, err)
	require.Len(t, pieces, 3)
}

func TestCutRejectsNonOverlapping(t *testing.T) {
	a := mustIV(t, "1.2.3.0-1.2.3.4")
	b := mustIV(t, "1.2.3.10-1.2.3.20")
	_, err := cut(a, b, payload.DefaultStrategy())
	require.Error(t, err)
}

func TestCutNotMiddleInterval(t *testing.T) {
	a := mustIV(t, "10.10.10.0/24")
	out, err := cutNot(a)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "0.0.0.0-10.10.9.255", out[0].String())
	require.Equal(t, "10.10.11.0-255.255.255.255", out[1].String())
}

func TestCutNotFullSpaceIsError(t *testing.T) {
	a := mustIV(t, "0.0.0.0/0")
	_, err := cutNot(a)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, FullNegation, e.Kind)
}
