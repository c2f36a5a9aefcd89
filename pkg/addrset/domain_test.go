package addrset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValueV4(t *testing.T) {
	v, err := ParseValue("1.2.3.4")
	require.NoError(t, err)
	require.Equal(t, FamilyV4, v.Family)
	require.Equal(t, "1.2.3.4", v.String())
}

func TestParseValueV6(t *testing.T) {
	v, err := ParseValue("2001::1")
	require.NoError(t, err)
	require.Equal(t, FamilyV6, v.Family)
}

func TestParseValueInvalid(t *testing.T) {
	_, err := ParseValue("not-an-address")
	require.Error(t, err)
}

func TestCompareFamilyMismatch(t *testing.T) {
	a, _ := ParseValue("1.2.3.4")
	b, _ := ParseValue("2001::1")
	_, err := Compare(a, b)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, FamilyMismatch, e.Kind)
}

func TestCompareOrdering(t *testing.T) {
	a, _ := ParseValue("1.2.3.4")
	b, _ := ParseValue("1.2.3.5")
	c, err := Compare(a, b)
	require.NoError(t, err)
	require.Equal(t, -1, c)
	require.True(t, Less(a, b))
	require.False(t, Less(b, a))
}

func TestSuccPred(t *testing.T) {
	a, _ := ParseValue("1.2.3.4")
	s, ok := succ(a)
	require.True(t, ok)
	require.Equal(t, "1.2.3.5", s.String())

	p, ok := pred(a)
	require.True(t, ok)
	require.Equal(t, "1.2.3.3", p.String())
}

func TestSuccSaturatesAtMax(t *testing.T) {
	max := MaxValue(FamilyV4)
	_, ok := succ(max)
	require.False(t, ok)
}

func TestPredSaturatesAtMin(t *testing.T) {
	min := MinValue(FamilyV4)
	_, ok := pred(min)
	require.False(t, ok)
}

func TestMaskFromPrefix(t *testing.T) {
	tests := []struct {
		family Family
		prefix int
		want   string
	}{
		{FamilyV4, 24, "255.255.255.0"},
		{FamilyV4, 0, "0.0.0.0"},
		{FamilyV4, 32, "255.255.255.255"},
	}
	for _, tt := range tests {
		m, err := maskFromPrefix(tt.family, tt.prefix)
		require.NoError(t, err)
		require.Equal(t, tt.want, m.String())
	}
}

func TestDottedQuadMaskToPrefix(t *testing.T) {
	p, err := dottedQuadMaskToPrefix("255.255.255.0")
	require.NoError(t, err)
	require.Equal(t, 24, p)

	_, err = dottedQuadMaskToPrefix("255.0.255.0")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, InvalidMask, e.Kind)
}
