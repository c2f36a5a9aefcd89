package addrset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAtomAny(t *testing.T) {
	iv, err := parseAtom("any")
	require.NoError(t, err)
	require.True(t, iv.Flags.Has(FlagAny))
}

func TestParseAtomHost(t *testing.T) {
	iv, err := parseAtom("1.2.3.4")
	require.NoError(t, err)
	require.Equal(t, "1.2.3.4-1.2.3.4", iv.String())
}

func TestParseAtomCIDRPrefix(t *testing.T) {
	iv, err := parseAtom("10.10.10.0/24")
	require.NoError(t, err)
	require.Equal(t, "10.10.10.0-10.10.10.255", iv.String())
}

func TestParseAtomCIDRDottedQuad(t *testing.T) {
	iv, err := parseAtom("10.10.10.0/255.255.255.0")
	require.NoError(t, err)
	require.Equal(t, "10.10.10.0-10.10.10.255", iv.String())
}

func TestParseAtomCIDRInvalidPrefix(t *testing.T) {
	_, err := parseAtom("10.10.10.0/33")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, InvalidMask, e.Kind)
}

func TestParseAtomCIDRNonContiguousMask(t *testing.T) {
	_, err := parseAtom("10.10.10.0/255.0.255.0")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, InvalidMask, e.Kind)
}

func TestParseAtomRange(t *testing.T) {
	iv, err := parseAtom("10.10.10.10-10.10.11.1")
	require.NoError(t, err)
	require.Equal(t, "10.10.10.10-10.10.11.1", iv.String())
}

func TestParseAtomRangeReversed(t *testing.T) {
	_, err := parseAtom("1.2.3.6-1.2.3.4")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, ReversedRange, e.Kind)
}

func TestParseAtomV6CIDR(t *testing.T) {
	iv, err := parseAtom("2001::/16")
	require.NoError(t, err)
	require.Equal(t, FamilyV6, iv.Family)
}

func TestParseAtomV6Range(t *testing.T) {
	iv, err := parseAtom("2001::4-2001::6")
	require.NoError(t, err)
	require.Equal(t, "2001::4-2001::6", iv.String())
}

func TestParseAtomEmpty(t *testing.T) {
	_, err := parseAtom("")
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, SyntaxError, e.Kind)
}
