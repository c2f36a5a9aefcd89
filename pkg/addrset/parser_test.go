package addrset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSingleHost(t *testing.T) {
	sh, err := Parse("1.2.3.4", StaticVarTable{})
	require.NoError(t, err)
	require.Equal(t, []string{"1.2.3.4-1.2.3.4"}, stringsOf(sh.Intervals(FamilyV4)))
}

func TestParseListOfAtoms(t *testing.T) {
	sh, err := Parse("[10.10.10.10-10.10.11.1,10.10.10.0/24,0.0.0.0/0]", StaticVarTable{})
	require.NoError(t, err)
	require.Equal(t, []string{
		"0.0.0.0-10.10.9.255",
		"10.10.10.0-10.10.10.9",
		"10.10.10.10-10.10.10.255",
		"10.10.11.0-10.10.11.1",
		"10.10.11.2-255.255.255.255",
	}, stringsOf(sh.Intervals(FamilyV4)))
}

func TestParseNegatedHost(t *testing.T) {
	sh, err := Parse("!1.2.3.4", StaticVarTable{})
	require.NoError(t, err)
	require.Equal(t, []string{
		"0.0.0.0-1.2.3.3",
		"1.2.3.5-255.255.255.255",
	}, stringsOf(sh.Intervals(FamilyV4)))
}

func TestParseNegatedZero(t *testing.T) {
	sh, err := Parse("!0.0.0.0", StaticVarTable{})
	require.NoError(t, err)
	require.Equal(t, []string{"0.0.0.1-255.255.255.255"}, stringsOf(sh.Intervals(FamilyV4)))
}

func TestParseNegatedMax(t *testing.T) {
	sh, err := Parse("!255.255.255.255", StaticVarTable{})
	require.NoError(t, err)
	require.Equal(t, []string{"0.0.0.0-255.255.255.254"}, stringsOf(sh.Intervals(FamilyV4)))
}

func TestParseNotAnyRejected(t *testing.T) {
	_, err := Parse("!any", StaticVarTable{})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, SyntaxError, e.Kind)
}

func TestParseReversedRange(t *testing.T) {
	_, err := Parse("1.2.3.6-1.2.3.4", StaticVarTable{})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, ReversedRange, e.Kind)
}

func TestParseInvalidPrefix(t *testing.T) {
	_, err := Parse("1.2.3.0/33", StaticVarTable{})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, InvalidMask, e.Kind)
}

func TestParseAny(t *testing.T) {
	sh, err := Parse("any", StaticVarTable{})
	require.NoError(t, err)
	require.Equal(t, []string{"0.0.0.0-255.255.255.255"}, stringsOf(sh.Intervals(FamilyV4)))
	require.Equal(t, []string{"::-ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff"}, stringsOf(sh.Intervals(FamilyV6)))
}

func TestParseVariable(t *testing.T) {
	vars := StaticVarTable{"internal": "10.0.0.0/8"}
	sh, err := Parse("$internal", vars)
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0-10.255.255.255"}, stringsOf(sh.Intervals(FamilyV4)))
}

func TestParseUnknownVariable(t *testing.T) {
	_, err := Parse("$nope", StaticVarTable{})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, UnknownVariable, e.Kind)
}

func TestParseNegatedVariableList(t *testing.T) {
	vars := StaticVarTable{"dmz": "10.1.1.1,10.1.1.2"}
	sh, err := Parse("![$dmz]", vars)
	require.NoError(t, err)
	// both hosts removed from the full v4 space
	require.Equal(t, []string{
		"0.0.0.0-10.1.1.0",
		"10.1.1.3-255.255.255.255",
	}, stringsOf(sh.Intervals(FamilyV4)))
}

func TestParseUnbalancedBrackets(t *testing.T) {
	_, err := Parse("[1.2.3.4", StaticVarTable{})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, SyntaxError, e.Kind)
}

func TestParseFrozenSetHeadIsReadOnly(t *testing.T) {
	sh, err := Parse("1.2.3.4", StaticVarTable{})
	require.NoError(t, err)
	err = sh.Insert(Interval{Family: FamilyV4})
	require.Error(t, err)
}

func TestParseDepthLimitExceeded(t *testing.T) {
	text := "1.2.3.4"
	for i := 0; i < maxParseDepth+2; i++ {
		text = "!" + text
	}
	_, err := Parse(text, StaticVarTable{})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, SyntaxError, e.Kind)
}
