// Package addrsetapi defines the wire types and routes of the address-set
// compilation service: compiling a textual expression into a named,
// in-memory SetHead and looking single addresses up against it.
package addrsetapi

import "github.com/nrescobar/sentryrules/pkg/addrset"

const (
	// AddrSetsRoute is the route to compile address sets (POST) and, below
	// it, to inspect or query a compiled set by name.
	AddrSetsRoute = "/api/v1/addrsets"
)

type response struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error,omitempty"`
}

// CompileRequest is the payload to compile and register a named address set.
type CompileRequest struct {
	// Name identifies the compiled set for later lookup/inspection.
	Name string `json:"name"`
	// Expression is the address-set expression, per the grammar in
	// package addrset's parser.
	Expression string `json:"expression"`
	// Vars resolves "$name" references within Expression.
	Vars map[string]string `json:"vars,omitempty"`
}

// CompileResponse reports the compiled set's interval counts per family and
// an xxh3 content fingerprint, also sent as the response's ETag header.
type CompileResponse struct {
	response
	Name        string `json:"name"`
	V4Count     int    `json:"v4_count"`
	V6Count     int    `json:"v6_count"`
	Fingerprint string `json:"fingerprint"`
}

// InspectResponse renders a compiled set's sorted, disjoint interval lists.
type InspectResponse struct {
	response
	Name string              `json:"name"`
	V4   []string            `json:"v4"`
	V6   []string            `json:"v6"`
}

// LookupResponse reports whether an address falls within a compiled set,
// and the covering interval's bounds if so.
type LookupResponse struct {
	response
	Matched  bool   `json:"matched"`
	Interval string `json:"interval,omitempty"`
}

// HTTPStatusForKind maps an addrset error Kind to the HTTP status code the
// server should return for it: malformed input is a client error (400),
// an unresolvable reference or a negation that negates a whole family or
// removes all coverage is a client error with code 422, and an internal
// invariant violation is a server error (500).
func HTTPStatusForKind(k addrset.Kind) int {
	switch k {
	case addrset.SyntaxError, addrset.InvalidMask, addrset.ReversedRange:
		return 400
	case addrset.UnknownVariable:
		return 422
	case addrset.FullNegation, addrset.EmptyAfterNegation:
		return 422
	case addrset.FamilyMismatch, addrset.OutOfMemory:
		return 500
	default:
		return 500
	}
}
