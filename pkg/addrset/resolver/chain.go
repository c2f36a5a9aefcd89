package resolver

import "github.com/nrescobar/sentryrules/pkg/addrset"

// Chain resolves "$name" references against a local table first, falling
// back to a remote rule-distribution service when the name isn't found
// locally and a Remote was configured. Shared by the CLI (--vars-file plus
// --resolver-url) and the HTTP API (inline "vars" plus a server-wide
// resolver.base_url).
type Chain struct {
	Local  addrset.StaticVarTable
	Remote *Remote
}

// Resolve implements addrset.VarTable.
func (c Chain) Resolve(name string) (string, error) {
	if text, ok := c.Local[name]; ok {
		return text, nil
	}
	if c.Remote != nil {
		return c.Remote.Resolve(name)
	}
	return "", addrset.KindError(addrset.UnknownVariable)
}
