package cmd

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nrescobar/sentryrules/pkg/addrset"
	"github.com/nrescobar/sentryrules/pkg/addrset/resolver"
	apijson "github.com/nrescobar/sentryrules/pkg/api/json"
)

const (
	flagResolverURL = "resolver-url"
	flagTimeout     = "resolver-timeout"

	defaultResolverTimeout = 2 * time.Second
)

// resolveVars builds the VarTable used to resolve "$name" references.
// resolverURL/timeout are the --resolver-url/--resolver-timeout flag values;
// an empty resolverURL or zero timeout falls back to the resolver.base_url/
// resolver.timeout_seconds config keys (cfg.Resolver), so a deployment can
// set the remote rule-distribution service once in its config file instead
// of on every compile/lookup invocation.
func resolveVars(varsFile, resolverURL string, timeout time.Duration) (addrset.VarTable, error) {
	local, err := loadVarsFile(varsFile)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if resolverURL == "" {
		resolverURL = cfg.Resolver.BaseURL
	}
	if timeout == 0 {
		if cfg.Resolver.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.Resolver.TimeoutSeconds) * time.Second
		} else {
			timeout = defaultResolverTimeout
		}
	}

	var remote *resolver.Remote
	if resolverURL != "" {
		remote = resolver.NewRemote(resolverURL, timeout)
	}
	return resolver.Chain{Local: local, Remote: remote}, nil
}

func loadVarsFile(path string) (addrset.StaticVarTable, error) {
	if path == "" {
		return addrset.StaticVarTable{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vars file: %w", err)
	}
	vars := make(addrset.StaticVarTable)
	if err := yaml.Unmarshal(b, &vars); err != nil {
		return nil, fmt.Errorf("failed to parse vars file: %w", err)
	}

	// Round-trip the YAML-sourced vars through jsoniter so a --vars-file
	// with keys/values that don't survive JSON encoding (e.g. invalid UTF-8)
	// is rejected here rather than failing later inside an HTTP handler.
	if _, err := varsDiagnosticsJSON(vars); err != nil {
		return nil, fmt.Errorf("vars file failed YAML->JSON diagnostics round trip: %w", err)
	}
	return vars, nil
}

// varsDiagnosticsJSON renders a resolved vars table as JSON; loadVarsFile
// uses it to reject a --vars-file whose contents do not encode as JSON.
func varsDiagnosticsJSON(vars addrset.StaticVarTable) ([]byte, error) {
	return apijson.Marshal(vars)
}
