package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nrescobar/sentryrules/pkg/addrset"
)

func newLookupCmd() *cobra.Command {
	var varsFile, resolverURL string
	var timeout time.Duration

	lookupCmd := &cobra.Command{
		Use:   "lookup <expression> <address>",
		Short: "Compile an address-set expression and test a single address against it",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			vars, err := resolveVars(varsFile, resolverURL, timeout)
			if err != nil {
				return err
			}

			sh, err := addrset.Parse(args[0], vars)
			if err != nil {
				return err
			}
			defer sh.Release()

			addr, err := addrset.ParseValue(args[1])
			if err != nil {
				return err
			}

			iv, matched := sh.Lookup(addr)
			if !matched {
				fmt.Printf("%s: no match\n", args[1])
				return nil
			}
			fmt.Printf("%s: matched %s\n", args[1], iv.String())
			return nil
		},
	}

	lookupCmd.Flags().StringVar(&varsFile, flagVarsFile, "", "YAML file mapping variable names to their address expressions")
	lookupCmd.Flags().StringVar(&resolverURL, flagResolverURL, "", "base URL of a rule-distribution service for $name groups not found in --vars-file")
	lookupCmd.Flags().DurationVar(&timeout, flagTimeout, 0, "timeout for remote group resolution (default 2s, or resolver.timeout_seconds from config)")
	return lookupCmd
}
