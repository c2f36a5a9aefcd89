package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xlab/tablewriter"

	"github.com/nrescobar/sentryrules/pkg/addrset"
)

const flagVarsFile = "vars-file"

func newCompileCmd() *cobra.Command {
	var varsFile, resolverURL string
	var timeout time.Duration

	compileCmd := &cobra.Command{
		Use:   "compile <expression>",
		Short: "Compile an address-set expression and print its resolved intervals",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			vars, err := resolveVars(varsFile, resolverURL, timeout)
			if err != nil {
				return err
			}

			sh, err := addrset.Parse(args[0], vars)
			if err != nil {
				return err
			}
			printSetHead(sh)
			return nil
		},
	}

	compileCmd.Flags().StringVar(&varsFile, flagVarsFile, "", "YAML file mapping variable names to their address expressions")
	compileCmd.Flags().StringVar(&resolverURL, flagResolverURL, "", "base URL of a rule-distribution service for $name groups not found in --vars-file")
	compileCmd.Flags().DurationVar(&timeout, flagTimeout, 0, "timeout for remote group resolution (default 2s, or resolver.timeout_seconds from config)")
	return compileCmd
}

func printSetHead(sh *addrset.SetHead) {
	printed := sh.Print()

	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle("Compiled address set")
	table.AddHeaders("family", "interval")
	for _, row := range printed[addrset.FamilyV4] {
		table.AddRow("v4", row)
	}
	for _, row := range printed[addrset.FamilyV6] {
		table.AddRow("v6", row)
	}
	fmt.Println(table.Render())
}
