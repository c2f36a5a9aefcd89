// Binary sentryrules compiles address-set expressions and serves them over
// HTTP for signature-matching lookups.
package main

import (
	"fmt"
	"os"

	"github.com/nrescobar/sentryrules/cmd/sentryrules/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
