// Command mdtool inspects header blocks with the multidict engine and
// exercises the engine's guarantees.
package main

import (
	"fmt"
	"os"
)

func main() {
	rootCmd := newRootCommand("mdtool")

	registerInspectCmd(rootCmd)
	registerMemcalcCmd(rootCmd)
	registerSelftestCmd(rootCmd)
	registerVersionCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", rootCmd.Name(), err)
		os.Exit(1)
	}
}
