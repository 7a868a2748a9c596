// Command timeline manages countdown plans from the terminal.
package main

import (
	"fmt"
	"os"
)

// Version information (set at build time)
var version = "dev"

func main() {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
