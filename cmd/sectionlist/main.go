// Command sectionlist diffs, traces and renders section list fixtures.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/sectionlist/cmd/sectionlist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
