// Command planextract is the entry point for the watershed plan extraction
// service. It provides a CLI interface (via Cobra) and an HTTP API for
// ingesting plan documents and extracting structured sections from them.
package main

import (
	"fmt"
	"os"

	"github.com/basinworks/planextract/cmd/planextract/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
