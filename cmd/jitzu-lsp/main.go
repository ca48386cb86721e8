// Command jitzu-lsp serves diagnostics, hover, go-to-definition and
// formatting for jitzu scripts over the Language Server Protocol on stdio.
package main

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	// Logs go to stderr; stdout carries the protocol.
	verbosity := 0
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-v":
			verbosity = 1
		case "-vv":
			verbosity = 2
		}
	}
	commonlog.Configure(verbosity, nil)

	if err := newServer().run(); err != nil {
		fmt.Fprintf(os.Stderr, "jitzu-lsp: %s\n", err)
		os.Exit(1)
	}
}
