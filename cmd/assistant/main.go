// Command assistant runs the Smart Research Assistant: an HTTP service that
// turns a research question, uploaded documents and live feed snippets into a
// cited report, plus a one-shot CLI for the same transaction.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
