// Command webrunnerctl runs a static task definition or an AI-driven goal
// against a webrunner.Engine and prints the progress event stream,
// grounded on Streamy's cmd/streamy root/main split.
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
