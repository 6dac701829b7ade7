// Command taskctl is the operator and user CLI for a taskboard server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newEnv()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
