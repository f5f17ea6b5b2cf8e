// Command clinicctl administers a BillyBuddy clinic backend: first-admin
// bootstrap, veterinarian management and password recovery.
package main

import (
	"context"
	"fmt"
	"os"
)

// version is overridden at build time via ldflags.
var version = "v0.1.0"

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	if err := newCommand().Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, "clinicctl:", err)
		os.Exit(1)
	}
}
