// Package main provides caseboard, a file-backed legal case tracker with
// atomic saves, backups, and a full audit trail.
package main

import (
	"os"
	"strings"

	"caseboard/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env))
}
