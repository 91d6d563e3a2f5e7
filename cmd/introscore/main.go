// Command introscore scores a self-introduction transcript from the command
// line with the same rubric the HTTP service uses.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
