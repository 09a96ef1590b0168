// Command resolve renders, validates and numbers resolutions from local files.
//
//	resolve render templates/shareholder_distribution.yaml answers.yaml --entities data/entities.yaml
//	resolve validate templates/shareholder_distribution.yaml answers.yaml
//	resolve register
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
