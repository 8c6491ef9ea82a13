// ABOUTME: Entry point for the pathwayfr CLI
// ABOUTME: Terminal client for the PathwayFR orientation platform

package main

import (
	"fmt"
	"os"

	"github.com/Rayanebsh/Pathwayfr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
