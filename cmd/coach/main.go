// Command coach scores PM interview transcripts from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/fairyhunter13/pm-interview-coach/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
