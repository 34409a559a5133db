// Command typewriter plays scripted text animations in the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/GustavoCosta/typewriter/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
