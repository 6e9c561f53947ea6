// Command sdui renders server-driven UI layouts to HTML.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/sdui/cmd/sdui/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
