package cmd

import (
	"fmt"
	"strings"

	"github.com/go-drift/sdui/pkg/widgets"
)

func init() {
	RegisterCommand(&Command{
		Name:  "handlers",
		Short: "List node types and their attributes",
		Long: `List the node types the default toolkit understands, with the
attributes each one accepts.`,
		Usage: "sdui handlers",
		Run:   runHandlers,
	})
}

// attributeLister is implemented by handlers that can name their attributes.
type attributeLister interface {
	Attributes() []string
}

func runHandlers(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("handlers takes no arguments")
	}

	b := widgets.NewBuilder(nil)
	for _, typ := range b.Registry().Types() {
		line := fmt.Sprintf("%-10s", typ)
		if l, ok := b.Handler(typ).(attributeLister); ok {
			line += " " + strings.Join(l.Attributes(), ", ")
		}
		fmt.Fprintln(stdout, strings.TrimRight(line, " "))
	}
	return nil
}
