package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-drift/sdui/cmd/sdui/internal/config"
	"github.com/go-drift/sdui/pkg/errors"
	"github.com/go-drift/sdui/pkg/layout"
	"github.com/go-drift/sdui/pkg/widgets"
)

func init() {
	RegisterCommand(&Command{
		Name:  "validate",
		Short: "Check layouts for problems",
		Long: `Check one or more layout documents without writing any output.

Each layout is decoded, checked against the project's schema version and
built with the default handlers. Nodes without a type, unknown node types,
unknown attributes and invalid attribute values are all reported.

The command fails if any layout has a problem.`,
		Usage: "sdui validate <file>...",
		Run:   runValidate,
	})
}

func runValidate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one layout file is required\n\nUsage: sdui validate <file>...")
	}

	failed := 0
	for _, path := range args {
		problems, err := validateFile(path)
		if err != nil {
			problems = append(problems, err.Error())
		}
		if len(problems) == 0 {
			fmt.Fprintf(stdout, "ok    %s\n", path)
			continue
		}
		failed++
		fmt.Fprintf(stdout, "FAIL  %s\n", path)
		for _, p := range problems {
			fmt.Fprintf(stdout, "      %s\n", p)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d layouts failed validation", failed, len(args))
	}
	return nil
}

// validateFile returns every problem found in the layout at path. The error
// is set when the file cannot be checked at all.
func validateFile(path string) ([]string, error) {
	root, err := config.FindProjectRoot(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	settings, err := config.Resolve(root)
	if err != nil {
		return nil, err
	}

	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}
	if err := settings.CheckDocument(doc); err != nil {
		return nil, err
	}

	var problems []string
	for _, p := range layout.Validate(doc.Layout) {
		problems = append(problems, p.Error())
	}
	if len(problems) > 0 {
		return problems, nil
	}

	collector := &errors.Collector{}
	prev := errors.DefaultHandler
	errors.SetHandler(collector)
	defer errors.SetHandler(prev)

	listener := &widgets.PlaceholderListener{Strict: true}
	settings.EmbedBitmaps = false
	b, err := newBuilder(settings, filepath.Dir(path), listener)
	if err != nil {
		return nil, err
	}
	if _, err := b.Build(nil, doc.Layout, doc.Data, 0, doc.Styles); err != nil {
		problems = append(problems, err.Error())
	}

	for _, typ := range listener.UnknownTypes() {
		problems = append(problems, fmt.Sprintf("unknown type %q", typ))
	}
	for _, attr := range listener.UnknownAttributes() {
		problems = append(problems, fmt.Sprintf("unknown attribute %q", attr))
	}
	for _, e := range collector.Errors() {
		problems = append(problems, e.Error())
	}
	for _, p := range collector.Panics() {
		problems = append(problems, p.Error())
	}
	return problems, nil
}
