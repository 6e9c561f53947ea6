package layout

import (
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/go-drift/sdui/pkg/errors"
)

// CheckVersion reports whether a document published at version v can be
// decoded by this package. An empty version means "current". The major
// version must match [SchemaVersion] and the document must not be newer.
func CheckVersion(v string) error {
	if v == "" {
		return nil
	}
	canonical := semver.Canonical(normalizeVersion(v))
	if canonical == "" {
		return fmt.Errorf("invalid layout version %q", v)
	}
	if semver.Major(canonical) != semver.Major(SchemaVersion) {
		return fmt.Errorf("layout version %s is incompatible with schema %s", v, SchemaVersion)
	}
	if semver.Compare(canonical, SchemaVersion) > 0 {
		return fmt.Errorf("layout version %s is newer than supported schema %s", v, SchemaVersion)
	}
	return nil
}

func normalizeVersion(v string) string {
	if len(v) > 0 && v[0] != 'v' {
		return "v" + v
	}
	return v
}

// Validate walks the tree and returns one LayoutError per node that would be
// rejected by the builder. Nil children are reported too.
func Validate(root *Node) []*errors.LayoutError {
	if root == nil {
		return []*errors.LayoutError{{Reason: "nil layout", Layout: "null"}}
	}
	var problems []*errors.LayoutError
	root.Walk(func(path string, n *Node) bool {
		if n.Type == "" {
			problems = append(problems, &errors.LayoutError{
				Reason: "'type' missing",
				Layout: n.String(),
				Path:   path,
			})
		}
		for i, child := range n.Children {
			if child == nil {
				problems = append(problems, &errors.LayoutError{
					Reason: "nil child",
					Layout: "null",
					Path:   fmt.Sprintf("%s/%d:?", path, i),
				})
			}
		}
		return true
	})
	return problems
}

// Types returns the set of node types used in the tree, in first-seen order.
func Types(root *Node) []string {
	seen := make(map[string]bool)
	var types []string
	root.Walk(func(_ string, n *Node) bool {
		if n.Type != "" && !seen[n.Type] {
			seen[n.Type] = true
			types = append(types, n.Type)
		}
		return true
	})
	return types
}
