package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/sdui/pkg/widgets"
)

// Finder locates elements in a built tree.
type Finder interface {
	// Evaluate returns all matching elements under root (depth-first pre-order).
	Evaluate(root *widgets.Element) []*widgets.Element
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []*widgets.Element
	finder   Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *widgets.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.description()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *widgets.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *widgets.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.description()))
	}
	return r.elements[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*widgets.Element {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// predicateFinder matches elements satisfying a predicate.
type predicateFinder struct {
	fn   func(*widgets.Element) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *widgets.Element) []*widgets.Element {
	var results []*widgets.Element
	root.Walk(func(e *widgets.Element) bool {
		if f.fn(e) {
			results = append(results, e)
		}
		return true
	})
	return results
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches elements satisfying fn.
func ByPredicate(fn func(*widgets.Element) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// ByType matches elements built from layout nodes of the given type.
func ByType(typ string) Finder {
	return &predicateFinder{
		fn: func(e *widgets.Element) bool {
			vm := e.ViewManager()
			return vm != nil && vm.Layout != nil && vm.Layout.Type == typ
		},
		desc: fmt.Sprintf("ByType(%q)", typ),
	}
}

// ByID matches elements whose id attribute equals id.
func ByID(id string) Finder {
	return &predicateFinder{
		fn: func(e *widgets.Element) bool {
			v, ok := e.Attr("id")
			return ok && v == id
		},
		desc: fmt.Sprintf("ByID(%q)", id),
	}
}

// ByText matches elements whose own text equals text exactly.
func ByText(text string) Finder {
	return &predicateFinder{
		fn:   func(e *widgets.Element) bool { return e.Text() == text },
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByTextContaining matches elements whose own text contains substring.
func ByTextContaining(substring string) Finder {
	return &predicateFinder{
		fn:   func(e *widgets.Element) bool { return strings.Contains(e.Text(), substring) },
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

// ByUnknownType matches placeholder elements for an unknown node type.
func ByUnknownType(typ string) Finder {
	return &predicateFinder{
		fn: func(e *widgets.Element) bool {
			v, ok := e.Attr("data-unknown-type")
			return ok && v == typ
		},
		desc: fmt.Sprintf("ByUnknownType(%q)", typ),
	}
}

// descendantFinder finds elements matching 'matching' that are descendants
// of elements matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *widgets.Element) []*widgets.Element {
	var results []*widgets.Element
	seen := make(map[*widgets.Element]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		for _, child := range ancestor.Children() {
			for _, match := range f.matching.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches elements satisfying 'matching'
// that are descendants of elements matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}
