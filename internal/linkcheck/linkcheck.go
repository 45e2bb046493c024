// Package linkcheck finds broken in-page references in rendered HTML.
//
// Sidenote output ties elements together by id: the reference links to the
// aside, the aside's label points back at the reference and each
// back-reference anchor links to its reference. When several documents are
// combined on one page without distinct document ids, those ids collide.
// Check reports fragment links and label targets with no matching id, and
// ids that appear more than once.
package linkcheck

import (
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Result is the outcome of checking one HTML fragment.
type Result struct {
	// IDs lists every element id in document order, duplicates included.
	IDs []string

	// Dangling lists link targets with no matching id, in document order.
	// Fragment links are stored without the leading '#'.
	Dangling []string

	// Duplicates lists ids used more than once, each reported once.
	Duplicates []string
}

// OK reports whether the fragment has no dangling targets or duplicate ids.
func (r *Result) OK() bool {
	return len(r.Dangling) == 0 && len(r.Duplicates) == 0
}

// Check parses content as an HTML fragment and checks its internal links.
func Check(content io.Reader) (*Result, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &Result{
		IDs:        make([]string, 0),
		Dangling:   make([]string, 0),
		Duplicates: make([]string, 0),
	}

	var targets []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := getAttr(n, "id"); id != "" {
				result.IDs = append(result.IDs, id)
			}
			targets = appendTargets(targets, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	seen := make(map[string]int, len(result.IDs))
	for _, id := range result.IDs {
		seen[id]++
		if seen[id] == 2 {
			result.Duplicates = append(result.Duplicates, id)
		}
	}
	for _, target := range targets {
		if seen[target] == 0 && !slices.Contains(result.Dangling, target) {
			result.Dangling = append(result.Dangling, target)
		}
	}

	return result, nil
}

// CheckString is Check over a string.
func CheckString(content string) (*Result, error) {
	return Check(strings.NewReader(content))
}

// appendTargets adds the in-page targets referenced by n.
func appendTargets(targets []string, n *html.Node) []string {
	switch n.Data {
	case "a", "area":
		if href := getAttr(n, "href"); strings.HasPrefix(href, "#") && len(href) > 1 {
			targets = append(targets, href[1:])
		}
	case "label", "output":
		// <output for> holds a space-separated id list.
		for _, id := range strings.Fields(getAttr(n, "for")) {
			targets = append(targets, id)
		}
	}
	if ids := getAttr(n, "aria-describedby"); ids != "" {
		targets = append(targets, strings.Fields(ids)...)
	}
	return targets
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
