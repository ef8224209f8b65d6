package xmlpath

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// Resolve returns the first non-empty normalized text among paths, tried in order.
func Resolve(doc *xmlquery.Node, paths []string) (string, bool) {
	return ResolveFunc(doc, paths, nil)
}

// ResolveFunc is Resolve with an extra acceptance check; a rejected candidate
// falls through to the next path.
func ResolveFunc(doc *xmlquery.Node, paths []string, accept func(string) bool) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, path := range paths {
		node, err := xmlquery.Query(doc, path)
		if err != nil || node == nil {
			continue
		}
		text := normalize(node.InnerText())
		if text == "" {
			continue
		}
		if accept != nil && !accept(text) {
			continue
		}
		return text, true
	}
	return "", false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
