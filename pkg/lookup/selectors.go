package lookup

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

func compile(name, sel string) (cascadia.Selector, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("%s selector %q: %w", name, sel, err)
	}
	return s, nil
}

// wordURL appends the path-escaped word to base.
func wordURL(base, word string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(word)
}

// nodeText returns the visible text of n with whitespace collapsed.
func nodeText(n *html.Node) string {
	return strings.Join(strings.Fields(dom.TextContent(n)), " ")
}
