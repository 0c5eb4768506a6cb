package arxiv

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var skippedTags = []string{"script", "style", "math"}

// fragmentContext is the element abstracts are parsed inside of. The parser
// rejects element nodes whose DataAtom does not match Data.
var fragmentContext = &html.Node{
	Type:     html.ElementNode,
	Data:     "div",
	DataAtom: atom.Div,
}

// cleanText flattens an Atom text field to a single line. Abstracts sometimes
// carry inline markup, which is reduced to its text content.
func cleanText(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return collapseSpace(raw)
	}

	nodes, err := html.ParseFragment(strings.NewReader(raw), fragmentContext)
	if err != nil {
		return collapseSpace(raw)
	}

	var sb strings.Builder
	for _, n := range nodes {
		collectText(n, &sb)
	}
	return collapseSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if isOneOf(n.Data, skippedTags...) {
			return
		}
		if n.Data == "br" || n.Data == "p" {
			sb.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
