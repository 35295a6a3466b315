package twigpad

import (
	"bytes"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var reAnchorOpen = regexp.MustCompile(`(?i)<a\s+([^>]*href\s*=\s*["'][^"']+["'][^>]*)>`)

// openLinksInNewTab gives every anchor with an href target="_blank" and
// rel="noopener noreferrer", keeping values the author already set.
// A body without such anchors is returned as is.
func openLinksInNewTab(body string, logger *slog.Logger) string {
	out, err := rewriteAnchors(body)
	if err != nil {
		logger.Warn("link rewrite fell back to text substitution", slog.Any("error", err))
		return rewriteAnchorsText(body)
	}
	return out
}

func rewriteAnchors(body string) (string, error) {
	bodyNode := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(body), bodyNode)
	if err != nil {
		return "", err
	}

	changed := false
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A && hasAttr(n, "href") {
			changed = setAttrIfAbsent(n, "target", "_blank") || changed
			changed = setAttrIfAbsent(n, "rel", "noopener noreferrer") || changed
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	if !changed {
		return body, nil
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteAnchorsText(body string) string {
	return reAnchorOpen.ReplaceAllStringFunc(body, func(m string) string {
		attrs := reAnchorOpen.FindStringSubmatch(m)[1]
		lower := strings.ToLower(attrs)
		if strings.Contains(lower, "target=") {
			return m
		}
		if strings.Contains(lower, "rel=") {
			return `<a ` + attrs + ` target="_blank">`
		}
		return `<a ` + attrs + ` target="_blank" rel="noopener noreferrer">`
	})
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

func setAttrIfAbsent(n *html.Node, key, val string) bool {
	if hasAttr(n, key) {
		return false
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	return true
}
