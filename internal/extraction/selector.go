package extraction

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// SelectorFor derives the same selector the agent derives for an element:
// "tag#id" when it has an id, otherwise "tag:nth-of-type(n)" segments joined
// with " > " up to the nearest ancestor with an id or the document root.
func SelectorFor(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	if id := attr(n, "id"); id != "" {
		return n.Data + "#" + id
	}
	var parts []string
	for node := n; node != nil && node.Type == html.ElementNode; node = node.Parent {
		if id := attr(node, "id"); id != "" {
			parts = append(parts, node.Data+"#"+id)
			break
		}
		if node.Data == "html" {
			parts = append(parts, "html")
			break
		}
		index := 1
		for sib := node.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if sib.Type == html.ElementNode && sib.Data == node.Data {
				index++
			}
		}
		parts = append(parts, node.Data+":nth-of-type("+strconv.Itoa(index)+")")
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// findByID returns the first element with the given id.
func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// walk visits nodes depth-first. Returning false from fn skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}
