package extraction

import (
	"strings"

	"golang.org/x/net/html"
)

// DiagnosticDump collects id/name -> value for every input, select and
// textarea in a document, skipping password, hidden and framework state
// fields. It is the host-side twin of the dump the agent sends on submit.
func DiagnosticDump(doc *html.Node) map[string]string {
	out := make(map[string]string)
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.Data {
		case "input", "select", "textarea":
		default:
			return true
		}
		key := attr(n, "id")
		if key == "" {
			key = attr(n, "name")
		}
		typ := strings.ToLower(attr(n, "type"))
		if key == "" || typ == "password" || typ == "hidden" || strings.HasPrefix(key, "__") {
			return true
		}
		out[key] = controlValue(n)
		return true
	})
	return out
}

// controlValue reads a form control's value from markup.
func controlValue(n *html.Node) string {
	switch n.Data {
	case "textarea":
		return strings.TrimSpace(textContent(n))
	case "select":
		var first string
		var selected []string
		walk(n, func(c *html.Node) bool {
			if c.Type != html.ElementNode || c.Data != "option" {
				return true
			}
			v := optionValue(c)
			if first == "" {
				first = v
			}
			if hasAttr(c, "selected") {
				selected = append(selected, v)
			}
			return true
		})
		if len(selected) > 0 {
			return strings.Join(selected, ",")
		}
		return first
	default:
		switch strings.ToLower(attr(n, "type")) {
		case "checkbox", "radio":
			if hasAttr(n, "checked") {
				return "true"
			}
			return "false"
		}
		return attr(n, "value")
	}
}

func optionValue(n *html.Node) string {
	if hasAttr(n, "value") {
		return attr(n, "value")
	}
	return strings.TrimSpace(textContent(n))
}

// textContent concatenates the text of a subtree, skipping scripts and styles.
func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style") {
			return false
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}
