package extraction

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// LabelTarget pairs a selector with the human label printed next to its
// value when the portal renders the field as plain text.
type LabelTarget struct {
	Selector string `json:"selector"`
	Label    string `json:"label"`
}

// DefaultLabelTargets covers the read-only sale summary page.
var DefaultLabelTargets = []LabelTarget{
	{Selector: "#txt_full_name", Label: "Full Name"},
	{Selector: "#txt_full_name", Label: "Customer Name"},
	{Selector: "#txt_father_name", Label: "Father Name"},
	{Selector: "#txt_cnic", Label: "CNIC"},
	{Selector: "#txt_mobile", Label: "Mobile"},
	{Selector: "#txt_address", Label: "Address"},
	{Selector: "#txt_chassis_no", Label: "Chassis No"},
	{Selector: "#txt_engine_no", Label: "Engine No"},
	{Selector: "#ddl_color", Label: "Color"},
	{Selector: "#ddl_model", Label: "Model"},
}

// LabelInferrer resolves labelled plain-text values from HTML snapshots.
// It remembers the last value per target and reports only changes.
type LabelInferrer struct {
	targets []LabelTarget

	mu   sync.Mutex
	last map[string]string
}

// NewLabelInferrer creates an inferrer for the given targets.
func NewLabelInferrer(targets []LabelTarget) *LabelInferrer {
	return &LabelInferrer{
		targets: targets,
		last:    make(map[string]string),
	}
}

// InferHTML parses a snapshot and runs Infer over it.
func (l *LabelInferrer) InferHTML(r io.Reader) (map[string]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page snapshot: %w", err)
	}
	return l.Infer(doc), nil
}

// Infer returns selector -> value for every target that is absent from the
// document, has a resolvable label and changed since the last call.
func (l *LabelInferrer) Infer(doc *html.Node) map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]string)
	for _, t := range l.targets {
		if _, done := out[t.Selector]; done || targetPresent(doc, t.Selector) {
			continue
		}
		for _, el := range labelElements(doc, t.Label) {
			value := resolveLabel(el)
			if len([]rune(value)) <= 1 || value == l.last[t.Selector] {
				continue
			}
			l.last[t.Selector] = value
			out[t.Selector] = value
			break
		}
	}
	return out
}

// Reset forgets previously reported values.
func (l *LabelInferrer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = make(map[string]string)
}

// targetPresent reports whether an "#id" or "tag#id" selector exists.
func targetPresent(doc *html.Node, selector string) bool {
	i := strings.LastIndex(selector, "#")
	if i < 0 {
		return false
	}
	return findByID(doc, selector[i+1:]) != nil
}

// labelElements returns elements with a direct text node containing label,
// which is the most specific match for the text.
func labelElements(doc *html.Node, label string) []*html.Node {
	var out []*html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if n.Data == "script" || n.Data == "style" || n.Data == "head" {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && strings.Contains(collapse(c.Data), label) {
				out = append(out, n)
				break
			}
		}
		return true
	})
	return out
}

// resolveLabel tries the direct next sibling, then the enclosing cell's next
// sibling, then the next cell by index in the same row.
func resolveLabel(el *html.Node) string {
	if v := cleanLabelValue(nodeText(nextElement(el))); len([]rune(v)) > 1 {
		return v
	}
	cell := enclosingCell(el)
	if cell == nil {
		return ""
	}
	if v := cleanLabelValue(nodeText(nextElement(cell))); len([]rune(v)) > 1 {
		return v
	}
	if cell.Parent == nil {
		return ""
	}
	var cells []*html.Node
	idx := -1
	for c := cell.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			if c == cell {
				idx = len(cells)
			}
			cells = append(cells, c)
		}
	}
	if idx >= 0 && idx+1 < len(cells) {
		return cleanLabelValue(nodeText(cells[idx+1]))
	}
	return ""
}

func enclosingCell(n *html.Node) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && (p.Data == "td" || p.Data == "th") {
			return p
		}
	}
	return nil
}

// nodeText reads a control's value or an element's visible text.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	switch n.Data {
	case "input", "select", "textarea":
		return controlValue(n)
	}
	var control *html.Node
	walk(n, func(c *html.Node) bool {
		if control != nil {
			return false
		}
		if c != n && c.Type == html.ElementNode && (c.Data == "input" || c.Data == "select" || c.Data == "textarea") {
			control = c
			return false
		}
		return true
	})
	if control != nil {
		return controlValue(control)
	}
	return collapse(textContent(n))
}

// cleanLabelValue strips a leading colon separator and surrounding space.
func cleanLabelValue(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), ": "))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
