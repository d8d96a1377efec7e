package extraction

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

// FieldRule rejects implausible values for one selector.
// Pattern must be valid in both RE2 and ECMAScript.
type FieldRule struct {
	Selector  string `json:"selector"`
	MinLength int    `json:"min_length,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

// Gate is the forced-capture plausibility filter. Rejected fields are
// dropped from the payload, never defaulted.
type Gate struct {
	Rules   []FieldRule `json:"rules"`
	UIVerbs []string    `json:"ui_verbs"`
}

// DefaultGate returns the thresholds tuned for the dealer portal.
func DefaultGate() Gate {
	return Gate{
		Rules: []FieldRule{
			{Selector: "#txt_engine_no", MinLength: 4},
			{Selector: "#txt_chassis_no", MinLength: 5},
			{Selector: "#nic1", Pattern: `^[0-9]{5}$`},
			{Selector: "#nic2", Pattern: `^[0-9]{7}$`},
			{Selector: "#nic3", Pattern: `^[0-9]$`},
			{Selector: "#txt_cnic", Pattern: `^[0-9]{5}-?[0-9]{7}-?[0-9]$`},
			{Selector: "#txt_mobile", MinLength: 7, Pattern: `^[0-9+\- ]+$`},
			{Selector: "#txt_full_name", MinLength: 2},
		},
		UIVerbs: []string{"Submit", "Save", "Update", "Cancel", "Search", "Select", "--Select--", "Login"},
	}
}

// Accept reports whether a value is plausible for the selector.
func (g Gate) Accept(selector string, v domain.FieldValue) bool {
	if v.IsBool {
		return true
	}
	text := strings.TrimSpace(v.Str)
	for _, verb := range g.UIVerbs {
		if strings.EqualFold(text, verb) {
			return false
		}
	}
	for _, r := range g.Rules {
		if !domain.SelectorMatches(r.Selector, selector) {
			continue
		}
		if r.MinLength > 0 && len([]rune(text)) < r.MinLength {
			return false
		}
		if r.Pattern != "" && text != "" {
			re, err := regexp.Compile(r.Pattern)
			if err == nil && !re.MatchString(text) {
				return false
			}
		}
		break
	}
	return true
}

// Filter returns the accepted fields and the sorted selectors it dropped.
func (g Gate) Filter(fields map[string]domain.FieldValue) (map[string]domain.FieldValue, []string) {
	kept := make(map[string]domain.FieldValue, len(fields))
	var rejected []string
	for sel, v := range fields {
		if g.Accept(sel, v) {
			kept[sel] = v
			continue
		}
		rejected = append(rejected, sel)
	}
	sort.Strings(rejected)
	return kept, rejected
}
