package domain

import (
	"net/url"
	"strings"
)

// LoginConfig drives credential prefill on the portal login page.
type LoginConfig struct {
	UsernameSelector string `json:"username_selector"`
	PasswordSelector string `json:"password_selector"`
	DealerCode       string `json:"dealer_code"`
	Password         string `json:"password"`
}

// CanPrefill reports whether there is anything to fill.
func (l *LoginConfig) CanPrefill() bool {
	return l != nil && l.DealerCode != "" && l.Password != ""
}

// CaptureConfig configures the in-page agent and the capture session.
type CaptureConfig struct {
	// TargetDomains limits capture to pages on these hosts. Empty means every host.
	TargetDomains []string `json:"target_domains"`

	// ExcludeSelectors are always rejected (password fields and the like).
	ExcludeSelectors []string `json:"exclude_selectors"`

	// IncludeSelectors is the allow-list. Empty means capture everything not excluded.
	IncludeSelectors []string `json:"include_selectors"`

	// DebounceMS is the input coalescing window.
	DebounceMS int `json:"debounce_ms"`

	// SubmitSelector identifies the portal's submit control.
	SubmitSelector string `json:"submit_selector"`

	// OutputFile is the session document file name, relative to the data dir.
	OutputFile string `json:"output_file"`

	// LoginConfig enables credential prefill when set.
	LoginConfig *LoginConfig `json:"login_config,omitempty"`
}

// DefaultCaptureConfig returns the configuration written when no file exists.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		TargetDomains: []string{},
		ExcludeSelectors: []string{
			`input[type="password"]`,
			"#password",
			"#txtPassword",
		},
		IncludeSelectors: []string{
			"#txt_full_name",
			"#txt_father_name",
			"#nic1",
			"#nic2",
			"#nic3",
			"#txt_cnic",
			"#txt_mobile",
			"#txt_address",
			"#ddl_city",
			"#txt_chassis_no",
			"#txt_engine_no",
			"#ddl_color",
			"#ddl_model",
		},
		DebounceMS:     300,
		SubmitSelector: "#btnSave",
		OutputFile:     "capture_session.json",
		LoginConfig: &LoginConfig{
			UsernameSelector: "#txtDealerCode",
			PasswordSelector: "#txtPassword",
		},
	}
}

// WithDefaults fills zero-valued fields from DefaultCaptureConfig.
func (c CaptureConfig) WithDefaults() CaptureConfig {
	d := DefaultCaptureConfig()
	if c.DebounceMS <= 0 {
		c.DebounceMS = d.DebounceMS
	}
	if c.SubmitSelector == "" {
		c.SubmitSelector = d.SubmitSelector
	}
	if c.OutputFile == "" {
		c.OutputFile = d.OutputFile
	}
	if c.TargetDomains == nil {
		c.TargetDomains = []string{}
	}
	if c.ExcludeSelectors == nil {
		c.ExcludeSelectors = d.ExcludeSelectors
	}
	if c.IncludeSelectors == nil {
		c.IncludeSelectors = []string{}
	}
	return c
}

// Allows reports whether observations for a derived selector may be recorded.
// Excluded selectors always lose; an empty allow-list admits everything else.
func (c CaptureConfig) Allows(selector string) bool {
	for _, pattern := range c.ExcludeSelectors {
		if SelectorMatches(pattern, selector) {
			return false
		}
	}
	if len(c.IncludeSelectors) == 0 {
		return true
	}
	for _, pattern := range c.IncludeSelectors {
		if SelectorMatches(pattern, selector) {
			return true
		}
	}
	return false
}

// MatchesDomain reports whether a page URL is on one of the target domains.
func (c CaptureConfig) MatchesDomain(pageURL string) bool {
	if len(c.TargetDomains) == 0 {
		return true
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range c.TargetDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// SelectorMatches compares a configured CSS selector with a derived selector
// path ("tag#id" or "a > b:nth-of-type(2)").
//
// Host-side matching only understands the shapes the agent derives: an exact
// path, the final path segment, or an id/tag#id pattern against the final
// segment. Attribute selectors are evaluated in the page, not here.
func SelectorMatches(pattern, selector string) bool {
	pattern = strings.TrimSpace(pattern)
	selector = strings.TrimSpace(selector)
	if pattern == "" || selector == "" {
		return false
	}
	if pattern == selector {
		return true
	}
	last := selector
	if i := strings.LastIndex(selector, ">"); i >= 0 {
		last = strings.TrimSpace(selector[i+1:])
	}
	if pattern == last {
		return true
	}
	if strings.HasPrefix(pattern, "#") {
		return strings.HasSuffix(last, pattern) && !strings.Contains(strings.TrimSuffix(last, pattern), "#")
	}
	return false
}
