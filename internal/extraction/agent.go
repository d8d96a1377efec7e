package extraction

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

//go:embed agent.js
var agentScript string

// BindingName is the window function the agent reports through.
const BindingName = "submit_observation"

// ConfigGlobal is the window property the agent reads its configuration from.
const ConfigGlobal = "__dealerCaptureConfig"

const (
	defaultPollIntervalMS = 2000
	defaultSettleDelayMS  = 800
)

// AgentScript returns the static in-page agent.
func AgentScript() string {
	return agentScript
}

// AgentConfig is the configuration object handed to the agent.
type AgentConfig struct {
	Binding          string              `json:"binding"`
	DebounceMS       int                 `json:"debounce_ms"`
	PollIntervalMS   int                 `json:"poll_interval_ms"`
	SettleDelayMS    int                 `json:"settle_delay_ms"`
	ExcludeSelectors []string            `json:"exclude_selectors"`
	IncludeSelectors []string            `json:"include_selectors"`
	SubmitSelector   string              `json:"submit_selector"`
	LoginConfig      *domain.LoginConfig `json:"login_config,omitempty"`
	LabelTargets     []LabelTarget       `json:"label_targets"`
	Validation       Gate                `json:"validation"`
}

// NewAgentConfig derives the agent configuration from a capture config.
// Credentials are only included when prefill is possible.
func NewAgentConfig(cfg domain.CaptureConfig, gate Gate, targets []LabelTarget) AgentConfig {
	cfg = cfg.WithDefaults()
	ac := AgentConfig{
		Binding:          BindingName,
		DebounceMS:       cfg.DebounceMS,
		PollIntervalMS:   defaultPollIntervalMS,
		SettleDelayMS:    defaultSettleDelayMS,
		ExcludeSelectors: cfg.ExcludeSelectors,
		IncludeSelectors: cfg.IncludeSelectors,
		SubmitSelector:   cfg.SubmitSelector,
		LabelTargets:     targets,
		Validation:       gate,
	}
	if cfg.LoginConfig.CanPrefill() {
		login := *cfg.LoginConfig
		ac.LoginConfig = &login
	}
	if ac.LabelTargets == nil {
		ac.LabelTargets = []LabelTarget{}
	}
	return ac
}

// Bootstrap renders the init script that defines the agent configuration.
// It must be registered before AgentScript.
func Bootstrap(ac AgentConfig) (string, error) {
	data, err := json.Marshal(ac)
	if err != nil {
		return "", fmt.Errorf("encode agent config: %w", err)
	}
	return fmt.Sprintf("window.%s = Object.freeze(%s);", ConfigGlobal, data), nil
}
