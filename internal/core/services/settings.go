package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService resolves application settings from environment defaults
// and the config store.
type SettingsService struct {
	store driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store driven.ConfigStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get resolves settings: environment defaults overlaid with stored values.
// Stored values of the wrong type or out of range are ignored.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	r := storedSettings{s.store}

	env := domain.Environment(r.text(domain.SettingEnvironment, ""))
	if env != "" && !env.IsValid() {
		return nil, fmt.Errorf("%w: environment %q", domain.ErrInvalidInput, env)
	}
	settings := domain.ResolveSettings(env)

	fbr := &settings.FBR
	fbr.Endpoint = r.text(domain.SettingEndpoint, fbr.Endpoint)
	fbr.Token = r.text(domain.SettingToken, "")
	fbr.POSID = r.positiveInt(domain.SettingPOSID, fbr.POSID)
	fbr.Timeout = r.seconds(domain.SettingTimeoutSeconds, fbr.Timeout)
	fbr.MaxAttempts = r.positiveInt(domain.SettingMaxAttempts, fbr.MaxAttempts)
	fbr.RequestsPerSecond = r.positiveFloat(domain.SettingRequestsPerSecond, fbr.RequestsPerSecond)

	schedule := &settings.Sync
	schedule.OnlineInterval = r.seconds(domain.SettingOnlineInterval, schedule.OnlineInterval)
	schedule.InitialBackoff = r.seconds(domain.SettingInitialBackoff, schedule.InitialBackoff)
	schedule.MaxBackoff = r.seconds(domain.SettingMaxBackoff, schedule.MaxBackoff)
	schedule.ProbeEndpoints = r.list(domain.SettingProbeEndpoints, schedule.ProbeEndpoints)
	if schedule.MaxBackoff < schedule.InitialBackoff {
		schedule.MaxBackoff = schedule.InitialBackoff
	}

	capture := &settings.Capture
	capture.PortalURL = r.text(domain.SettingPortalURL, "")
	capture.Headless = r.flag(domain.SettingHeadless, capture.Headless)
	capture.DiscardInvalidSubmissions = r.flag(domain.SettingDiscardInvalid, false)

	return &settings, nil
}

// SetEnvironment switches between sandbox and production.
// A stored endpoint override is cleared so the new environment's endpoint applies.
func (s *SettingsService) SetEnvironment(env domain.Environment) error {
	if !env.IsValid() {
		return fmt.Errorf("%w: environment %q", domain.ErrInvalidInput, env)
	}
	if err := s.store.Put(domain.SettingEnvironment, env.String()); err != nil {
		return fmt.Errorf("save environment: %w", err)
	}
	if err := s.store.Unset(domain.SettingEndpoint); err != nil {
		return fmt.Errorf("reset endpoint: %w", err)
	}
	return nil
}

// SetCredentials stores the FBR token and POS id.
func (s *SettingsService) SetCredentials(token string, posID int) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}
	if posID <= 0 {
		return fmt.Errorf("%w: POS id must be a positive integer", domain.ErrInvalidInput)
	}
	if err := s.store.Put(domain.SettingToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := s.store.Put(domain.SettingPOSID, posID); err != nil {
		return fmt.Errorf("save POS id: %w", err)
	}
	return nil
}

// SetPortalURL stores the portal URL opened by capture.
func (s *SettingsService) SetPortalURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: portal url %q", domain.ErrInvalidInput, rawURL)
	}
	if err := s.store.Put(domain.SettingPortalURL, u.String()); err != nil {
		return fmt.Errorf("save portal url: %w", err)
	}
	return nil
}

// storedSettings reads typed values from a ConfigStore, returning the
// fallback when a key is unset or holds something unusable.
type storedSettings struct {
	store driven.ConfigStore
}

func (r storedSettings) text(key domain.SettingKey, fallback string) string {
	v, _ := r.store.Value(key)
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func (r storedSettings) number(key domain.SettingKey) (float64, bool) {
	v, ok := r.store.Value(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func (r storedSettings) positiveInt(key domain.SettingKey, fallback int) int {
	if n, ok := r.number(key); ok && n >= 1 {
		return int(n)
	}
	return fallback
}

func (r storedSettings) positiveFloat(key domain.SettingKey, fallback float64) float64 {
	if n, ok := r.number(key); ok && n > 0 {
		return n
	}
	return fallback
}

func (r storedSettings) seconds(key domain.SettingKey, fallback time.Duration) time.Duration {
	if n, ok := r.number(key); ok && n > 0 {
		return time.Duration(n * float64(time.Second))
	}
	return fallback
}

func (r storedSettings) flag(key domain.SettingKey, fallback bool) bool {
	v, _ := r.store.Value(key)
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}

// list accepts []string or a decoded TOML array, keeping only strings.
func (r storedSettings) list(key domain.SettingKey, fallback []string) []string {
	v, _ := r.store.Value(key)
	var out []string
	switch items := v.(type) {
	case []string:
		out = items
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
