package driving

import "github.com/custodia-labs/dealer-capture/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves settings: environment defaults overlaid with stored values.
	Get() (*domain.AppSettings, error)

	// SetEnvironment switches between sandbox and production.
	SetEnvironment(env domain.Environment) error

	// SetCredentials stores the FBR token and POS id.
	SetCredentials(token string, posID int) error

	// SetPortalURL stores the portal URL opened by capture.
	SetPortalURL(url string) error
}
