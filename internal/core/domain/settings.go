package domain

import "time"

const unknownDescription = "Unknown"

// Environment selects the FBR endpoint family.
type Environment string

// Available environments.
const (
	// EnvironmentSandbox posts to the FBR sandbox.
	EnvironmentSandbox Environment = "sandbox"

	// EnvironmentProduction posts to the live FBR gateway.
	EnvironmentProduction Environment = "production"
)

// IsValid returns true if the environment is recognised.
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentSandbox, EnvironmentProduction:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (e Environment) String() string {
	return string(e)
}

// Description returns a human-readable description of the environment.
func (e Environment) Description() string {
	switch e {
	case EnvironmentSandbox:
		return "Sandbox (FBR test gateway)"
	case EnvironmentProduction:
		return "Production (FBR live gateway)"
	default:
		return unknownDescription
	}
}

// FBR endpoints per environment.
const (
	SandboxEndpoint    = "https://esp.fbr.gov.pk:8244/FBR/v1/api/Live/PostData"
	ProductionEndpoint = "https://gw.fbr.gov.pk/imsp/v1/api/Live/PostData"
)

// FBRSettings configures the remote submit capability.
type FBRSettings struct {
	// Environment selects sandbox or production.
	Environment Environment

	// Endpoint is the PostData URL.
	Endpoint string

	// Token is the bearer token issued by FBR.
	Token string

	// POSID is the registered point-of-sale identifier.
	POSID int

	// Timeout bounds one HTTP round trip.
	Timeout time.Duration

	// MaxAttempts is the in-call retry budget for 5xx/429/transport failures.
	MaxAttempts int

	// RequestsPerSecond throttles submissions.
	RequestsPerSecond float64
}

// SyncSettings configures the sync engine schedule.
type SyncSettings struct {
	// OnlineInterval is the cycle period while online.
	OnlineInterval time.Duration

	// MinSleep is the floor between online cycles.
	MinSleep time.Duration

	// InitialBackoff is the first offline wait.
	InitialBackoff time.Duration

	// BackoffFactor multiplies the offline wait after each offline cycle.
	BackoffFactor float64

	// MaxBackoff caps the offline wait.
	MaxBackoff time.Duration

	// ProbeEndpoints are tried in order; the first reachable one means online.
	ProbeEndpoints []string

	// ProbeTimeout bounds one reachability check.
	ProbeTimeout time.Duration

	// StopTimeout bounds how long Stop waits for the loop to exit.
	StopTimeout time.Duration
}

// CaptureSettings configures the capture session controller.
type CaptureSettings struct {
	// PortalURL is opened when no URL is given.
	PortalURL string

	// Headless runs the browser without a window.
	Headless bool

	// PumpInterval is the bounded wait of the automation loop.
	PumpInterval time.Duration

	// SnapshotTimeout bounds the page HTML read at submission.
	SnapshotTimeout time.Duration

	// DiscardInvalidSubmissions drops submissions the page flagged with
	// validation errors instead of storing them.
	DiscardInvalidSubmissions bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	FBR     FBRSettings
	Sync    SyncSettings
	Capture CaptureSettings
}

// ResolveSettings returns the defaults for an environment. Unknown
// environments resolve to sandbox.
func ResolveSettings(env Environment) AppSettings {
	if !env.IsValid() {
		env = EnvironmentSandbox
	}

	settings := AppSettings{
		FBR: FBRSettings{
			Environment:       env,
			Timeout:           30 * time.Second,
			MaxAttempts:       3,
			RequestsPerSecond: 2,
		},
		Sync: SyncSettings{
			OnlineInterval: 10 * time.Second,
			MinSleep:       1 * time.Second,
			InitialBackoff: 5 * time.Second,
			BackoffFactor:  1.5,
			MaxBackoff:     60 * time.Second,
			ProbeEndpoints: []string{
				"https://www.google.com",
				"https://www.cloudflare.com",
				"https://gw.fbr.gov.pk",
			},
			ProbeTimeout: 5 * time.Second,
			StopTimeout:  5 * time.Second,
		},
		Capture: CaptureSettings{
			PumpInterval:    500 * time.Millisecond,
			SnapshotTimeout: 3 * time.Second,
		},
	}

	switch env {
	case EnvironmentProduction:
		settings.FBR.Endpoint = ProductionEndpoint
	default:
		settings.FBR.Endpoint = SandboxEndpoint
		settings.FBR.POSID = 1
	}

	return settings
}

// AllEnvironments returns all available environments.
func AllEnvironments() []Environment {
	return []Environment{EnvironmentSandbox, EnvironmentProduction}
}

// SettingKey addresses one stored setting. The part before the first dot
// names the table it is written under.
type SettingKey string

// Stored setting keys. Anything not stored falls back to ResolveSettings.
//
//nolint:gosec // G101: key names, not credentials.
const (
	SettingEnvironment       SettingKey = "fbr.environment"
	SettingEndpoint          SettingKey = "fbr.endpoint"
	SettingToken             SettingKey = "fbr.token"
	SettingPOSID             SettingKey = "fbr.pos_id"
	SettingTimeoutSeconds    SettingKey = "fbr.timeout_seconds"
	SettingMaxAttempts       SettingKey = "fbr.max_attempts"
	SettingRequestsPerSecond SettingKey = "fbr.requests_per_second"
	SettingOnlineInterval    SettingKey = "sync.online_interval_seconds"
	SettingInitialBackoff    SettingKey = "sync.initial_backoff_seconds"
	SettingMaxBackoff        SettingKey = "sync.max_backoff_seconds"
	SettingProbeEndpoints    SettingKey = "sync.probe_endpoints"
	SettingPortalURL         SettingKey = "capture.portal_url"
	SettingHeadless          SettingKey = "capture.headless"
	SettingDiscardInvalid    SettingKey = "capture.discard_invalid_submissions"
)

// String returns the dotted key.
func (k SettingKey) String() string {
	return string(k)
}
