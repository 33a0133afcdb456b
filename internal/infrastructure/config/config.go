package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config carries every setting the service reads from the environment.
// Credentials are required so a missing key fails startup loudly instead of
// degrading into silent no-op adapters.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// EmployeeDomain is the organizational email domain; it drives email
	// derivation and the offboarding safety gate.
	EmployeeDomain string `env:"EMPLOYEE_DOMAIN, default=tjr-trades.com"`
	// AreaCode restricts the telephony pool closers are provisioned from.
	AreaCode string `env:"PHONE_AREA_CODE, default=650"`

	Google   GoogleConfig
	Calendly CalendlyConfig
	Zoom     ZoomConfig
	Twilio   TwilioConfig
	GHL      GHLConfig
	Whop     WhopConfig
}

// GoogleConfig configures the directory adapter (service-account JWT with
// domain-wide delegation).
type GoogleConfig struct {
	ServiceAccountEmail string `env:"GOOGLE_WORKSPACE_SERVICE_ACCOUNT_EMAIL"`
	PrivateKey          string `env:"GOOGLE_WORKSPACE_PRIVATE_KEY"`
	AdminEmail          string `env:"GOOGLE_WORKSPACE_ADMIN_EMAIL"`
	CustomerID          string `env:"GOOGLE_WORKSPACE_CUSTOMER_ID, default=my_customer"`
}

// CalendlyConfig configures the scheduling adapter (long-lived bearer key).
type CalendlyConfig struct {
	APIKey    string `env:"CALENDLY_API_KEY"`
	SeatLimit int    `env:"CALENDLY_SEAT_LIMIT, default=0"`
}

// ZoomConfig configures the video adapter (server-to-server OAuth).
type ZoomConfig struct {
	AccountID    string `env:"ZOOM_ACCOUNT_ID"`
	ClientID     string `env:"ZOOM_CLIENT_ID"`
	ClientSecret string `env:"ZOOM_CLIENT_SECRET"`
	LicenseLimit int    `env:"ZOOM_LICENSE_LIMIT, default=0"`
}

// TwilioConfig configures the telephony adapter (basic-auth REST API).
type TwilioConfig struct {
	AccountSID          string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken           string `env:"TWILIO_AUTH_TOKEN"`
	MessagingServiceSID string `env:"TWILIO_MESSAGING_SERVICE_SID"`
	CampaignSID         string `env:"TWILIO_CAMPAIGN_SID"`
}

// GHLConfig configures the CRM adapter.
type GHLConfig struct {
	APIKey     string `env:"GHL_API_KEY"`
	LocationID string `env:"GHL_LOCATION_ID"`
}

// WhopConfig configures the payment-link adapter. The two priority products
// are fetched first and are the only sources for the fast per-closer lookup.
type WhopConfig struct {
	APIKey             string `env:"WHOP_API_KEY"`
	CompanyID          string `env:"WHOP_COMPANY_ID"`
	BlueprintProductID string `env:"WHOP_BLUEPRINT_PRODUCT_ID"`
	DepositProductID   string `env:"WHOP_DEPOSIT_PRODUCT_ID"`
}

// Load reads configuration from environment variables using go-envconfig and
// verifies that every platform credential is present.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate reports every missing required credential at once so operators
// can fix the environment in a single pass.
func (c *Config) validate() error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	require("GOOGLE_WORKSPACE_SERVICE_ACCOUNT_EMAIL", c.Google.ServiceAccountEmail)
	require("GOOGLE_WORKSPACE_PRIVATE_KEY", c.Google.PrivateKey)
	require("GOOGLE_WORKSPACE_ADMIN_EMAIL", c.Google.AdminEmail)
	require("CALENDLY_API_KEY", c.Calendly.APIKey)
	require("ZOOM_ACCOUNT_ID", c.Zoom.AccountID)
	require("ZOOM_CLIENT_ID", c.Zoom.ClientID)
	require("ZOOM_CLIENT_SECRET", c.Zoom.ClientSecret)
	require("TWILIO_ACCOUNT_SID", c.Twilio.AccountSID)
	require("TWILIO_AUTH_TOKEN", c.Twilio.AuthToken)
	require("TWILIO_MESSAGING_SERVICE_SID", c.Twilio.MessagingServiceSID)
	require("GHL_API_KEY", c.GHL.APIKey)
	require("GHL_LOCATION_ID", c.GHL.LocationID)
	require("WHOP_API_KEY", c.Whop.APIKey)
	require("WHOP_COMPANY_ID", c.Whop.CompanyID)

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %v", missing)
	}
	return nil
}
