package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is empty because every field tag carries the full TIENDAFACIL_ name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	API    APIConfig
	Auth   AuthConfig
	Tenant TenantConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validateBaseURL(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIENDAFACIL_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"TIENDAFACIL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIENDAFACIL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL string        `envconfig:"TIENDAFACIL_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"TIENDAFACIL_API_TIMEOUT" default:"10s"`
}

type AuthConfig struct {
	Token string `envconfig:"TIENDAFACIL_API_TOKEN" required:"true"`
}

type TenantConfig struct {
	TenantID string `envconfig:"TIENDAFACIL_TENANT_ID" required:"true"`
}

func (a *APIConfig) validateBaseURL() error {
	parsed, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid TIENDAFACIL_API_BASE_URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("TIENDAFACIL_API_BASE_URL must be http or https, got %q", a.BaseURL)
	}
	a.BaseURL = strings.TrimRight(a.BaseURL, "/")
	return nil
}
