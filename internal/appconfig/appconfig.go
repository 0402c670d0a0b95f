package appconfig

import (
	"bytes"
	"errors"
	"html/template"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config holds all configuration details
type Config struct {
	Host      string          `yaml:"host"`
	BasePath  string          `yaml:"basePath"`
	Database  DatabaseConfig  `yaml:"database"`
	Pulsar    PulsarConfig    `yaml:"pulsar"`
	Auth      AuthConfig      `yaml:"auth"`
	S3        S3Config        `yaml:"s3"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Health    HealthConfig    `yaml:"health"`
	Groups    GroupsConfig    `yaml:"groups"`
	Semester  SemesterConfig  `yaml:"semester"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL           string `yaml:"url"`
	TopicProducer string `yaml:"topicProducer"`
}

// AuthConfig defines the access gate policy: which routes are public, which
// email domain is allowed in and where denied requests are redirected.
type AuthConfig struct {
	AllowedEmailDomain string   `yaml:"allowedEmailDomain"`
	PublicRoutes       []string `yaml:"publicRoutes"`
	AdminPrefix        string   `yaml:"adminPrefix"`
	SignInPath         string   `yaml:"signInPath"`
	UnauthorizedPath   string   `yaml:"unauthorizedPath"`
	DefaultPath        string   `yaml:"defaultPath"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

// RateLimitConfig defines the per-IP request throttle. RedisURL is optional;
// when empty the counter store is an in-process map.
type RateLimitConfig struct {
	MaxRequests   int    `yaml:"maxRequests"`
	WindowSeconds int    `yaml:"windowSeconds"`
	RedisURL      string `yaml:"redisUrl"`
}

// HealthConfig bounds the health probes.
type HealthConfig struct {
	LatencyThresholdMS    int `yaml:"latencyThresholdMs"`
	ProbeTimeoutSeconds   int `yaml:"probeTimeoutSeconds"`
	IncidentWindowMinutes int `yaml:"incidentWindowMinutes"`
}

// GroupsConfig caps presentation group membership.
type GroupsConfig struct {
	MaxMembers int `yaml:"maxMembers"`
}

// SemesterConfig names the semester whose course files are currently readable.
type SemesterConfig struct {
	Active string `yaml:"active"`
}

// LoadConfig loads and parses the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		err := errors.New("config file path is required")
		log.Error().Err(err).Msg("config file not provided")
		return nil, err
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Error().Err(err).Msg("error parsing config file template")
		return nil, err
	}

	// Create a map of environment variables
	envVars := loadEnvVars()

	// Execute the template with environment variables
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, envVars)
	if err != nil {
		log.Error().Err(err).Msg("error executing config file template")
		return nil, err
	}

	// Load and unmarshal the YAML
	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config YAML")
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// MissingRequired lists required configuration values that are unset. The
// health reporter treats any missing value as unhealthy.
func (c *Config) MissingRequired() []string {
	var missing []string
	if c.Database.Source == "" {
		missing = append(missing, "database.source")
	}
	if c.S3.Bucket == "" {
		missing = append(missing, "s3.bucket")
	}
	if c.Auth.AllowedEmailDomain == "" {
		missing = append(missing, "auth.allowedEmailDomain")
	}
	return missing
}

func applyDefaults(c *Config) {
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 60
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Health.LatencyThresholdMS == 0 {
		c.Health.LatencyThresholdMS = 500
	}
	if c.Health.ProbeTimeoutSeconds == 0 {
		c.Health.ProbeTimeoutSeconds = 2
	}
	if c.Health.IncidentWindowMinutes == 0 {
		c.Health.IncidentWindowMinutes = 60
	}
	if c.Groups.MaxMembers == 0 {
		c.Groups.MaxMembers = 6
	}
	if len(c.Auth.PublicRoutes) == 0 {
		c.Auth.PublicRoutes = []string{"/health", "/blob-download"}
	}
	if c.Auth.AdminPrefix == "" {
		c.Auth.AdminPrefix = "/api/admin"
	}
	if c.Auth.SignInPath == "" {
		c.Auth.SignInPath = "/signin"
	}
	if c.Auth.UnauthorizedPath == "" {
		c.Auth.UnauthorizedPath = "/unauthorized"
	}
	if c.Auth.DefaultPath == "" {
		c.Auth.DefaultPath = "/dashboard"
	}
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
