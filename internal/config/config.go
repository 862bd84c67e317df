package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DefaultPort = 3000
)

// LoadFromBytes loads configuration from YAML bytes with environment variable
// expansion, then applies environment overrides and defaults.
func LoadFromBytes(data []byte) (Config, error) {
	var c Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return c, err
	}
	c.Normalize()
	return c, nil
}

// parseBool parses a string as boolean with a default value.
// Accepts: "true", "1", "yes" as true; empty or other values return default.
func parseBool(s string, defaultVal bool) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return defaultVal
	}
	return s == "true" || s == "1" || s == "yes"
}

type Config struct {
	App struct {
		Name    string `yaml:"name"`
		BaseURL string `yaml:"baseURL"`
		Env     string `yaml:"env"`
		Version string `yaml:"-"`
	} `yaml:"app"`
	Server struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		StaticDir       string        `yaml:"staticDir"`
		DevServerURL    string        `yaml:"devServerURL"`
		MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	} `yaml:"server"`
	Google struct {
		ClientID        string        `yaml:"clientID"`
		ClientSecret    string        `yaml:"clientSecret"`
		ExchangeTimeout time.Duration `yaml:"exchangeTimeout"`
	} `yaml:"google"`
	Session struct {
		CookieName string `yaml:"cookieName"`
		Secret     string `yaml:"secret"`
		MaxAgeDays int    `yaml:"maxAgeDays"`
		Secure     string `yaml:"secure"`
	} `yaml:"session"`
	Drive struct {
		BackupFolder string        `yaml:"backupFolder"`
		UploadFolder string        `yaml:"uploadFolder"`
		Retention    int           `yaml:"retention"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"drive"`
	Supervisor struct {
		DevCommand     string        `yaml:"devCommand"`
		ProjectRoot    string        `yaml:"projectRoot"`
		StartupTimeout time.Duration `yaml:"startupTimeout"`
		ProbeInterval  time.Duration `yaml:"probeInterval"`
		StopTimeout    time.Duration `yaml:"stopTimeout"`
	} `yaml:"supervisor"`
	Security struct {
		RateLimitEnabled      string  `yaml:"rateLimitEnabled"`
		RateLimitPerSecond    float64 `yaml:"rateLimitPerSecond"`
		RateLimitBurst        int     `yaml:"rateLimitBurst"`
		EnableSecurityHeaders string  `yaml:"enableSecurityHeaders"`
	} `yaml:"security"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// ApplyEnv overrides file values with the recognised environment variables.
// Empty variables leave the file value untouched.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		c.Server.Port = port
	}
	if v := strings.TrimSpace(getenv("APP_URL")); v != "" {
		c.App.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("APP_ENV")); v != "" {
		c.App.Env = v
	} else if v := strings.TrimSpace(getenv("NODE_ENV")); v != "" {
		c.App.Env = v
	}
	if v := getenv("GOOGLE_CLIENT_ID"); v != "" {
		c.Google.ClientID = v
	}
	if v := getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		c.Google.ClientSecret = v
	}
	if v := getenv("SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.App.Name == "" {
		c.App.Name = "PromptMetal"
	}
	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))
	if c.App.Env != EnvDevelopment {
		c.App.Env = EnvProduction
	}
	c.App.BaseURL = strings.TrimRight(c.App.BaseURL, "/")
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "dist"
	}
	if c.Server.DevServerURL == "" {
		c.Server.DevServerURL = "http://localhost:5173"
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 50 << 20
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Google.ExchangeTimeout <= 0 {
		c.Google.ExchangeTimeout = 15 * time.Second
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "google_tokens"
	}
	if c.Session.MaxAgeDays <= 0 {
		c.Session.MaxAgeDays = 30
	}
	if c.Drive.BackupFolder == "" {
		c.Drive.BackupFolder = "PromptMetal Backups"
	}
	if c.Drive.UploadFolder == "" {
		c.Drive.UploadFolder = "PromptMetal Files"
	}
	if c.Drive.Retention <= 0 {
		c.Drive.Retention = 3
	}
	if c.Drive.Timeout <= 0 {
		c.Drive.Timeout = 60 * time.Second
	}
	if c.Supervisor.DevCommand == "" {
		c.Supervisor.DevCommand = "go run . serve"
	}
	if c.Supervisor.ProjectRoot == "" {
		c.Supervisor.ProjectRoot = "."
	}
	if c.Supervisor.StartupTimeout <= 0 {
		c.Supervisor.StartupTimeout = 30 * time.Second
	}
	if c.Supervisor.ProbeInterval <= 0 {
		c.Supervisor.ProbeInterval = 250 * time.Millisecond
	}
	if c.Supervisor.StopTimeout <= 0 {
		c.Supervisor.StopTimeout = 5 * time.Second
	}
	if c.Security.RateLimitPerSecond <= 0 {
		c.Security.RateLimitPerSecond = 10
	}
	if c.Security.RateLimitBurst <= 0 {
		c.Security.RateLimitBurst = 30
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c Config) IsProduction() bool {
	return c.App.Env != EnvDevelopment
}

func (c Config) IsSecureCookie() bool {
	return parseBool(c.Session.Secure, true)
}

func (c Config) IsRateLimitEnabled() bool {
	return parseBool(c.Security.RateLimitEnabled, true)
}

func (c Config) IsSecurityHeadersEnabled() bool {
	return parseBool(c.Security.EnableSecurityHeaders, true)
}

func (c Config) IsGoogleConfigured() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

// Addr is the address the backend binds.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// BaseURL is the externally visible base URL: APP_URL when set, otherwise
// http://localhost:<port>.
func (c Config) BaseURL() string {
	if c.App.BaseURL != "" {
		return c.App.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

// RedirectURL is the OAuth redirect URI registered with Google.
func (c Config) RedirectURL() string {
	return c.BaseURL() + "/auth/google/callback"
}

// SessionMaxAge is the lifetime of the session cookie.
func (c Config) SessionMaxAge() time.Duration {
	return time.Duration(c.Session.MaxAgeDays) * 24 * time.Hour
}
