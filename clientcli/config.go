package clientcli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the default gateway URL.
const DefaultEndpoint = "http://localhost:7878"

// Profile is a named gateway endpoint plus the tenant identifiers sent with
// every request made through it.
type Profile struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	ClientID string `yaml:"client_id,omitempty"`
	UserID   string `yaml:"user_id,omitempty"`
	RoleID   string `yaml:"role_id,omitempty"`
	Default  bool   `yaml:"default,omitempty"`
}

// Normalize trims the identifiers and the endpoint's trailing slash, then
// checks the profile can address a tenant: an http(s) endpoint and a client id.
func (p *Profile) Normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Endpoint = strings.TrimSuffix(strings.TrimSpace(p.Endpoint), "/")
	p.ClientID = strings.TrimSpace(p.ClientID)
	p.UserID = strings.TrimSpace(p.UserID)
	p.RoleID = strings.TrimSpace(p.RoleID)

	if p.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidEndpoint)
	}
	if err := (&Config{Endpoint: p.Endpoint}).Validate(); err != nil {
		return err
	}
	if p.ClientID == "" {
		return ErrClientIDRequired
	}
	return nil
}

// Config returns the request defaults the profile carries. A nil profile
// yields an empty Config.
func (p *Profile) Config() *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Endpoint: p.Endpoint,
		ClientID: p.ClientID,
		UserID:   p.UserID,
		RoleID:   p.RoleID,
	}
}

// ConfigFile is the on-disk list of profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

func (c *ConfigFile) index(name string) int {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return i
		}
	}
	return -1
}

// Lookup returns the named profile, or the default one when name is empty.
// The default is the profile marked default, else the first.
func (c *ConfigFile) Lookup(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		for i := range c.Profiles {
			if c.Profiles[i].Default {
				return &c.Profiles[i], nil
			}
		}
		return &c.Profiles[0], nil
	}

	if i := c.index(name); i >= 0 {
		return &c.Profiles[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// DefaultName returns the name of the default profile, or "" with no profiles.
func (c *ConfigFile) DefaultName() string {
	p, err := c.Lookup("")
	if err != nil {
		return ""
	}
	return p.Name
}

// Put normalizes p and stores it, replacing a profile of the same name. The
// first profile stored always becomes the default. It reports whether p was new.
func (c *ConfigFile) Put(p Profile, makeDefault bool) (bool, error) {
	if err := p.Normalize(); err != nil {
		return false, err
	}
	if p.Name == "" {
		return false, fmt.Errorf("profile name is required")
	}

	i := c.index(p.Name)
	created := i < 0
	if created {
		c.Profiles = append(c.Profiles, p)
	} else {
		p.Default = c.Profiles[i].Default
		c.Profiles[i] = p
	}

	if makeDefault || len(c.Profiles) == 1 {
		return created, c.SetDefault(p.Name)
	}
	return created, nil
}

// Remove deletes a profile. Removing the default hands the flag to the first
// remaining profile.
func (c *ConfigFile) Remove(name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	wasDefault := c.Profiles[i].Default
	c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
	if wasDefault && len(c.Profiles) > 0 {
		c.Profiles[0].Default = true
	}
	return nil
}

// SetDefault marks name as the default profile and clears the flag elsewhere.
func (c *ConfigFile) SetDefault(name string) error {
	if c.index(name) < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	for i := range c.Profiles {
		c.Profiles[i].Default = c.Profiles[i].Name == name
	}
	return nil
}

// Save writes the config to path, creating the parent directory.
func (c *ConfigFile) Save(path string) error {
	cleanPath := filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// LoadConfigFile loads the config file from the specified path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigPath returns ~/.s3gateway/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".s3gateway", "config.yaml")
}

// Config holds resolved client configuration for a single gateway.
// The identifier fields fill in requests that leave them blank.
type Config struct {
	Endpoint string
	ClientID string
	UserID   string
	RoleID   string
}

// Validate checks the endpoint, if set, is an absolute http(s) URL.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return nil
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Endpoint)
	}
	return nil
}

// WithDefaults returns a copy of the config with DefaultEndpoint applied.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &cfg
}

// Apply fills blank tenant identifiers in ids from the config.
func (c *Config) Apply(ids Identifiers) Identifiers {
	if strings.TrimSpace(ids.ClientID) == "" {
		ids.ClientID = c.ClientID
	}
	if strings.TrimSpace(ids.UserID) == "" {
		ids.UserID = c.UserID
	}
	if strings.TrimSpace(ids.RoleID) == "" {
		ids.RoleID = c.RoleID
	}
	return ids
}

// ConfigFromEnv loads config from S3GATEWAY_* environment variables.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint: os.Getenv("S3GATEWAY_ENDPOINT"),
		ClientID: os.Getenv("S3GATEWAY_CLIENT_ID"),
		UserID:   os.Getenv("S3GATEWAY_USER_ID"),
		RoleID:   os.Getenv("S3GATEWAY_ROLE_ID"),
	}
}

// ProfileFromEnv returns the profile name from S3GATEWAY_PROFILE.
func ProfileFromEnv() string {
	return os.Getenv("S3GATEWAY_PROFILE")
}

// ConfigPathFromEnv returns the config file path from S3GATEWAY_CLI_CONFIG.
func ConfigPathFromEnv() string {
	return os.Getenv("S3GATEWAY_CLI_CONFIG")
}

// MergeConfig merges configs with later ones taking precedence. Empty strings
// never override.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
		if cfg.ClientID != "" {
			result.ClientID = cfg.ClientID
		}
		if cfg.UserID != "" {
			result.UserID = cfg.UserID
		}
		if cfg.RoleID != "" {
			result.RoleID = cfg.RoleID
		}
	}
	return result
}
