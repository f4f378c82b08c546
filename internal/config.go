package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the user configuration file
type Config struct {
	Provider     string         `yaml:"provider,omitempty"`
	Personality  string         `yaml:"personality,omitempty"`
	Model        string         `yaml:"model,omitempty"`
	SystemPrompt string         `yaml:"system_prompt,omitempty"`
	Temperature  float32        `yaml:"temperature,omitempty"`
	Timeout      time.Duration  `yaml:"timeout,omitempty"`
	BaseURL      string         `yaml:"base_url,omitempty"`
	APIKeyEnv    string         `yaml:"api_key_env,omitempty"`
	SecretsFile  string         `yaml:"secrets_file,omitempty"`
	UseSecrets   *bool          `yaml:"use_secrets,omitempty"`
	Personas     []Personality  `yaml:"personalities,omitempty"`
	Models       []ModelPricing `yaml:"models,omitempty"`
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/persona-chat (or the OS equivalent)
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".persona-chat"
	}
	return filepath.Join(dir, "persona-chat")
}

// DefaultConfigPath returns the config.yaml path inside DefaultConfigDir
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	useSecrets := true
	return &Config{
		Provider:     "openai",
		SystemPrompt: DefaultSystemText,
		Temperature:  defaultTemperature,
		Timeout:      defaultTimeout,
		APIKeyEnv:    DefaultAPIKeyEnv,
		SecretsFile:  filepath.Join(DefaultConfigDir(), "secrets.env"),
		UseSecrets:   &useSecrets,
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			LogDebug("No config file at %s, using defaults", path)
			return cfg, nil
		}
		return nil, &FileError{Path: path, Op: "read", Err: err}
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.merge(&fileCfg)
	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.Provider != "" {
		c.Provider = o.Provider
	}
	if o.Personality != "" {
		c.Personality = o.Personality
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.SystemPrompt != "" {
		c.SystemPrompt = o.SystemPrompt
	}
	if o.Temperature != 0 {
		c.Temperature = o.Temperature
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.APIKeyEnv != "" {
		c.APIKeyEnv = o.APIKeyEnv
	}
	if o.SecretsFile != "" {
		c.SecretsFile = expandHome(o.SecretsFile)
	}
	if o.UseSecrets != nil {
		c.UseSecrets = o.UseSecrets
	}
	c.Personas = append(c.Personas, o.Personas...)
	c.Models = append(c.Models, o.Models...)
}

// SecretsEnabled reports whether the secrets file should be consulted
func (c *Config) SecretsEnabled() bool {
	return c.UseSecrets == nil || *c.UseSecrets
}

// Catalogs builds the personality and pricing catalogs from the built-ins plus config entries
func (c *Config) Catalogs() (*PersonalityCatalog, *PricingTable, error) {
	personalities, err := NewPersonalityCatalog(MergePersonalities(BuiltinPersonalities, c.Personas))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid personalities: %w", err)
	}
	pricing, err := NewPricingTable(MergePricing(BuiltinPricing, c.Models))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid models: %w", err)
	}
	return personalities, pricing, nil
}

// GatewayOptions returns the options for NewGateway
func (c *Config) GatewayOptions() GatewayOptions {
	return GatewayOptions{
		Provider:    c.Provider,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
}

// CredentialProviders returns the fallback providers after the explicit field:
// environment variable, then the secrets file when enabled.
func (c *Config) CredentialProviders() CredentialChain {
	key := c.APIKeyEnv
	if key == "" {
		key = DefaultAPIKeyEnv
	}
	chain := CredentialChain{EnvCredential{Var: key}}
	if c.SecretsEnabled() && c.SecretsFile != "" {
		chain = append(chain, DotenvCredential{Path: c.SecretsFile, Key: key})
	}
	return chain
}

// NewSession builds a session from the config, healing unknown selections to
// the catalog defaults with a warning.
func (c *Config) NewSession() (*SessionState, error) {
	personalities, pricing, err := c.Catalogs()
	if err != nil {
		return nil, err
	}
	session := NewSessionState(personalities, pricing)
	if c.Personality != "" {
		if err := session.SelectPersonality(c.Personality); err != nil {
			LogWarn("Unknown personality %q in config, using %q", c.Personality, session.Config().SelectedPersonality)
		}
	}
	if c.Model != "" {
		if err := session.SelectModel(c.Model); err != nil {
			LogWarn("Unknown model %q in config, using %q", c.Model, session.Config().SelectedModel)
		}
	}
	return session, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
