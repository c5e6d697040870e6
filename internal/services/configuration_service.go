package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"aegis/internal/logger"
)

// Supported capability providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOffline   = "offline"
)

// Configuration keys as seen by viper. Flags bound by the CLI use the same names.
const (
	KeyProvider = "provider"
	KeyModel    = "model"
	KeyRoot     = "root"
	KeyJournal  = "journal"
	KeyBaseURL  = "base_url"
)

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[string]string{
	ProviderGemini:    "gemini-1.5-flash-latest",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

// envBindings lists, per key, the environment variables consulted in priority order.
var envBindings = map[string][]string{
	KeyProvider:                  {"AEGIS_PROVIDER"},
	KeyModel:                     {"AEGIS_MODEL"},
	KeyRoot:                      {"AEGIS_ROOT"},
	KeyJournal:                   {"AEGIS_JOURNAL"},
	KeyBaseURL:                   {"AEGIS_BASE_URL"},
	apiKeyKey(ProviderGemini):    {"AEGIS_GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"},
	apiKeyKey(ProviderOpenAI):    {"AEGIS_OPENAI_API_KEY", "OPENAI_API_KEY"},
	apiKeyKey(ProviderAnthropic): {"AEGIS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
}

func apiKeyKey(provider string) string {
	return provider + "_api_key"
}

// ProviderConfig describes the capability to construct.
type ProviderConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string // Optional endpoint override
}

// Offline reports whether no live capability is configured.
func (p ProviderConfig) Offline() bool {
	return p.Provider == ProviderOffline
}

// Config is the resolved runtime configuration.
type Config struct {
	Provider    ProviderConfig
	Root        string   // Directory holding projects/ and templates/
	JournalPath string   // Empty disables the journal
	Sources     []string // Configuration files that were read
}

// ConfigurationOptions locates the configuration files.
type ConfigurationOptions struct {
	ConfigDir string // Defaults to ~/.config/aegis
	WorkDir   string // Defaults to the process working directory
	TestMode  bool   // Skips .env files for deterministic runs
}

// ConfigurationService resolves Aegis configuration from, highest priority first:
// CLI flags, environment variables, the local .env, the config-directory .env,
// the config-directory config.yaml and built-in defaults.
type ConfigurationService struct {
	v    *viper.Viper
	opts ConfigurationOptions
}

// NewConfigurationService creates a service reading through v. Passing the global
// viper instance lets CLI flags bound with viper.BindPFlag take precedence.
func NewConfigurationService(v *viper.Viper, opts ConfigurationOptions) *ConfigurationService {
	if v == nil {
		v = viper.New()
	}
	if opts.ConfigDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.ConfigDir = filepath.Join(home, ".config", "aegis")
		}
	}
	if opts.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.WorkDir = wd
		}
	}
	return &ConfigurationService{v: v, opts: opts}
}

// Name returns the service name.
func (c *ConfigurationService) Name() string {
	return "configuration"
}

// Load resolves the configuration. A missing API key is not an error: the provider
// falls back to offline simulation mode.
func (c *ConfigurationService) Load() (*Config, error) {
	v := c.v
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := c.loadFiles(cfg); err != nil {
		return nil, err
	}

	provider := strings.ToLower(strings.TrimSpace(v.GetString(KeyProvider)))
	if provider == "" {
		provider = ProviderGemini
	}
	if _, known := DefaultModels[provider]; !known && provider != ProviderOffline {
		return nil, fmt.Errorf("unsupported provider '%s' (expected gemini, openai, anthropic or offline)", provider)
	}

	model := strings.TrimSpace(v.GetString(KeyModel))
	if model == "" {
		model = DefaultModels[provider]
	}

	cfg.Provider = ProviderConfig{
		Provider: provider,
		Model:    model,
		BaseURL:  strings.TrimSpace(v.GetString(KeyBaseURL)),
	}
	if provider != ProviderOffline {
		cfg.Provider.APIKey = strings.TrimSpace(v.GetString(apiKeyKey(provider)))
		if cfg.Provider.APIKey == "" {
			logger.Warn("No API key configured, running in offline simulation mode", "provider", provider)
			cfg.Provider.Provider = ProviderOffline
		}
	}

	cfg.Root = strings.TrimSpace(v.GetString(KeyRoot))
	if cfg.Root == "" {
		cfg.Root = "."
	}
	cfg.Root = filepath.Clean(cfg.Root)

	// An explicitly empty AEGIS_JOURNAL disables the journal.
	cfg.JournalPath = filepath.Join(cfg.Root, ".aegis", "journal.db")
	if value, ok := os.LookupEnv("AEGIS_JOURNAL"); ok {
		cfg.JournalPath = strings.TrimSpace(value)
	} else if v.IsSet(KeyJournal) {
		cfg.JournalPath = strings.TrimSpace(v.GetString(KeyJournal))
	}

	logger.Debug("Configuration loaded",
		"provider", cfg.Provider.Provider, "model", cfg.Provider.Model,
		"root", cfg.Root, "journal", cfg.JournalPath, "sources", len(cfg.Sources))
	return cfg, nil
}

// loadFiles merges config files into viper's config layer, lowest priority first.
func (c *ConfigurationService) loadFiles(cfg *Config) error {
	if c.opts.ConfigDir != "" {
		yamlPath := filepath.Join(c.opts.ConfigDir, "config.yaml")
		if fileExists(yamlPath) {
			c.v.SetConfigFile(yamlPath)
			if err := c.v.MergeInConfig(); err != nil {
				return fmt.Errorf("failed to read %s: %w", yamlPath, err)
			}
			cfg.Sources = append(cfg.Sources, yamlPath)
		}
	}

	if c.opts.TestMode {
		return nil
	}

	var envFiles []string
	if c.opts.ConfigDir != "" {
		envFiles = append(envFiles, filepath.Join(c.opts.ConfigDir, ".env"))
	}
	if c.opts.WorkDir != "" {
		envFiles = append(envFiles, filepath.Join(c.opts.WorkDir, ".env"))
	}

	for _, path := range envFiles {
		if !fileExists(path) {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("failed to parse .env file %s: %w", path, err)
		}
		if err := c.v.MergeConfigMap(dotEnvToConfigMap(values)); err != nil {
			return fmt.Errorf("failed to merge .env file %s: %w", path, err)
		}
		cfg.Sources = append(cfg.Sources, path)
	}
	return nil
}

// dotEnvToConfigMap translates environment-style names from a .env file into viper keys.
// Unknown names are ignored.
func dotEnvToConfigMap(values map[string]string) map[string]any {
	out := make(map[string]any)
	for key, envs := range envBindings {
		// Later names in a binding have lower priority, so walk them in reverse.
		for i := len(envs) - 1; i >= 0; i-- {
			if value, ok := values[envs[i]]; ok {
				out[key] = value
			}
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
