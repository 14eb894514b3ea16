package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/model"
)

// Config represents the application configuration file. Every field is
// optional; unset fields keep their defaults.
type Config struct {
	DefaultFormat string `yaml:"default_format,omitempty"`

	// Top-level config sections
	Server *ServerOverrides `yaml:"server,omitempty"`
	GitHub *GitHubOverrides `yaml:"github,omitempty"`
	LLM    *LLMOverrides    `yaml:"llm,omitempty"`
	Cache  *CacheOverrides  `yaml:"cache,omitempty"`
	Search *SearchOverrides `yaml:"search,omitempty"`
}

// ServerOverrides - HTTP server settings
type ServerOverrides struct {
	Addr                     *string  `yaml:"addr,omitempty"`
	CORSOrigins              []string `yaml:"cors_origins,omitempty"`
	ReadHeaderTimeoutSeconds *int     `yaml:"read_header_timeout_seconds,omitempty"`
	ShutdownTimeoutSeconds   *int     `yaml:"shutdown_timeout_seconds,omitempty"`
}

// GitHubOverrides - repository search transport. The token is never read
// from files.
type GitHubOverrides struct {
	BaseURL        *string `yaml:"base_url,omitempty"`
	Proxy          *string `yaml:"proxy,omitempty"`
	TimeoutSeconds *int    `yaml:"timeout_seconds,omitempty"`
}

// LLMOverrides - chat completion endpoint. The API key is never read from
// files.
type LLMOverrides struct {
	BaseURL        *string  `yaml:"base_url,omitempty"`
	Model          *string  `yaml:"model,omitempty"`
	Temperature    *float64 `yaml:"temperature,omitempty"`
	TimeoutSeconds *int     `yaml:"timeout_seconds,omitempty"`
	MaxRetries     *int     `yaml:"max_retries,omitempty"`
}

// CacheOverrides - response cache
type CacheOverrides struct {
	TTLSeconds *int `yaml:"ttl_seconds,omitempty"`
	MaxEntries *int `yaml:"max_entries,omitempty"`
}

// SearchOverrides - defaults applied to every search request
type SearchOverrides struct {
	PerPage          *int `yaml:"per_page,omitempty"`
	Limit            *int `yaml:"limit,omitempty"`
	PushedWithinDays *int `yaml:"pushed_within_days,omitempty"`
	MinStars         *int `yaml:"min_stars,omitempty"`
	RecommendCount   *int `yaml:"recommend_count,omitempty"`
}

// Env holds the settings read from the environment. Empty or zero values
// mean "not set".
type Env struct {
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIAPIBase   string `envconfig:"OPENAI_API_BASE"`
	OpenAIModel     string `envconfig:"OPENAI_MODEL"`
	GitHubToken     string `envconfig:"GITHUB_TOKEN"`
	GitHubBaseURL   string `envconfig:"GITHUB_BASE_URL"`
	GitHubProxy     string `envconfig:"GITHUB_PROXY"`
	CacheTTLSeconds int    `envconfig:"CACHE_TTL_SECONDS"`
	CORSOrigins     string `envconfig:"CORS_ORIGINS"`
	Addr            string `envconfig:"REPOFINDER_ADDR"`
}

// Settings is the fully resolved configuration used to wire the process.
type Settings struct {
	DefaultFormat string
	Server        ServerSettings
	GitHub        GitHubSettings
	LLM           LLMSettings
	Cache         CacheSettings
	Search        SearchSettings
}

// ServerSettings configures the HTTP server.
type ServerSettings struct {
	Addr              string
	CORSOrigins       []string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// GitHubSettings configures the repository client.
type GitHubSettings struct {
	// Token is intentionally excluded from yaml output.
	Token   string `yaml:"-"`
	BaseURL string
	Proxy   string
	Timeout time.Duration
}

// LLMSettings configures the chat client.
type LLMSettings struct {
	// APIKey is intentionally excluded from yaml output.
	APIKey      string `yaml:"-"`
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// CacheSettings configures the response cache.
type CacheSettings struct {
	TTL        time.Duration
	MaxEntries int
}

// SearchSettings are the request defaults.
type SearchSettings struct {
	PerPage          int
	Limit            int
	PushedWithinDays int
	MinStars         int
	RecommendCount   int
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		DefaultFormat: "table",
		Server: ServerSettings{
			Addr:              constants.DefaultServerAddr,
			CORSOrigins:       []string{"*"},
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			ShutdownTimeout:   constants.DefaultShutdownTimeout,
		},
		GitHub: GitHubSettings{
			BaseURL: constants.DefaultGitHubBaseURL,
			Timeout: constants.DefaultGitHubTimeout,
		},
		LLM: LLMSettings{
			BaseURL:     constants.DefaultLLMBaseURL,
			Model:       constants.DefaultLLMModel,
			Temperature: constants.DefaultLLMTemperature,
			Timeout:     constants.DefaultLLMTimeout,
			MaxRetries:  constants.DefaultLLMMaxRetries,
		},
		Cache: CacheSettings{
			TTL:        constants.DefaultCacheTTL,
			MaxEntries: constants.DefaultCacheEntries,
		},
		Search: SearchSettings{
			PerPage:          constants.DefaultPerPage,
			Limit:            constants.DefaultLimit,
			PushedWithinDays: constants.DefaultPushedWithinDays,
			RecommendCount:   constants.DefaultRecommendCount,
		},
	}
}

// Resolve applies file overrides and then the environment on top of the
// defaults.
func (c *Config) Resolve(env Env) Settings {
	s := DefaultSettings()
	if c == nil {
		c = &Config{}
	}

	if c.DefaultFormat != "" {
		s.DefaultFormat = c.DefaultFormat
	}
	if o := c.Server; o != nil {
		setString(&s.Server.Addr, o.Addr)
		if len(o.CORSOrigins) > 0 {
			s.Server.CORSOrigins = o.CORSOrigins
		}
		setSeconds(&s.Server.ReadHeaderTimeout, o.ReadHeaderTimeoutSeconds)
		setSeconds(&s.Server.ShutdownTimeout, o.ShutdownTimeoutSeconds)
	}
	if o := c.GitHub; o != nil {
		setString(&s.GitHub.BaseURL, o.BaseURL)
		setString(&s.GitHub.Proxy, o.Proxy)
		setSeconds(&s.GitHub.Timeout, o.TimeoutSeconds)
	}
	if o := c.LLM; o != nil {
		setString(&s.LLM.BaseURL, o.BaseURL)
		setString(&s.LLM.Model, o.Model)
		if o.Temperature != nil {
			s.LLM.Temperature = *o.Temperature
		}
		setSeconds(&s.LLM.Timeout, o.TimeoutSeconds)
		setInt(&s.LLM.MaxRetries, o.MaxRetries)
	}
	if o := c.Cache; o != nil {
		setSeconds(&s.Cache.TTL, o.TTLSeconds)
		setInt(&s.Cache.MaxEntries, o.MaxEntries)
	}
	if o := c.Search; o != nil {
		setInt(&s.Search.PerPage, o.PerPage)
		setInt(&s.Search.Limit, o.Limit)
		setInt(&s.Search.PushedWithinDays, o.PushedWithinDays)
		setInt(&s.Search.MinStars, o.MinStars)
		setInt(&s.Search.RecommendCount, o.RecommendCount)
	}

	// Environment wins over files.
	s.LLM.APIKey = env.OpenAIAPIKey
	s.GitHub.Token = env.GitHubToken
	if env.OpenAIAPIBase != "" {
		s.LLM.BaseURL = env.OpenAIAPIBase
	}
	if env.OpenAIModel != "" {
		s.LLM.Model = env.OpenAIModel
	}
	if env.GitHubBaseURL != "" {
		s.GitHub.BaseURL = env.GitHubBaseURL
	}
	if env.GitHubProxy != "" {
		s.GitHub.Proxy = env.GitHubProxy
	}
	if env.CacheTTLSeconds > 0 {
		s.Cache.TTL = time.Duration(env.CacheTTLSeconds) * time.Second
	}
	if origins := splitList(env.CORSOrigins); len(origins) > 0 {
		s.Server.CORSOrigins = origins
	}
	if env.Addr != "" {
		s.Server.Addr = env.Addr
	}
	return s
}

// SearchDefaults returns a request carrying the configured defaults.
func (s Settings) SearchDefaults() model.SearchRequest {
	req := model.NewSearchRequest("")
	if s.Search.PerPage > 0 {
		req.PerPage = s.Search.PerPage
	}
	if s.Search.Limit > 0 {
		req.Limit = s.Search.Limit
	}
	if s.Search.PushedWithinDays >= 0 {
		req.PushedWithinDays = s.Search.PushedWithinDays
	}
	if s.Search.MinStars > 0 {
		req.MinStars = s.Search.MinStars
	}
	return req
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setSeconds(dst *time.Duration, v *int) {
	if v != nil && *v > 0 {
		*dst = time.Duration(*v) * time.Second
	}
}

// LoadEnv reads a dotenv file, when present, into the process environment
// without overriding variables that are already set, then decodes the
// environment.
func LoadEnv(dotenvPath string) (Env, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return env, nil
}

// LoadSettings loads both config files and the environment, including a
// .env file in the working directory.
func LoadSettings() (Settings, error) {
	cfg, err := Load()
	if err != nil {
		return Settings{}, err
	}
	env, err := LoadEnv(DotEnvPath())
	if err != nil {
		return Settings{}, err
	}
	return cfg.Resolve(env), nil
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".repofinder"
	}
	return filepath.Join(configDir, "repofinder")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".repofinder.yaml"
}

// DotEnvPath returns the dotenv file read at startup.
func DotEnvPath() string {
	return ".env"
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .repofinder.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads the global config at globalPath and merges the local
// config at localPath on top. Missing files are skipped.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	cfg := &Config{}

	global, err := readConfigFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	if global != nil {
		cfg = global
	}

	local, err := readConfigFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("local config: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "table"
	}
	return cfg, nil
}

func readConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence over global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{DefaultFormat: global.DefaultFormat}
	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	}

	result.Server = mergeServer(global.Server, local.Server)
	result.GitHub = mergeGitHub(global.GitHub, local.GitHub)
	result.LLM = mergeLLM(global.LLM, local.LLM)
	result.Cache = mergeCache(global.Cache, local.Cache)
	result.Search = mergeSearch(global.Search, local.Search)
	return result
}

// pick returns local when set, else global.
func pick[T any](global, local *T) *T {
	if local != nil {
		return local
	}
	return global
}

func mergeServer(global, local *ServerOverrides) *ServerOverrides {
	if global == nil || local == nil {
		return pick(global, local)
	}
	result := &ServerOverrides{
		Addr:                     pick(global.Addr, local.Addr),
		CORSOrigins:              global.CORSOrigins,
		ReadHeaderTimeoutSeconds: pick(global.ReadHeaderTimeoutSeconds, local.ReadHeaderTimeoutSeconds),
		ShutdownTimeoutSeconds:   pick(global.ShutdownTimeoutSeconds, local.ShutdownTimeoutSeconds),
	}
	// Arrays: local replaces if non-empty
	if len(local.CORSOrigins) > 0 {
		result.CORSOrigins = local.CORSOrigins
	}
	return result
}

func mergeGitHub(global, local *GitHubOverrides) *GitHubOverrides {
	if global == nil || local == nil {
		return pick(global, local)
	}
	return &GitHubOverrides{
		BaseURL:        pick(global.BaseURL, local.BaseURL),
		Proxy:          pick(global.Proxy, local.Proxy),
		TimeoutSeconds: pick(global.TimeoutSeconds, local.TimeoutSeconds),
	}
}

func mergeLLM(global, local *LLMOverrides) *LLMOverrides {
	if global == nil || local == nil {
		return pick(global, local)
	}
	return &LLMOverrides{
		BaseURL:        pick(global.BaseURL, local.BaseURL),
		Model:          pick(global.Model, local.Model),
		Temperature:    pick(global.Temperature, local.Temperature),
		TimeoutSeconds: pick(global.TimeoutSeconds, local.TimeoutSeconds),
		MaxRetries:     pick(global.MaxRetries, local.MaxRetries),
	}
}

func mergeCache(global, local *CacheOverrides) *CacheOverrides {
	if global == nil || local == nil {
		return pick(global, local)
	}
	return &CacheOverrides{
		TTLSeconds: pick(global.TTLSeconds, local.TTLSeconds),
		MaxEntries: pick(global.MaxEntries, local.MaxEntries),
	}
}

func mergeSearch(global, local *SearchOverrides) *SearchOverrides {
	if global == nil || local == nil {
		return pick(global, local)
	}
	return &SearchOverrides{
		PerPage:          pick(global.PerPage, local.PerPage),
		Limit:            pick(global.Limit, local.Limit),
		PushedWithinDays: pick(global.PushedWithinDays, local.PushedWithinDays),
		MinStars:         pick(global.MinStars, local.MinStars),
		RecommendCount:   pick(global.RecommendCount, local.RecommendCount),
	}
}

// Save saves the configuration to the global config file.
func (c *Config) Save() error {
	return c.SaveAs(ConfigPath())
}

// SaveAs writes the configuration to path, creating directories as needed.
func (c *Config) SaveAs(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return SaveTo(path, string(data))
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	s := DefaultSettings()
	seconds := func(d time.Duration) *int {
		v := int(d / time.Second)
		return &v
	}

	return &Config{
		DefaultFormat: s.DefaultFormat,
		Server: &ServerOverrides{
			Addr:                     &s.Server.Addr,
			CORSOrigins:              s.Server.CORSOrigins,
			ReadHeaderTimeoutSeconds: seconds(s.Server.ReadHeaderTimeout),
			ShutdownTimeoutSeconds:   seconds(s.Server.ShutdownTimeout),
		},
		GitHub: &GitHubOverrides{
			BaseURL:        &s.GitHub.BaseURL,
			TimeoutSeconds: seconds(s.GitHub.Timeout),
		},
		LLM: &LLMOverrides{
			BaseURL:        &s.LLM.BaseURL,
			Model:          &s.LLM.Model,
			Temperature:    &s.LLM.Temperature,
			TimeoutSeconds: seconds(s.LLM.Timeout),
			MaxRetries:     &s.LLM.MaxRetries,
		},
		Cache: &CacheOverrides{
			TTLSeconds: seconds(s.Cache.TTL),
			MaxEntries: &s.Cache.MaxEntries,
		},
		Search: &SearchOverrides{
			PerPage:          &s.Search.PerPage,
			Limit:            &s.Search.Limit,
			PushedWithinDays: &s.Search.PushedWithinDays,
			MinStars:         &s.Search.MinStars,
			RecommendCount:   &s.Search.RecommendCount,
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# repofinder configuration file
# See: repofinder config defaults  (for all available options)
# Credentials are read from the environment only:
#   OPENAI_API_KEY, GITHUB_TOKEN

# Output format: table, json or markdown
default_format: table

# Search defaults (optional)
# search:
#   limit: 10
#   pushed_within_days: 1825
#   min_stars: 0

# OpenAI-compatible endpoint (optional)
# llm:
#   base_url: https://api.openai.com/v1
#   model: gpt-4o-mini

# Server settings for "repofinder serve" (optional)
# server:
#   addr: ":8000"
#   cors_origins:
#     - "*"
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
