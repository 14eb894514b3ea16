package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Server.Addr", s.Server.Addr, ":8000"},
		{"Cache.TTL", s.Cache.TTL, time.Hour},
		{"Search.PerPage", s.Search.PerPage, 12},
		{"Search.Limit", s.Search.Limit, 10},
		{"Search.PushedWithinDays", s.Search.PushedWithinDays, 1825},
		{"Search.MinStars", s.Search.MinStars, 0},
		{"LLM.Model", s.LLM.Model, "gpt-4o-mini"},
		{"DefaultFormat", s.DefaultFormat, "table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("DefaultSettings().%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("nil config yields defaults", func(t *testing.T) {
		var cfg *Config
		s := cfg.Resolve(Env{})
		if s.Search.Limit != 10 {
			t.Errorf("Resolve().Search.Limit = %d, want 10", s.Search.Limit)
		}
		if s.LLM.APIKey != "" {
			t.Errorf("Resolve().LLM.APIKey = %q, want empty", s.LLM.APIKey)
		}
	})

	t.Run("file overrides apply", func(t *testing.T) {
		cfg := &Config{
			Search: &SearchOverrides{Limit: intPtr(25), MinStars: intPtr(100)},
			Cache:  &CacheOverrides{TTLSeconds: intPtr(60)},
			LLM:    &LLMOverrides{Model: strPtr("local-model")},
		}
		s := cfg.Resolve(Env{})
		if s.Search.Limit != 25 {
			t.Errorf("Search.Limit = %d, want 25", s.Search.Limit)
		}
		if s.Search.MinStars != 100 {
			t.Errorf("Search.MinStars = %d, want 100", s.Search.MinStars)
		}
		if s.Search.PerPage != 12 {
			t.Errorf("Search.PerPage = %d, want default 12", s.Search.PerPage)
		}
		if s.Cache.TTL != time.Minute {
			t.Errorf("Cache.TTL = %v, want 1m", s.Cache.TTL)
		}
		if s.LLM.Model != "local-model" {
			t.Errorf("LLM.Model = %q, want local-model", s.LLM.Model)
		}
	})

	t.Run("environment wins over files", func(t *testing.T) {
		cfg := &Config{
			LLM:    &LLMOverrides{Model: strPtr("from-file"), BaseURL: strPtr("http://file")},
			Server: &ServerOverrides{Addr: strPtr(":9000"), CORSOrigins: []string{"https://file"}},
		}
		s := cfg.Resolve(Env{
			OpenAIAPIKey:    "sk-test",
			OpenAIModel:     "from-env",
			GitHubToken:     "ghp_test",
			GitHubProxy:     "http://proxy:3128",
			CacheTTLSeconds: 30,
			CORSOrigins:     "https://a, https://b",
			Addr:            ":7000",
		})
		if s.LLM.APIKey != "sk-test" || s.GitHub.Token != "ghp_test" {
			t.Errorf("credentials not taken from env: %q %q", s.LLM.APIKey, s.GitHub.Token)
		}
		if s.LLM.Model != "from-env" {
			t.Errorf("LLM.Model = %q, want from-env", s.LLM.Model)
		}
		if s.LLM.BaseURL != "http://file" {
			t.Errorf("LLM.BaseURL = %q, want file value", s.LLM.BaseURL)
		}
		if s.GitHub.Proxy != "http://proxy:3128" {
			t.Errorf("GitHub.Proxy = %q", s.GitHub.Proxy)
		}
		if s.Cache.TTL != 30*time.Second {
			t.Errorf("Cache.TTL = %v, want 30s", s.Cache.TTL)
		}
		if got := strings.Join(s.Server.CORSOrigins, "|"); got != "https://a|https://b" {
			t.Errorf("Server.CORSOrigins = %q", got)
		}
		if s.Server.Addr != ":7000" {
			t.Errorf("Server.Addr = %q, want :7000", s.Server.Addr)
		}
	})
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.yaml")
	local := filepath.Join(dir, ".repofinder.yaml")

	writeFile(t, global, `default_format: json
search:
  limit: 20
  min_stars: 5
llm:
  model: global-model
`)
	writeFile(t, local, `search:
  min_stars: 50
server:
  cors_origins: ["https://local"]
`)

	cfg, err := LoadFrom(global, local)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	s := cfg.Resolve(Env{})

	if s.DefaultFormat != "json" {
		t.Errorf("DefaultFormat = %q, want json", s.DefaultFormat)
	}
	if s.Search.Limit != 20 {
		t.Errorf("Search.Limit = %d, want global 20", s.Search.Limit)
	}
	if s.Search.MinStars != 50 {
		t.Errorf("Search.MinStars = %d, want local 50", s.Search.MinStars)
	}
	if s.LLM.Model != "global-model" {
		t.Errorf("LLM.Model = %q, want global-model", s.LLM.Model)
	}
	if len(s.Server.CORSOrigins) != 1 || s.Server.CORSOrigins[0] != "https://local" {
		t.Errorf("Server.CORSOrigins = %v", s.Server.CORSOrigins)
	}
}

func TestLoadFromMissingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "also-nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.DefaultFormat != "table" {
		t.Errorf("DefaultFormat = %q, want table", cfg.DefaultFormat)
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "config.yaml")
	writeFile(t, global, "search: [unclosed")

	if _, err := LoadFrom(global, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFrom() expected error for invalid yaml")
	}
}

func TestMergeConfig(t *testing.T) {
	global := &Config{
		DefaultFormat: "table",
		GitHub:        &GitHubOverrides{BaseURL: strPtr("https://ghe/api/v3/"), TimeoutSeconds: intPtr(5)},
		Cache:         &CacheOverrides{TTLSeconds: intPtr(10)},
	}
	local := &Config{
		GitHub: &GitHubOverrides{TimeoutSeconds: intPtr(9)},
		Search: &SearchOverrides{PerPage: intPtr(30)},
	}

	merged := mergeConfig(global, local)

	if merged.DefaultFormat != "table" {
		t.Errorf("DefaultFormat = %q, want table", merged.DefaultFormat)
	}
	if *merged.GitHub.BaseURL != "https://ghe/api/v3/" {
		t.Errorf("GitHub.BaseURL = %q, want global value", *merged.GitHub.BaseURL)
	}
	if *merged.GitHub.TimeoutSeconds != 9 {
		t.Errorf("GitHub.TimeoutSeconds = %d, want local 9", *merged.GitHub.TimeoutSeconds)
	}
	if merged.Cache == nil || *merged.Cache.TTLSeconds != 10 {
		t.Error("Cache section from global should survive the merge")
	}
	if merged.Search == nil || *merged.Search.PerPage != 30 {
		t.Error("Search section from local should be used")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	writeFile(t, dotenv, "OPENAI_MODEL=dotenv-model\nCACHE_TTL_SECONDS=120\n")

	t.Setenv("OPENAI_API_KEY", "sk-env")
	// Already set variables are not overridden by the dotenv file.
	t.Setenv("OPENAI_MODEL", "shell-model")
	t.Setenv("CACHE_TTL_SECONDS", "")
	os.Unsetenv("CACHE_TTL_SECONDS")

	env, err := LoadEnv(dotenv)
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if env.OpenAIAPIKey != "sk-env" {
		t.Errorf("OpenAIAPIKey = %q", env.OpenAIAPIKey)
	}
	if env.OpenAIModel != "shell-model" {
		t.Errorf("OpenAIModel = %q, want shell-model", env.OpenAIModel)
	}
	if env.CacheTTLSeconds != 120 {
		t.Errorf("CacheTTLSeconds = %d, want 120", env.CacheTTLSeconds)
	}
}

func TestLoadEnvMissingDotenv(t *testing.T) {
	if _, err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadEnv() error = %v, want nil for missing file", err)
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	out, err := DefaultConfig().ToYAML()
	if err != nil {
		t.Fatalf("ToYAML() error = %v", err)
	}
	for _, want := range []string{"pushed_within_days: 1825", "ttl_seconds: 3600", "read_header_timeout_seconds: 10"} {
		if !strings.Contains(out, want) {
			t.Errorf("DefaultConfig().ToYAML() missing %q", want)
		}
	}
	if strings.Contains(out, "api_key") || strings.Contains(out, "token") {
		t.Error("DefaultConfig().ToYAML() must not contain credentials")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveTo(path, MinimalConfig()); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	cfg, err := LoadFrom(path, filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.DefaultFormat != "table" {
		t.Errorf("DefaultFormat = %q, want table", cfg.DefaultFormat)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestSearchDefaults(t *testing.T) {
	cfg := &Config{Search: &SearchOverrides{Limit: intPtr(5), PushedWithinDays: intPtr(0), MinStars: intPtr(10)}}
	req := cfg.Resolve(Env{}).SearchDefaults()

	if req.Limit != 5 {
		t.Errorf("Limit = %d, want 5", req.Limit)
	}
	if req.PushedWithinDays != 0 {
		t.Errorf("PushedWithinDays = %d, want 0 (no recency qualifier)", req.PushedWithinDays)
	}
	if req.MinStars != 10 {
		t.Errorf("MinStars = %d, want 10", req.MinStars)
	}
	if req.PerPage != 12 || !req.UseCache || req.Sort != "best" {
		t.Errorf("unexpected defaults: %+v", req)
	}
}
