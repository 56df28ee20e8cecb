package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default APIURL is the NEX endpoint", func(t *testing.T) {
		t.Parallel()
		if cfg.APIURL != "https://api.dandelion.eu/datatxt/nex/v1" {
			t.Errorf("expected NEX endpoint, got '%s'", cfg.APIURL)
		}
	})

	t.Run("default Timeout is 15 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 15*time.Second {
			t.Errorf("expected Timeout to be 15s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Language is auto", func(t *testing.T) {
		t.Parallel()
		if cfg.Language != "auto" {
			t.Errorf("expected Language to be auto, got %q", cfg.Language)
		}
	})

	t.Run("default MinConfidence is 0.6", func(t *testing.T) {
		t.Parallel()
		if cfg.MinConfidence != 0.6 {
			t.Errorf("expected MinConfidence to be 0.6, got %v", cfg.MinConfidence)
		}
	})

	t.Run("default Include requests lod", func(t *testing.T) {
		t.Parallel()
		if !slices.Contains(cfg.Include, "lod") {
			t.Errorf("expected Include to contain lod, got %v", cfg.Include)
		}
	})

	t.Run("default Include is a copy", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.Include[0] = "changed"
		if DefaultInclude[0] == "changed" {
			t.Error("expected NewConfig to copy DefaultInclude")
		}
	})

	t.Run("history is saved by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir == "" {
			t.Error("expected DBDir to be set")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"min confidence above one", func(c *Config) { c.MinConfidence = 1.1 }, ErrInvalidMinConfidence},
		{"negative min confidence", func(c *Config) { c.MinConfidence = -0.1 }, ErrInvalidMinConfidence},
		{"min confidence zero is valid", func(c *Config) { c.MinConfidence = 0 }, nil},
		{"unsupported language", func(c *Config) { c.Language = "xx" }, ErrInvalidLanguage},
		{"uppercase language is valid", func(c *Config) { c.Language = "EN" }, nil},
		{"json and markdown", func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, ErrConflictingReportFormats},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigValidateExtract tests the input and token checks of ValidateExtract.
func TestConfigValidateExtract(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Token = "token"
		cfg.Text = "The Hitchhiker's Guide by Douglas Adams"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"text input is valid", func(*Config) {}, nil},
		{"file input is valid", func(c *Config) { c.Text, c.InputFile = "", "input.txt" }, nil},
		{"url input is valid", func(c *Config) { c.Text, c.SourceURL = "", "https://example.com" }, nil},
		{"blank text", func(c *Config) { c.Text = "   " }, ErrNoInput},
		{"text and url", func(c *Config) { c.SourceURL = "https://example.com" }, ErrConflictingInputs},
		{"missing token", func(c *Config) { c.Token = "" }, ErrMissingToken},
		{"shared checks run first", func(c *Config) { c.Token, c.Timeout = "", 0 }, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.ValidateExtract()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigApplyProfile tests that only non-zero profile values are applied.
func TestConfigApplyProfile(t *testing.T) {
	t.Parallel()

	t.Run("empty profile keeps defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyProfile(Profile{})

		if cfg.MinConfidence != DefaultMinConfidence {
			t.Errorf("expected default min confidence, got %v", cfg.MinConfidence)
		}
		if cfg.TokenSource != TokenNone {
			t.Errorf("expected no token source, got %q", cfg.TokenSource)
		}
	})

	t.Run("profile values override defaults", func(t *testing.T) {
		t.Parallel()
		zero := 0.0
		cfg := NewConfig()
		cfg.ApplyProfile(Profile{
			Token:         "abc",
			Lang:          "it",
			MinConfidence: &zero,
			Include:       []string{"types"},
			Timeout:       time.Minute,
			Proxy:         "127.0.0.1:9050",
		})

		if cfg.Token != "abc" || cfg.TokenSource != TokenFromConfig {
			t.Errorf("unexpected token %q from %q", cfg.Token, cfg.TokenSource)
		}
		if cfg.Language != "it" {
			t.Errorf("expected lang it, got %q", cfg.Language)
		}
		if cfg.MinConfidence != 0 {
			t.Errorf("expected explicit zero min confidence, got %v", cfg.MinConfidence)
		}
		if !slices.Equal(cfg.Include, []string{"types"}) {
			t.Errorf("unexpected include %v", cfg.Include)
		}
		if cfg.Timeout != time.Minute {
			t.Errorf("expected 1m timeout, got %v", cfg.Timeout)
		}
		if cfg.ProxyAddress != "127.0.0.1:9050" {
			t.Errorf("unexpected proxy %q", cfg.ProxyAddress)
		}
	})
}

// TestFileGetProfile tests the GetProfile method.
func TestFileGetProfile(t *testing.T) {
	t.Parallel()

	half := 0.5
	file := &File{
		Defaults: Profile{
			Lang:    "en",
			Include: []string{"types", "lod"},
			Timeout: 20 * time.Second,
		},
		Profiles: map[string]Profile{
			"italian": {
				Lang:          "it",
				MinConfidence: &half,
			},
		},
	}

	t.Run("empty name returns defaults", func(t *testing.T) {
		t.Parallel()
		p, err := file.GetProfile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Lang != "en" {
			t.Errorf("expected lang en, got %q", p.Lang)
		}
	})

	t.Run("named profile merges over defaults", func(t *testing.T) {
		t.Parallel()
		p, err := file.GetProfile("italian")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Lang != "it" {
			t.Errorf("expected lang it, got %q", p.Lang)
		}
		if p.Timeout != 20*time.Second {
			t.Errorf("expected inherited timeout, got %v", p.Timeout)
		}
		if p.MinConfidence == nil || *p.MinConfidence != 0.5 {
			t.Errorf("expected min confidence 0.5, got %v", p.MinConfidence)
		}
		if !slices.Equal(p.Include, []string{"types", "lod"}) {
			t.Errorf("expected inherited include, got %v", p.Include)
		}
	})

	t.Run("unknown profile returns ErrProfileNotFound", func(t *testing.T) {
		t.Parallel()
		p, err := file.GetProfile("klingon")
		if !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("expected ErrProfileNotFound, got %v", err)
		}
		if p.Lang != "en" {
			t.Errorf("expected defaults alongside the error, got %q", p.Lang)
		}
	})

	t.Run("profile names are sorted", func(t *testing.T) {
		t.Parallel()
		f := &File{Profiles: map[string]Profile{"b": {}, "a": {}, "c": {}}}
		if got := f.ProfileNames(); !slices.Equal(got, []string{"a", "b", "c"}) {
			t.Errorf("unexpected names %v", got)
		}
	})
}

// TestLoadConfigFile tests YAML decoding of the configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads defaults and profiles", func(t *testing.T) {
		t.Parallel()

		content := `defaults:
  lang: en
  timeout: 30s
  include:
    - types
    - lod
profiles:
  strict:
    minConfidence: 0.8
    proxy: 127.0.0.1:9050
`
		path := filepath.Join(t.TempDir(), ".entityscan")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.Defaults.Lang != "en" {
			t.Errorf("expected lang en, got %q", cf.Defaults.Lang)
		}
		if cf.Defaults.Timeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", cf.Defaults.Timeout)
		}
		strict, ok := cf.Profiles["strict"]
		if !ok {
			t.Fatal("expected strict profile")
		}
		if strict.MinConfidence == nil || *strict.MinConfidence != 0.8 {
			t.Errorf("unexpected min confidence %v", strict.MinConfidence)
		}
	})

	t.Run("empty file yields empty profiles map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".entityscan")
		if err := os.WriteFile(path, []byte(""), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Profiles == nil {
			t.Error("expected Profiles to be initialized")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".entityscan")
		if err := os.WriteFile(path, []byte("defaults: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

// TestFindConfigFile tests explicit path handling.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("defaults: {}\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})

	t.Run("directory is not a config file", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(t.TempDir()); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestLoadSecrets tests both accepted secrets.toml layouts.
func TestLoadSecrets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"top level key", "dandelion_token = \"top\"\n", "top"},
		{"default table", "[default]\ndandelion_token = \"nested\"\n", "nested"},
		{"top level wins", "dandelion_token = \"top\"\n[default]\ndandelion_token = \"nested\"\n", "top"},
		{"no token", "other = 1\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "secrets.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("failed to write secrets: %v", err)
			}

			s, err := LoadSecrets(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Token() != tt.want {
				t.Errorf("expected token %q, got %q", tt.want, s.Token())
			}
		})
	}

	t.Run("missing file returns ErrSecretsNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadSecrets(filepath.Join(t.TempDir(), "secrets.toml"))
		if !errors.Is(err, ErrSecretsNotFound) {
			t.Errorf("expected ErrSecretsNotFound, got %v", err)
		}
	})
}

// TestResolveToken tests the token resolution order.
// It is not parallel because it modifies the environment.
func TestResolveToken(t *testing.T) {
	secretsPath := filepath.Join(t.TempDir(), "secrets.toml")
	if err := os.WriteFile(secretsPath, []byte("dandelion_token = \"from-secrets\"\n"), 0600); err != nil {
		t.Fatalf("failed to write secrets: %v", err)
	}
	profile := Profile{Token: "from-config"}

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "from-env")
		token, source, err := ResolveToken("from-flag", secretsPath, profile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "from-flag" || source != TokenFromFlag {
			t.Errorf("got %q from %q", token, source)
		}
	})

	t.Run("environment before secrets", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "from-env")
		token, source, err := ResolveToken("", secretsPath, profile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "from-env" || source != TokenFromEnv {
			t.Errorf("got %q from %q", token, source)
		}
	})

	t.Run("secrets before config", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")
		token, source, err := ResolveToken("", secretsPath, profile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "from-secrets" || source != TokenFromSecrets {
			t.Errorf("got %q from %q", token, source)
		}
	})

	t.Run("config last", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")
		token, source, err := ResolveToken("", "", profile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "from-config" || source != TokenFromConfig {
			t.Errorf("got %q from %q", token, source)
		}
	})

	t.Run("no source", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")
		token, source, err := ResolveToken("", "", Profile{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "" || source != TokenNone {
			t.Errorf("got %q from %q", token, source)
		}
	})

	t.Run("broken secrets file is an error", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")
		broken := filepath.Join(t.TempDir(), "secrets.toml")
		if err := os.WriteFile(broken, []byte("dandelion_token = \n"), 0600); err != nil {
			t.Fatalf("failed to write secrets: %v", err)
		}
		if _, _, err := ResolveToken("", broken, profile); err == nil {
			t.Error("expected error for broken secrets file")
		}
	})
}
