package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// TokenEnvVar is the environment variable holding the API token.
const TokenEnvVar = "DANDELION_TOKEN"

// secretsKey is the key holding the API token in secrets.toml.
const secretsKey = "dandelion_token"

// ErrSecretsNotFound is returned when the secrets file does not exist.
var ErrSecretsNotFound = errors.New("secrets file not found")

// TokenSource records where the API token came from.
type TokenSource string

// Token sources in resolution order.
const (
	TokenFromFlag    TokenSource = "flag"
	TokenFromEnv     TokenSource = "environment"
	TokenFromSecrets TokenSource = "secrets file"
	TokenFromConfig  TokenSource = "config file"
	TokenNone        TokenSource = ""
)

// Secrets is the content of a Streamlit-style secrets.toml file.
// The token may live at the top level or in a [default] table:
//
//	dandelion_token = "<TOKEN>"
//
//	[default]
//	dandelion_token = "<TOKEN>"
type Secrets struct {
	DandelionToken string `toml:"dandelion_token"`

	Default struct {
		DandelionToken string `toml:"dandelion_token"`
	} `toml:"default"`
}

// Token returns the API token, preferring the top-level key.
func (s Secrets) Token() string {
	if t := strings.TrimSpace(s.DandelionToken); t != "" {
		return t
	}
	return strings.TrimSpace(s.Default.DandelionToken)
}

// LoadSecrets decodes a secrets.toml file.
// If the file does not exist, it returns ErrSecretsNotFound.
func LoadSecrets(path string) (Secrets, error) {
	var s Secrets
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Secrets{}, ErrSecretsNotFound
		}
		return Secrets{}, err
	}
	return s, nil
}

// FindSecretsFile returns the first existing secrets file among
// .streamlit/secrets.toml in the current directory and secrets.toml in
// XDGConfigDir, or "" if none exists.
func FindSecretsFile() string {
	candidates := make([]string, 0, 2)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, ".streamlit", "secrets.toml"))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "secrets.toml"))

	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// ResolveToken picks the API token from, in order: flagToken, the
// DANDELION_TOKEN environment variable, the secrets file at secretsPath and
// the configuration profile. It returns TokenNone when no source has one.
// A secrets file that exists but cannot be parsed is an error.
func ResolveToken(flagToken string, secretsPath string, profile Profile) (string, TokenSource, error) {
	if t := strings.TrimSpace(flagToken); t != "" {
		return t, TokenFromFlag, nil
	}

	if t := strings.TrimSpace(os.Getenv(TokenEnvVar)); t != "" {
		return t, TokenFromEnv, nil
	}

	if secretsPath != "" {
		s, err := LoadSecrets(secretsPath)
		if err != nil && !errors.Is(err, ErrSecretsNotFound) {
			return "", TokenNone, err
		}
		if t := s.Token(); t != "" {
			return t, TokenFromSecrets, nil
		}
	}

	if t := strings.TrimSpace(profile.Token); t != "" {
		return t, TokenFromConfig, nil
	}

	return "", TokenNone, nil
}
