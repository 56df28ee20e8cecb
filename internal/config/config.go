package config

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultAPIURL is the Dandelion entity extraction endpoint.
	DefaultAPIURL = "https://api.dandelion.eu/datatxt/nex/v1"

	// DefaultTimeout bounds a single extraction request.
	DefaultTimeout = 15 * time.Second

	// DefaultLanguage lets the API detect the language of the text.
	DefaultLanguage = "auto"

	// DefaultMinConfidence matches the API's own default threshold.
	DefaultMinConfidence = 0.6

	// DefaultMaxBodySize limits how much of an API response is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultListenAddress is where the browser form is served.
	DefaultListenAddress = "127.0.0.1:8501"

	// DefaultHistoryLimit is the number of entries listed by the history command.
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "entityscan"

	// DefaultUserAgent identifies entityscan in HTTP requests.
	DefaultUserAgent = "entityscan/1.0 (+https://github.com/nao1215/entityscan)"
)

// DefaultInclude lists the optional annotation fields requested from the API.
// "lod" carries the Wikidata references.
var DefaultInclude = []string{"types", "lod", "abstract"}

// SupportedLanguages lists the language codes accepted by the extraction API.
var SupportedLanguages = []string{"auto", "de", "en", "es", "fr", "it", "pt", "ru"}

// Config holds all options for one entityscan invocation.
// It is built from NewConfig, a configuration file profile and CLI flags,
// then passed explicitly to the components that need it.
type Config struct {
	// Token is the Dandelion API token.
	Token string

	// TokenSource records where Token was resolved from.
	TokenSource TokenSource

	// APIURL is the extraction endpoint.
	APIURL string

	// Timeout bounds each extraction request.
	Timeout time.Duration

	// Language is the language code sent to the API, or "auto".
	Language string

	// DetectLanguage enables local language detection when Language is "auto".
	DetectLanguage bool

	// MinConfidence is the API-side confidence threshold in [0, 1].
	MinConfidence float64

	// Include lists the optional annotation fields requested from the API.
	Include []string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with API requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes. 0 means the default.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// Profile is the configuration file profile to apply.
	Profile string

	// Text is the text to analyze.
	Text string

	// InputFile is a file whose content is analyzed ("-" for stdin).
	InputFile string

	// SourceURL is a web page the API fetches and analyzes itself.
	SourceURL string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// DBDir is the directory holding the history database.
	DBDir string

	// SaveToDB records each extraction in the history database.
	SaveToDB bool

	// ListenAddress is the address the browser form listens on.
	ListenAddress string

	// LogFile is an optional rotating log file used by the serve command.
	LogFile string
}

// NewConfig creates a Config populated with default values.
func NewConfig() *Config {
	return &Config{
		APIURL:        DefaultAPIURL,
		Timeout:       DefaultTimeout,
		Language:      DefaultLanguage,
		MinConfidence: DefaultMinConfidence,
		Include:       slices.Clone(DefaultInclude),
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		ListenAddress: DefaultListenAddress,
		DBDir:         XDGDataDir(),
		SaveToDB:      true,
	}
}

// XDGDataDir returns the XDG data directory for entityscan.
// On Linux: ~/.local/share/entityscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for entityscan.
// On Linux: ~/.config/entityscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyProfile copies the non-zero values of p into c.
// Callers apply explicitly set CLI flags afterwards so that flags win.
func (c *Config) ApplyProfile(p Profile) {
	if p.Token != "" {
		c.Token = p.Token
		c.TokenSource = TokenFromConfig
	}
	if p.APIURL != "" {
		c.APIURL = p.APIURL
	}
	if p.Lang != "" {
		c.Language = p.Lang
	}
	if p.MinConfidence != nil {
		c.MinConfidence = *p.MinConfidence
	}
	if len(p.Include) > 0 {
		c.Include = slices.Clone(p.Include)
	}
	if p.Timeout > 0 {
		c.Timeout = p.Timeout
	}
	if p.Proxy != "" {
		c.ProxyAddress = p.Proxy
	}
	if p.DetectLang {
		c.DetectLanguage = true
	}
}

// Validate checks the settings shared by every command and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return ErrInvalidMinConfidence
	}

	if !IsSupportedLanguage(c.Language) {
		return ErrInvalidLanguage
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// ValidateExtract runs Validate and additionally requires a token and exactly
// one kind of input.
func (c *Config) ValidateExtract() error {
	if err := c.Validate(); err != nil {
		return err
	}

	hasText := strings.TrimSpace(c.Text) != "" || c.InputFile != ""
	if hasText && c.SourceURL != "" {
		return ErrConflictingInputs
	}
	if !hasText && c.SourceURL == "" {
		return ErrNoInput
	}

	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}

	return nil
}

// IsSupportedLanguage reports whether lang is accepted by the extraction API.
func IsSupportedLanguage(lang string) bool {
	return slices.Contains(SupportedLanguages, strings.ToLower(lang))
}
