package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateExtract.
var (
	// ErrNoInput is returned when extract is run without text, file or URL.
	ErrNoInput = errors.New("no input specified: provide text, --file or --url")

	// ErrConflictingInputs is returned when both text and a URL are given.
	ErrConflictingInputs = errors.New("conflicting inputs: text and --url cannot be used together")

	// ErrMissingToken is returned when no Dandelion API token could be resolved.
	ErrMissingToken = errors.New("missing API token: use --token, set DANDELION_TOKEN or add dandelion_token to secrets.toml")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMinConfidence is returned when the minimum confidence is outside [0, 1].
	ErrInvalidMinConfidence = errors.New("invalid minimum confidence: must be between 0 and 1")

	// ErrInvalidLanguage is returned for a language the extraction API does not support.
	ErrInvalidLanguage = errors.New("invalid language: must be auto, de, en, es, fr, it, pt or ru")

	// ErrConflictingReportFormats is returned when both --json and --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrProfileNotFound is returned when a named profile is missing from the configuration file.
	ErrProfileNotFound = errors.New("profile not found in configuration file")
)
