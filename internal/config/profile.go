package config

import (
	"maps"
	"slices"
	"time"
)

// Profile holds a set of API settings stored in the configuration file.
type Profile struct {
	// Token is the Dandelion API token. Prefer DANDELION_TOKEN or
	// secrets.toml over storing it here.
	Token string `yaml:"token,omitempty"`

	// APIURL overrides the extraction endpoint.
	APIURL string `yaml:"apiUrl,omitempty"`

	// Lang is the language code sent to the API.
	Lang string `yaml:"lang,omitempty"`

	// DetectLang enables local language detection when Lang is "auto".
	DetectLang bool `yaml:"detectLang,omitempty"`

	// MinConfidence is the API-side confidence threshold.
	// A pointer distinguishes an explicit 0 from an unset value.
	MinConfidence *float64 `yaml:"minConfidence,omitempty"`

	// Include lists the optional annotation fields to request.
	Include []string `yaml:"include,omitempty"`

	// Timeout bounds each request, e.g. "15s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Proxy is an optional SOCKS5 proxy in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`
}

// File represents the structure of the .entityscan configuration file.
type File struct {
	// Defaults applies to every invocation.
	Defaults Profile `yaml:"defaults,omitempty"`

	// Profiles maps profile names to overrides of Defaults.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// GetProfile returns Defaults merged with the named profile.
// An empty name returns Defaults. A name that does not exist returns
// Defaults and ErrProfileNotFound.
func (cf *File) GetProfile(name string) (Profile, error) {
	result := cf.Defaults
	result.Include = append([]string(nil), cf.Defaults.Include...)

	if name == "" {
		return result, nil
	}

	p, ok := cf.Profiles[name]
	if !ok {
		return result, ErrProfileNotFound
	}

	if p.Token != "" {
		result.Token = p.Token
	}
	if p.APIURL != "" {
		result.APIURL = p.APIURL
	}
	if p.Lang != "" {
		result.Lang = p.Lang
	}
	if p.DetectLang {
		result.DetectLang = true
	}
	if p.MinConfidence != nil {
		v := *p.MinConfidence
		result.MinConfidence = &v
	}
	if len(p.Include) > 0 {
		result.Include = append([]string(nil), p.Include...)
	}
	if p.Timeout > 0 {
		result.Timeout = p.Timeout
	}
	if p.Proxy != "" {
		result.Proxy = p.Proxy
	}

	return result, nil
}

// ProfileNames returns the sorted names of the profiles defined in the file.
func (cf *File) ProfileNames() []string {
	return slices.Sorted(maps.Keys(cf.Profiles))
}
