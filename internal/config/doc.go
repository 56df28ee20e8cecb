// Package config provides configuration structures and loaders for entityscan.
//
// Settings come from three places, in increasing priority:
//   - a YAML configuration file (.entityscan) with a defaults profile and
//     named profiles
//   - the DANDELION_TOKEN environment variable and a Streamlit-style
//     secrets.toml file, for the API token only
//   - command-line flags
package config
