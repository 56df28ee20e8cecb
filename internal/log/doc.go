// Package log provides slog-based logging that keeps API credentials out of
// log output.
//
// The SecureHandler wraps any slog.Handler and rewrites attributes before
// they are written:
//   - attributes whose key names a secret (token, authorization, api_key, ...)
//     are replaced with MaskValue
//   - string values that look like credentials (bearer tokens, JWTs, long
//     hexadecimal API tokens) are replaced with MaskValue
//   - "token=" query parameters inside URLs and form bodies are masked in
//     place, leaving the rest of the string readable
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("calling api", "url", "https://api.dandelion.eu/datatxt/nex/v1?token=abc")
//	// url=https://api.dandelion.eu/datatxt/nex/v1?token=***REDACTED***
//
// Long-running commands can also write to a size-rotated file with
// NewRotatingFile.
package log
