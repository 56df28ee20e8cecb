// Package langdetect guesses the language of a text locally, restricted to
// the languages the extraction API supports.
//
// Detection is a hint only. When it is not confident the caller keeps "auto"
// and lets the API decide.
package langdetect
