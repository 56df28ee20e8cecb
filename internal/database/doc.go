// Package database keeps a local history of extractions in SQLite.
//
// Each saved extraction stores its source, a SHA3-256 digest of the text
// (never the text itself), the detected language and the display rows as
// JSON. The history is an audit trail; it is never consulted to answer an
// extraction request.
package database
