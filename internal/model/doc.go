// Package model defines the data passed between the extraction client, the
// report writers, the history store and the web form.
//
// An Extraction is one answered request: where the text came from, a
// fingerprint of the text, the language the API used and the normalized
// display rows. Models are plain structs that serialize to JSON for
// reports and database storage.
package model
