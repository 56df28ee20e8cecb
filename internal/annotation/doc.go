// Package annotation turns raw entity annotations returned by the Dandelion
// entity-extraction API into display-ready rows.
//
// The API reports each entity it recognises as a JSON object whose fields are
// mostly optional and, for some of them, arrive in more than one shape:
//
//   - label, title, spot: candidate display names
//   - confidence: relevance score in roughly [0, 1]
//   - uri: a linked-data URI (usually DBpedia)
//   - lod: cross references, either a single object or a list of objects
//   - types: a list of type labels or a single string
//
// Variant-shaped fields are decoded once, at the boundary, into a Value that
// records which shape was received. Anything outside the accepted shapes is
// treated as absent, so decoding an annotation object never fails.
//
// # Normalization
//
// Normalize maps one Annotation to one Row:
//
//	row := annotation.Normalize(a)
//	// row.Entity      label, else title, else spot
//	// row.Type        "Person, Place", "Person" or "-"
//	// row.Confidence  rounded to 3 decimals
//	// row.Link        Wikidata URL, else the annotation URI, else empty
//
// NormalizeAll applies Normalize to a slice, keeping order and cardinality.
// Both functions are pure: no I/O, no shared state and no mutation of the
// input.
package annotation
