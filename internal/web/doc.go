// Package web serves the browser form: a text area, an "Extract entities"
// button and the result table.
//
// Each submission triggers at most one extraction. The JSON endpoint
// POST /api/extract offers the same operation to scripts.
package web
