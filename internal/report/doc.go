// Package report renders an Extraction for terminals, Markdown documents and
// tools.
//
// Writers implement the Writer interface and can be combined with
// MultiWriter to print to the terminal and save a file in one pass.
package report
