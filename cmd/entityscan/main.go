// Package main provides the entry point for the entityscan CLI.
//
// entityscan sends text to the Dandelion entity extraction API and prints
// the entities found, their confidence and their Wikidata links.
//
// Usage:
//
//	entityscan extract "Rome is the capital of Italy"
//	entityscan extract --file notes.txt --markdown
//	entityscan serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
