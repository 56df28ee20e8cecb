// Package input collects the text to analyze from command line arguments,
// files or standard input.
//
// HTML files are reduced to their readable article text before analysis so
// that markup and navigation do not turn into spurious entities. No network
// access happens here.
package input
