// Package pipeline runs one extraction as a sequence of steps: optional
// language detection, the API call, normalization into display rows and
// recording in the history.
//
// A pipeline handles exactly one input per Execute call and issues at most
// one API request. Steps share state through a Job.
package pipeline
