// Package blockfile is the command-surface façade over the indexer,
// search engine, preview renderer, and capture writer: it is the one
// exported entry point the CLI in package cmd (and any other embedder)
// drives.
package blockfile
