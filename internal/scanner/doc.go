// Package scanner walks a media directory tree and drives the full
// pipeline for each file found: metadata extraction, junk
// classification, batched persistence, and finally duplicate
// resolution over the whole record set.
//
// Files are discovered sequentially in lexical order but extracted by a
// worker pool one batch at a time; writes always happen in discovery
// order so record ids are stable across runs over the same tree. A
// failure on one file is collected and reported, never fatal to the
// scan.
package scanner
