// Package database is the persistence layer for scanned media records,
// backed by SQLite with an FTS5 full-text index over path, filename,
// description and tags.
//
// Records are keyed by absolute file path: re-scanning a path overwrites
// the existing record rather than creating a new one. The scanner writes
// in batched transactions via BeginBatch/EndBatch; the duplicate resolver
// reads fingerprint columns back and rewrites duplicate links; search,
// aggregate and annotation queries serve the surfaces downstream
// collaborators consume. The package never deletes records when files
// vanish from disk.
package database
