// Package filesystem wraps os.Stat and os.Open with retry logic for NFS
// stale file handle errors (ESTALE). Media libraries commonly live on
// NFS mounts, where a rescan racing a server-side change can surface
// transient ESTALE failures; a short exponential backoff absorbs them.
// All other errors pass through untouched on the first attempt.
package filesystem
