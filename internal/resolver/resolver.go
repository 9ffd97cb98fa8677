// Package resolver detects duplicate media in two phases: exact grouping
// by content digest, then greedy near-duplicate grouping of image
// perceptual fingerprints by Hamming distance.
//
// Every non-original member of a group is linked to exactly one canonical
// original, and an original is never itself a duplicate, so links never
// chain. The near-duplicate pass is a greedy pairwise union in a fixed
// deterministic order, not a transitive clustering: two images linked
// only through a chain of intermediate neighbors may end up under
// different originals.
package resolver

import (
	"time"

	"mediascan/internal/fingerprint"
	"mediascan/internal/logging"
	"mediascan/internal/mediatypes"
	"mediascan/internal/metrics"
)

// Phase labels which pass produced a link.
type Phase string

const (
	// PhaseExact links records with identical digests.
	PhaseExact Phase = "exact"
	// PhaseNear links images within the fingerprint distance threshold.
	PhaseNear Phase = "near"
)

// Entry is one record's fingerprint view, in store insertion order.
// Empty Digest or Perceptual fields exclude the entry from the
// corresponding phase.
type Entry struct {
	ID         int64
	Kind       mediatypes.Kind
	Digest     string
	Perceptual string
}

// Link marks the record ID as a duplicate of OriginalID.
type Link struct {
	ID         int64
	OriginalID int64
	Phase      Phase
}

// Store is the persistence surface the resolver needs: read the
// fingerprint columns back, drop stale links, and write fresh ones.
type Store interface {
	FingerprintEntries() ([]Entry, error)
	ClearDuplicateLinks() error
	MarkDuplicate(id, originalID int64) error
}

// Resolver groups duplicates under a configured near-duplicate distance
// threshold (in bits).
type Resolver struct {
	threshold int
}

// New creates a Resolver with the given Hamming distance threshold.
func New(threshold int) *Resolver {
	return &Resolver{threshold: threshold}
}

// Resolve computes duplicate links for entries, which must be in stable
// insertion order. The input carries no duplicate state: links are always
// recomputed from scratch, which also makes Resolve idempotent.
func (r *Resolver) Resolve(entries []Entry) []Link {
	links := make([]Link, 0)
	dup := make([]bool, len(entries))

	// Phase 1: exact groups by digest, first member canonical.
	firstByDigest := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.Digest == "" {
			continue
		}
		first, seen := firstByDigest[e.Digest]
		if !seen {
			firstByDigest[e.Digest] = i
			continue
		}
		dup[i] = true
		links = append(links, Link{ID: e.ID, OriginalID: entries[first].ID, Phase: PhaseExact})
	}

	// Phase 2: greedy pairwise near-duplicate pass over images that still
	// stand on their own. Candidate order is fixed, so results are
	// deterministic.
	var candidates []int
	for i, e := range entries {
		if e.Kind == mediatypes.KindImage && e.Perceptual != "" && !dup[i] {
			candidates = append(candidates, i)
		}
	}

	for ci := 0; ci < len(candidates); ci++ {
		i := candidates[ci]
		if dup[i] {
			// Claimed by an earlier pair; it can no longer be canonical.
			continue
		}
		for cj := ci + 1; cj < len(candidates); cj++ {
			j := candidates[cj]
			if dup[j] {
				continue
			}
			dist, err := fingerprint.Distance(entries[i].Perceptual, entries[j].Perceptual)
			if err != nil {
				logging.Warn("skipping malformed fingerprint pair (%d, %d): %v", entries[i].ID, entries[j].ID, err)
				continue
			}
			if dist <= r.threshold {
				dup[j] = true
				links = append(links, Link{ID: entries[j].ID, OriginalID: entries[i].ID, Phase: PhaseNear})
			}
		}
	}

	return links
}

// Run reads the record set back from the store, recomputes all duplicate
// links, and writes them. Stale links from a previous run are cleared
// first. Returns the number of links written.
func (r *Resolver) Run(store Store) (int, error) {
	start := time.Now()
	metrics.ResolverRunsTotal.Inc()
	defer func() {
		metrics.ResolverLastRunDuration.Set(time.Since(start).Seconds())
	}()

	entries, err := store.FingerprintEntries()
	if err != nil {
		return 0, err
	}

	links := r.Resolve(entries)

	if err := store.ClearDuplicateLinks(); err != nil {
		return 0, err
	}

	marked := 0
	for _, link := range links {
		if err := store.MarkDuplicate(link.ID, link.OriginalID); err != nil {
			return marked, err
		}
		metrics.ResolverDuplicatesMarked.WithLabelValues(string(link.Phase)).Inc()
		marked++
	}

	logging.Info("Duplicate resolution complete: %d links across %d records in %v",
		marked, len(entries), time.Since(start))
	return marked, nil
}
