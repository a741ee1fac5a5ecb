package media

import (
	"fmt"
	"sync"
)

// ArtifactKind identifies the intermediate file types a run produces
type ArtifactKind string

const (
	KindVideo ArtifactKind = "video"
	KindAudio ArtifactKind = "audio"
)

// Artifact is a transient file produced mid-pipeline and eligible for cleanup
type Artifact struct {
	Kind ArtifactKind
	Path string
}

// ReleaseResult describes what a cleanup pass did
type ReleaseResult struct {
	Removed []Artifact
	Kept    []Artifact
	Missing []Artifact
	Errors  []error
}

// Registry tracks the artifacts of a single run and releases them exactly once.
// At most one artifact of each kind is held; registering a kind again replaces the path.
type Registry struct {
	mu        sync.Mutex
	store     FileStore
	artifacts []Artifact
	released  bool
}

// NewRegistry creates an empty registry backed by store
func NewRegistry(store FileStore) *Registry {
	return &Registry{store: store}
}

// Register records an artifact path at creation time
func (r *Registry) Register(kind ArtifactKind, path string) {
	if path == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.artifacts {
		if a.Kind == kind {
			r.artifacts[i].Path = path
			return
		}
	}
	r.artifacts = append(r.artifacts, Artifact{Kind: kind, Path: path})
}

// Release runs the single cleanup pass. With keep set nothing is deleted and every
// artifact is reported as kept. Otherwise each existing artifact is removed
// independently; a failure on one does not stop the others. Calls after the first
// return an empty result.
func (r *Registry) Release(keep bool) ReleaseResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result ReleaseResult
	if r.released {
		return result
	}
	r.released = true

	for _, a := range r.artifacts {
		if keep {
			result.Kept = append(result.Kept, a)
			continue
		}
		if !r.store.Exists(a.Path) {
			result.Missing = append(result.Missing, a)
			continue
		}
		if err := r.store.Remove(a.Path); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to remove %s file %s: %w", a.Kind, a.Path, err))
			continue
		}
		result.Removed = append(result.Removed, a)
	}

	return result
}
