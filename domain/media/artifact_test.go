package media

import (
	"errors"
	"testing"
)

type mockFileStore struct {
	existing  map[string]bool
	removeErr map[string]error
	removed   []string
}

func newMockFileStore(paths ...string) *mockFileStore {
	m := &mockFileStore{
		existing:  make(map[string]bool),
		removeErr: make(map[string]error),
	}
	for _, p := range paths {
		m.existing[p] = true
	}
	return m
}

func (m *mockFileStore) Exists(path string) bool {
	return m.existing[path]
}

func (m *mockFileStore) Remove(path string) error {
	if err := m.removeErr[path]; err != nil {
		return err
	}
	delete(m.existing, path)
	m.removed = append(m.removed, path)
	return nil
}

func TestRegistry_ReleaseRemovesExistingArtifacts(t *testing.T) {
	store := newMockFileStore("v.mp4", "v.mp3")
	reg := NewRegistry(store)
	reg.Register(KindVideo, "v.mp4")
	reg.Register(KindAudio, "v.mp3")

	result := reg.Release(false)

	if len(result.Removed) != 2 {
		t.Fatalf("Removed = %v, want 2 artifacts", result.Removed)
	}
	if store.Exists("v.mp4") || store.Exists("v.mp3") {
		t.Error("artifacts still exist after release")
	}
}

func TestRegistry_ReleaseKeep(t *testing.T) {
	store := newMockFileStore("v.mp4", "v.mp3")
	reg := NewRegistry(store)
	reg.Register(KindVideo, "v.mp4")
	reg.Register(KindAudio, "v.mp3")

	result := reg.Release(true)

	if len(result.Kept) != 2 {
		t.Fatalf("Kept = %v, want 2 artifacts", result.Kept)
	}
	if len(store.removed) != 0 {
		t.Errorf("removed = %v, want nothing removed", store.removed)
	}
}

func TestRegistry_ReleaseIsIndependentPerArtifact(t *testing.T) {
	store := newMockFileStore("v.mp4", "v.mp3")
	store.removeErr["v.mp4"] = errors.New("permission denied")
	reg := NewRegistry(store)
	reg.Register(KindVideo, "v.mp4")
	reg.Register(KindAudio, "v.mp3")

	result := reg.Release(false)

	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1", result.Errors)
	}
	if store.Exists("v.mp3") {
		t.Error("audio artifact not removed after video removal failed")
	}
}

func TestRegistry_ReleaseSkipsMissing(t *testing.T) {
	store := newMockFileStore("v.mp4")
	reg := NewRegistry(store)
	reg.Register(KindVideo, "v.mp4")
	reg.Register(KindAudio, "v.mp3")

	result := reg.Release(false)

	if len(result.Missing) != 1 || result.Missing[0].Kind != KindAudio {
		t.Errorf("Missing = %v, want audio artifact", result.Missing)
	}
	if len(result.Removed) != 1 {
		t.Errorf("Removed = %v, want video artifact", result.Removed)
	}
}

func TestRegistry_ReleaseOnlyOnce(t *testing.T) {
	store := newMockFileStore("v.mp4")
	reg := NewRegistry(store)
	reg.Register(KindVideo, "v.mp4")

	reg.Release(false)
	store.existing["v.mp4"] = true
	second := reg.Release(false)

	if len(second.Removed) != 0 {
		t.Errorf("second Release removed %v, want nothing", second.Removed)
	}
}

func TestRegistry_RegisterReplacesSameKind(t *testing.T) {
	reg := NewRegistry(newMockFileStore())
	reg.Register(KindVideo, "first.mp4")
	reg.Register(KindVideo, "second.mp4")
	reg.Register(KindAudio, "")

	kept := reg.Release(true).Kept
	if len(kept) != 1 {
		t.Fatalf("Kept = %v, want exactly one", kept)
	}
	if kept[0].Kind != KindVideo || kept[0].Path != "second.mp4" {
		t.Errorf("Kept[0] = %+v, want video second.mp4", kept[0])
	}
}
