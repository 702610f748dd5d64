package snapshot

import (
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadAll(t *testing.T) {
	s := testStore(t)

	if err := s.Save(sampleSnapshot("frontend", 3)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(sampleSnapshot("backend", 2)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(got))
	}

	byKey := map[string]int{}
	for _, snap := range got {
		byKey[snap.Category] = len(snap.Resources)
	}
	if byKey["frontend"] != 3 || byKey["backend"] != 2 {
		t.Errorf("unexpected resource counts: %v", byKey)
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	s := testStore(t)

	if err := s.Save(sampleSnapshot("frontend", 3)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := s.Save(sampleSnapshot("frontend", 9)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 snapshot after upsert, got %d", len(got))
	}
	if len(got[0].Resources) != 9 {
		t.Errorf("expected replaced snapshot with 9 resources, got %d", len(got[0].Resources))
	}
}

func TestLoadAllEmptyStore(t *testing.T) {
	s := testStore(t)

	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty store, got %d snapshots", len(got))
	}
}

func TestLastRefresh(t *testing.T) {
	s := testStore(t)

	if _, ok := s.LastRefresh(); ok {
		t.Error("expected no last refresh on a fresh store")
	}

	if err := s.SetLastRefresh(); err != nil {
		t.Fatalf("SetLastRefresh: %v", err)
	}

	got, ok := s.LastRefresh()
	if !ok {
		t.Fatal("expected last refresh to be recorded")
	}
	if time.Since(got) > time.Minute {
		t.Errorf("last refresh timestamp looks stale: %v", got)
	}
}

func TestSnapshotRoundTripPreservesFields(t *testing.T) {
	s := testStore(t)

	want := sampleSnapshot("frontend", 1)
	want.Provenance.Padded = 2
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	snap := got[0]
	if !snap.GeneratedAt.Equal(want.GeneratedAt) {
		t.Errorf("generated_at drifted: %v vs %v", snap.GeneratedAt, want.GeneratedAt)
	}
	if snap.Provenance != want.Provenance {
		t.Errorf("provenance drifted: %+v vs %+v", snap.Provenance, want.Provenance)
	}
	if snap.Resources[0].Link != want.Resources[0].Link {
		t.Errorf("resource link drifted: %s vs %s", snap.Resources[0].Link, want.Resources[0].Link)
	}
}
