package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	rs, err := Load(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.GlobalConfigHash != "" {
		t.Errorf("expected empty global hash, got %q", rs.GlobalConfigHash)
	}
	if len(rs.Clips) != 0 {
		t.Errorf("expected empty clips, got %d", len(rs.Clips))
	}
}

func TestLoadCorruptFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.Clips == nil || len(rs.Clips) != 0 {
		t.Errorf("expected empty clip map, got %v", rs.Clips)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta", "state.json")

	now := time.Now().Truncate(time.Second)
	job := testJob(t, "", "/output/clip_001.mp4")
	rs := &RenderState{GlobalConfigHash: "sha256:abc123"}
	rs.Record(job, now)

	if err := rs.Save(path); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected .tmp file to not exist")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if loaded.GlobalConfigHash != rs.GlobalConfigHash {
		t.Errorf("global hash: got %q, want %q", loaded.GlobalConfigHash, rs.GlobalConfigHash)
	}

	entry, ok := loaded.Clips["/output/clip_001.mp4"]
	if !ok {
		t.Fatal("clip not found after round trip")
	}
	if entry.InputHash != ClipInputHash(job) {
		t.Errorf("input hash: got %q, want %q", entry.InputHash, ClipInputHash(job))
	}
	if !entry.RenderedAt.Equal(now) {
		t.Errorf("rendered_at: got %v, want %v", entry.RenderedAt, now)
	}
	if entry.Trigger != "test" || entry.DurationS != 2 {
		t.Errorf("unexpected entry %+v", entry)
	}
}
