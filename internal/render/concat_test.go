package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"clipforge/internal/config"
)

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "b.mp4")
	second := filepath.Join(dir, "it's.mp4")
	for _, p := range []string{first, second} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	list := filepath.Join(dir, "meta", "concat.txt")
	if err := WriteConcatList(list, []string{first, second}); err != nil {
		t.Fatalf("WriteConcatList error: %v", err)
	}
	data, err := os.ReadFile(list)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "file '" + first + "'\nfile '" + filepath.Join(dir, `it'\''s.mp4`) + "'\n"
	if string(data) != want {
		t.Fatalf("unexpected list:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriteConcatListMissing(t *testing.T) {
	dir := t.TempDir()
	err := WriteConcatList(filepath.Join(dir, "concat.txt"), []string{filepath.Join(dir, "gone.mp4")})
	if err == nil || !strings.Contains(err.Error(), "gone.mp4") {
		t.Fatalf("expected missing clip error, got %v", err)
	}
	if err := WriteConcatList(filepath.Join(dir, "concat.txt"), nil); err == nil {
		t.Fatal("expected error for empty clip list")
	}
}

func TestCollectClips(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"clip_002.mp4", "clip_001.mp4", "notes.txt", "clip_003.MP4"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	clips, err := CollectClips(dir)
	if err != nil {
		t.Fatalf("CollectClips error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "clip_001.mp4"),
		filepath.Join(dir, "clip_002.mp4"),
		filepath.Join(dir, "clip_003.MP4"),
	}
	if !slices.Equal(clips, want) {
		t.Fatalf("expected %v, got %v", want, clips)
	}

	if clips, err := CollectClips(filepath.Join(dir, "missing")); err != nil || len(clips) != 0 {
		t.Fatalf("expected empty result for missing dir, got %v, %v", clips, err)
	}
}

func TestRunConcatStreamCopy(t *testing.T) {
	runner := &fakeRunner{}
	out := filepath.Join(t.TempDir(), "output.mp4")

	res, err := RunConcat(context.Background(), runner, "ffmpeg", "list.txt", "voice.mp3", out, config.Default())
	if err != nil {
		t.Fatalf("RunConcat error: %v", err)
	}
	if res.Method != "stream_copy" {
		t.Fatalf("expected stream copy, got %s", res.Method)
	}
	args := strings.Join(runner.calls[0], " ")
	for _, expected := range []string{
		"-f concat -safe 0 -i list.txt",
		"-i voice.mp3 -map 0:v -map 1:a",
		"-c:v copy",
		"-c:a aac -b:a 192k",
	} {
		if !strings.Contains(args, expected) {
			t.Fatalf("expected %q in %s", expected, args)
		}
	}
}

func TestRunConcatFallsBackToReencode(t *testing.T) {
	calls := 0
	runner := &fakeRunner{onRun: func(args []string) error {
		calls++
		if calls == 1 {
			return errors.New("exit status 1")
		}
		return nil
	}}
	out := filepath.Join(t.TempDir(), "output.mp4")

	res, err := RunConcat(context.Background(), runner, "ffmpeg", "list.txt", "", out, config.Default())
	if err != nil {
		t.Fatalf("RunConcat error: %v", err)
	}
	if res.Method != "re-encode" {
		t.Fatalf("expected re-encode, got %s", res.Method)
	}
	args := strings.Join(runner.calls[1], " ")
	if !strings.Contains(args, "-c:v libx264 -preset fast -crf 23") {
		t.Fatalf("unexpected re-encode args %s", args)
	}
	if strings.Contains(args, "-map 1:a") {
		t.Fatalf("expected no audio mapping without narration: %s", args)
	}
}

func TestRunConcatFailure(t *testing.T) {
	runner := &fakeRunner{stderr: []byte("Invalid data"), err: errors.New("exit status 1")}
	_, err := RunConcat(context.Background(), runner, "ffmpeg", "list.txt", "", filepath.Join(t.TempDir(), "o.mp4"), config.Default())
	var procErr *ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ProcessError, got %v", err)
	}
}
