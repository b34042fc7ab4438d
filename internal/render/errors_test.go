package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewProcessErrorTruncatesOnRuneBoundary(t *testing.T) {
	// an odd byte budget over two-byte runes forces a cut mid-rune
	stderr := strings.Repeat("é", maxErrorStderrLen/2+1) + "x"
	pe := NewProcessError("ffmpeg", nil, []byte(stderr), errors.New("exit status 1"))
	if !utf8.ValidString(pe.Stderr) {
		t.Fatalf("truncated stderr is not valid UTF-8: %q", pe.Stderr[:8])
	}
	if !strings.HasPrefix(pe.Stderr, "…é") || !strings.HasSuffix(pe.Stderr, "éx") {
		t.Fatalf("unexpected truncation: %q...", pe.Stderr[:8])
	}
	if len(pe.Stderr) > len("…")+maxErrorStderrLen {
		t.Fatalf("tail too long: %d bytes", len(pe.Stderr))
	}
}

func TestNewProcessErrorTruncates(t *testing.T) {
	args := make([]string, 30)
	for i := range args {
		args[i] = fmt.Sprintf("a%d", i)
	}
	stderr := strings.Repeat("x", maxErrorStderrLen) + "tail"
	cause := errors.New("exit status 1")

	err := NewProcessError("ffmpeg", args, []byte(stderr), cause)
	if len(err.Args) != maxErrorArgs {
		t.Fatalf("expected %d args, got %d", maxErrorArgs, len(err.Args))
	}
	if !strings.HasSuffix(err.Stderr, "tail") || len(err.Stderr) > maxErrorStderrLen+len("…") {
		t.Fatalf("expected stderr tail to be kept, got %d bytes", len(err.Stderr))
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected ProcessError to unwrap to its cause")
	}
	err.LogPath = "/tmp/clip.log"
	msg := err.Error()
	for _, want := range []string{"ffmpeg failed: exit status 1", "see /tmp/clip.log", "command: ffmpeg a0 a1"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
	if strings.Contains(msg, "a25") {
		t.Fatal("expected args past the limit to be dropped")
	}
}
