package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/logx"
	"clipforge/pkg/guide"
)

func TestResolveInitDir(t *testing.T) {
	t.Run("project flag takes precedence", func(t *testing.T) {
		dir, err := resolveInitDir("/custom/path", []string{"ignored"})
		if err != nil {
			t.Fatal(err)
		}
		if dir != "/custom/path" {
			t.Fatalf("got %s, want /custom/path", dir)
		}
	})

	t.Run("dot uses cwd", func(t *testing.T) {
		cwd, _ := os.Getwd()
		dir, err := resolveInitDir("", []string{"."})
		if err != nil {
			t.Fatal(err)
		}
		if dir != cwd {
			t.Fatalf("got %s, want %s", dir, cwd)
		}
	})

	t.Run("named arg creates subdirectory", func(t *testing.T) {
		cwd, _ := os.Getwd()
		dir, err := resolveInitDir("", []string{"my-project"})
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(cwd, "my-project")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})
}

func TestNextAvailableDir(t *testing.T) {
	base := t.TempDir()

	t.Run("returns clipforge-1 when empty", func(t *testing.T) {
		dir, err := nextAvailableDir(base)
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(base, "clipforge-1")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})

	t.Run("skips existing directories", func(t *testing.T) {
		if err := os.Mkdir(filepath.Join(base, "clipforge-1"), 0o755); err != nil {
			t.Fatal(err)
		}
		dir, err := nextAvailableDir(base)
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(base, "clipforge-2")
		if dir != want {
			t.Fatalf("got %s, want %s", dir, want)
		}
	})
}

func TestEnsureProjectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "guide.yaml")
	logger := logx.NewNop()

	wrote, err := ensureProjectFile(path, []byte("first"), logger)
	if err != nil || !wrote {
		t.Fatalf("first write: wrote=%v err=%v", wrote, err)
	}
	wrote, err = ensureProjectFile(path, []byte("second"), logger)
	if err != nil || wrote {
		t.Fatalf("second write: wrote=%v err=%v", wrote, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "first" {
		t.Fatalf("existing file overwritten: %q", data)
	}
}

func TestRunInitCreatesProject(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init", "--project", root})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { projectDir = "" })

	for _, name := range []string{"clipforge.yaml", "guide.yaml", "characters.yaml"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	for _, dir := range []string{"images", "characters", "clips", ".clipforge"} {
		if info, err := os.Stat(filepath.Join(root, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s (err %v)", dir, err)
		}
	}
	if !strings.Contains(out.String(), "created guide.yaml") {
		t.Fatalf("unexpected output: %q", out.String())
	}

	if _, err := config.Load(filepath.Join(root, "clipforge.yaml")); err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init", "--project", root})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !strings.Contains(out.String(), "already initialized") {
		t.Fatalf("expected already initialized, got %q", out.String())
	}
}

func TestSampleGuidesAreCommentedOut(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.yaml")
	if err := os.WriteFile(path, []byte(guideYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	// The sample holds no entries until the user adds some.
	if _, err := guide.LoadGuide(path); err == nil {
		t.Fatal("expected the commented sample guide to have no entries")
	}
}
