package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/config"
)

// ProjectPaths captures canonical locations for a clipforge project.
type ProjectPaths struct {
	Root           string
	ConfigFile     string
	GuideFile      string
	CharacterGuide string
	SubtitlesFile  string
	EditsFile      string
	NarrationFile  string
	ImagesDir      string
	CharactersDir  string
	ClipsDir       string
	LogsDir        string
	MetaDir        string
	StateFile      string
	LockFile       string
	ConcatList     string
	OutputFile     string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".clipforge")
	return ProjectPaths{
		Root:           root,
		ConfigFile:     filepath.Join(root, "clipforge.yaml"),
		GuideFile:      filepath.Join(root, "guide.yaml"),
		CharacterGuide: filepath.Join(root, "characters.yaml"),
		SubtitlesFile:  filepath.Join(root, "narration.srt"),
		EditsFile:      filepath.Join(root, "edits.json"),
		NarrationFile:  filepath.Join(root, "narration.mp3"),
		ImagesDir:      filepath.Join(root, "images"),
		CharactersDir:  filepath.Join(root, "characters"),
		ClipsDir:       filepath.Join(root, "clips"),
		LogsDir:        filepath.Join(root, "logs"),
		MetaDir:        metaDir,
		StateFile:      filepath.Join(metaDir, "render_state.json"),
		LockFile:       filepath.Join(metaDir, "render.lock"),
		ConcatList:     filepath.Join(metaDir, "concat.txt"),
		OutputFile:     filepath.Join(root, "output.mp4"),
	}
}

// ApplyConfig points the file locations at any overrides in cfg.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	override := func(target *string, value string) {
		if value = strings.TrimSpace(value); value != "" {
			*target = resolveProjectPath(pp.Root, value)
		}
	}
	override(&pp.GuideFile, cfg.Files.Guide)
	override(&pp.CharacterGuide, cfg.Files.Characters)
	override(&pp.SubtitlesFile, cfg.Files.Subtitles)
	override(&pp.EditsFile, cfg.Files.Edits)
	override(&pp.NarrationFile, cfg.Files.Narration)
	override(&pp.ImagesDir, cfg.Files.Images)
	override(&pp.OutputFile, cfg.Files.Output)
	override(&pp.CharactersDir, cfg.Character.Dir)
	return pp
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// EnsureMetaDirs creates the clips/logs hierarchy alongside the hidden
// .clipforge metadata directory.
func (p ProjectPaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.ClipsDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureAssetDirs creates the image and character source directories.
func (p ProjectPaths) EnsureAssetDirs() error {
	for _, dir := range []string{p.ImagesDir, p.CharactersDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
