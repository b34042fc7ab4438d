package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/logx"
	"clipforge/internal/paths"
)

const (
	guideYAML = `# One entry per clip. The trigger is matched against the narration subtitles.
# - trigger: "the first cat"
#   mode: image-only        # image-only, image-with-text or text-only
#   image_ids: ["1"]        # matches images/1_*.png
#   layout: image-only-center
#   effects:
#     zoom: true
#     slide: left
# - trigger: "a quick note"
#   mode: text-only
#   text: "Remember this"
#   caption_anchor: center
`
	charactersYAML = `# Character expressions keyed by narration trigger.
# - trigger: "surprise"
#   expression: shocked     # characters/shocked.png
#   speech: "Whoa!"
`
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a clipforge project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}

	return cmd
}

func resolveInitDir(projectFlag string, args []string) (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if len(args) > 0 {
		if args[0] == "." {
			return cwd, nil
		}
		return filepath.Join(cwd, args[0]), nil
	}

	return nextAvailableDir(cwd)
}

func nextAvailableDir(base string) (string, error) {
	for i := 1; ; i++ {
		candidate := filepath.Join(base, fmt.Sprintf("clipforge-%d", i))
		exists, err := paths.DirExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveInitDir(projectDir, args)
	if err != nil {
		return err
	}

	pp, err := paths.Resolve(dir)
	if err != nil {
		return err
	}

	if err := pp.EnsureRoot(); err != nil {
		return err
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		return err
	}
	if err := pp.EnsureAssetDirs(); err != nil {
		return err
	}

	logger, closer, err := logx.NewProjectLogger(pp, logx.Options{})
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info("clipforge init", "project", pp.Root)

	created := make([]string, 0, 3)

	defaultConfig, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	files := []struct {
		path    string
		content []byte
	}{
		{pp.ConfigFile, defaultConfig},
		{pp.GuideFile, []byte(guideYAML)},
		{pp.CharacterGuide, []byte(charactersYAML)},
	}
	for _, f := range files {
		wrote, err := ensureProjectFile(f.path, f.content, logger)
		if err != nil {
			return err
		}
		if wrote {
			created = append(created, filepath.Base(f.path))
		}
	}

	if len(created) == 0 {
		cmd.Printf("Project already initialized at %s\n", pp.Root)
		return nil
	}

	cmd.Printf("Initialized project at %s\n", pp.Root)
	for _, entry := range created {
		cmd.Printf("  created %s\n", entry)
	}

	return nil
}

func defaultConfigYAML() ([]byte, error) {
	cfg := config.Default()
	cfg.ApplyDefaults()
	return cfg.Marshal()
}

// ensureProjectFile writes content to path unless the file already exists.
func ensureProjectFile(path string, content []byte, logger *slog.Logger) (bool, error) {
	name := filepath.Base(path)
	exists, err := paths.FileExists(path)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", name, err)
	}
	if exists {
		logger.Debug("project file exists", "path", path)
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("ensure %s dir: %w", name, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", name, err)
	}
	logger.Info("created project file", "path", path)
	return true, nil
}
