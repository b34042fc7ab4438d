package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/paths"
	"clipforge/internal/render"
	"clipforge/internal/render/state"
)

var cleanDryRun bool

// cleanTarget is one clean subcommand. collect returns the files to remove;
// after runs once the sweep is done and is skipped on dry runs.
type cleanTarget struct {
	name    string
	short   string
	collect func(ctx context.Context, pp paths.ProjectPaths) ([]string, error)
	after   func(pp paths.ProjectPaths) error
}

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove derived artifacts from the project",
	}
	cmd.PersistentFlags().BoolVar(&cleanDryRun, "dry-run", false, "List what would be removed without deleting")

	for _, target := range cleanTargets() {
		cmd.AddCommand(&cobra.Command{
			Use:   target.name,
			Short: target.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runClean(cmd, target)
			},
		})
	}
	return cmd
}

func cleanTargets() []cleanTarget {
	return []cleanTarget{
		{
			name:  "clips",
			short: "Remove all rendered clips and render state",
			collect: func(_ context.Context, pp paths.ProjectPaths) ([]string, error) {
				clips, err := findFiles(pp.ClipsDir, "*.mp4")
				if err != nil {
					return nil, err
				}
				return append(clips, existing(pp.StateFile)...), nil
			},
		},
		{
			name:  "logs",
			short: "Remove all log files",
			collect: func(_ context.Context, pp paths.ProjectPaths) ([]string, error) {
				return findFiles(pp.LogsDir, "")
			},
		},
		orphansTarget(),
		{
			name:  "all",
			short: "Remove clips, logs, render state and the concat list",
			collect: func(_ context.Context, pp paths.ProjectPaths) ([]string, error) {
				files, err := findFiles(pp.ClipsDir, "*.mp4")
				if err != nil {
					return nil, err
				}
				frames, err := findFiles(pp.ClipsDir, "*.png")
				if err != nil {
					return nil, err
				}
				logs, err := findFiles(pp.LogsDir, "")
				if err != nil {
					return nil, err
				}
				files = slices.Concat(files, frames, logs, existing(pp.StateFile), existing(pp.ConcatList))
				return files, nil
			},
		},
	}
}

type cleanResult struct {
	Removed    int   `json:"removed"`
	FreedBytes int64 `json:"freed_bytes"`
	Skipped    int   `json:"skipped"`
	DryRun     bool  `json:"dry_run"`
}

func runClean(cmd *cobra.Command, target cleanTarget) error {
	pp, err := existingProjectPaths()
	if err != nil {
		return err
	}

	files, err := target.collect(cmd.Context(), pp)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	for _, path := range files {
		removeFileEntry(path, out, &result)
	}

	if target.after != nil && !cleanDryRun {
		if err := target.after(pp); err != nil {
			return err
		}
	}
	return writeCleanResult(out, target.name, result)
}

func existingProjectPaths() (paths.ProjectPaths, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return pp, err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return pp, fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return pp, fmt.Errorf("project directory does not exist: %s", pp.Root)
	}
	return pp, nil
}

// orphansTarget removes clips the guide no longer produces and drops their
// render state entries.
func orphansTarget() cleanTarget {
	var expected map[string]bool
	return cleanTarget{
		name:  "orphans",
		short: "Remove clip files the guide no longer produces",
		collect: func(ctx context.Context, _ paths.ProjectPaths) ([]string, error) {
			pp, cfg, err := loadProject()
			if err != nil {
				return nil, err
			}
			if expected, err = expectedClipPaths(ctx, pp, cfg); err != nil {
				return nil, err
			}
			actual, err := findFiles(pp.ClipsDir, "*.mp4")
			if err != nil {
				return nil, err
			}
			return diffPaths(actual, expected), nil
		},
		after: func(pp paths.ProjectPaths) error {
			rs, err := state.Load(pp.StateFile)
			if err != nil {
				return err
			}
			state.Prune(rs, expected)
			if err := rs.Save(pp.StateFile); err != nil {
				return fmt.Errorf("save render state: %w", err)
			}
			return nil
		},
	}
}

// expectedClipPaths returns the output path of every clip the guide
// currently compiles to.
func expectedClipPaths(ctx context.Context, pp paths.ProjectPaths, cfg config.Config) (map[string]bool, error) {
	compiled, _, err := compileProject(ctx, pp, cfg, cfg.Render.Concurrency)
	if err != nil {
		return nil, err
	}

	svc := &render.Service{Paths: pp, Config: cfg}
	expected := make(map[string]bool, len(compiled))
	for _, c := range compiled {
		if c.Err != nil {
			continue
		}
		out, _ := svc.ClipPaths(c.Job)
		expected[out] = true
	}
	return expected, nil
}

// findFiles walks root and returns the regular files whose base name matches
// the glob pattern, sorted. An empty pattern matches every file and a missing
// root yields nothing.
func findFiles(root, pattern string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil && path == root && os.IsNotExist(err):
			return fs.SkipAll
		case err != nil:
			return nil
		case d.IsDir():
			return nil
		}
		if pattern != "" {
			if ok, _ := filepath.Match(pattern, d.Name()); !ok {
				return nil
			}
		}
		matches = append(matches, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	slices.Sort(matches)
	return matches, nil
}

// existing returns path in a one-element slice when it is a regular file.
func existing(path string) []string {
	if ok, err := paths.FileExists(path); err != nil || !ok {
		return nil
	}
	return []string{path}
}

func diffPaths(actual []string, expected map[string]bool) []string {
	var orphans []string
	for _, path := range actual {
		if !expected[path] {
			orphans = append(orphans, path)
		}
	}
	slices.Sort(orphans)
	return orphans
}

func removeFileEntry(path string, out io.Writer, result *cleanResult) {
	info, err := os.Stat(path)
	if err != nil {
		result.Skipped++
		return
	}
	size := info.Size()

	verb := "would remove"
	if !cleanDryRun {
		if err := os.Remove(path); err != nil {
			if !outputJSON {
				fmt.Fprintf(out, "error removing %s: %v\n", path, err)
			}
			result.Skipped++
			return
		}
		verb = "removed"
	}

	result.Removed++
	result.FreedBytes += size
	if !outputJSON {
		fmt.Fprintf(out, "%s %s (%s)\n", verb, path, formatBytes(size))
	}
}

func writeCleanResult(out io.Writer, label string, result cleanResult) error {
	if outputJSON {
		return json.NewEncoder(out).Encode(result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nClean %s", label)
	if cleanDryRun {
		b.WriteString(" (dry run)")
	} else {
		b.WriteString(" complete")
	}
	fmt.Fprintf(&b, ": %d removed, %s freed, %d skipped\n", result.Removed, formatBytes(result.FreedBytes), result.Skipped)
	_, err := io.WriteString(out, b.String())
	return err
}
