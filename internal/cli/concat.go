package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/paths"
	"clipforge/internal/render"
	"clipforge/internal/tools"
	"clipforge/internal/tui"
)

var (
	concatOut    string
	concatDryRun bool
)

func newConcatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concat",
		Short: "Join rendered clips and mux the narration into the final video",
		RunE:  runConcat,
	}

	cmd.Flags().StringVar(&concatOut, "out", "", "Output file path (default: <project>/output.mp4)")
	cmd.Flags().BoolVar(&concatDryRun, "dry-run", false, "Print the resolved clip list without running ffmpeg")

	return cmd
}

func runConcat(cmd *cobra.Command, _ []string) error {
	pp, cfg, err := loadProject()
	if err != nil {
		return err
	}

	outWriter := cmd.OutOrStdout()
	sw := tui.NewStatusWriter(outWriter)
	defer sw.Stop()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
	defer cancel()

	sw.Update("Resolving clip order...")
	clips, err := orderedClips(ctx, pp, cfg)
	if err != nil {
		return err
	}
	if len(clips) == 0 {
		return fmt.Errorf("no clips found; run `clipforge render` first")
	}

	if concatDryRun {
		sw.Stop()
		fmt.Fprintf(outWriter, "Clip order (%d clips):\n", len(clips))
		for i, clip := range clips {
			fmt.Fprintf(outWriter, "  %3d  %s\n", i+1, relPath(pp.Root, clip))
		}
		return nil
	}

	sw.Update("Checking tools...")
	ffmpeg, err := tools.Lookup("ffmpeg")
	if err != nil {
		return fmt.Errorf("locate ffmpeg: %w", err)
	}

	if err := pp.EnsureMetaDirs(); err != nil {
		return err
	}

	sw.Update("Writing concat list...")
	if err := render.WriteConcatList(pp.ConcatList, clips); err != nil {
		return err
	}

	outputPath := pp.OutputFile
	if concatOut != "" {
		outputPath = concatOut
		if !filepath.IsAbs(outputPath) {
			outputPath = filepath.Join(pp.Root, outputPath)
		}
	}

	narration := ""
	if ok, _ := paths.FileExists(pp.NarrationFile); ok {
		narration = pp.NarrationFile
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: narration %s not found; output will be silent\n", relPath(pp.Root, pp.NarrationFile))
	}

	sw.Update(fmt.Sprintf("Concatenating %d clips → %s", len(clips), filepath.Base(outputPath)))
	result, err := render.RunConcat(ctx, render.CmdRunner{}, ffmpeg, pp.ConcatList, narration, outputPath, cfg)
	if err != nil {
		return err
	}

	sw.Stop()

	fmt.Fprintf(outWriter, "Done: %s\n", relPath(pp.Root, result.OutputPath))
	fmt.Fprintf(outWriter, "  method: %s\n", result.Method)
	if info, statErr := os.Stat(result.OutputPath); statErr == nil {
		fmt.Fprintf(outWriter, "  size: %s\n", formatBytes(info.Size()))
	}

	return nil
}

// orderedClips lists clip files in narration order using the compiled guide.
// When the guide cannot be compiled it falls back to the clips directory in
// name order.
func orderedClips(ctx context.Context, pp paths.ProjectPaths, cfg config.Config) ([]string, error) {
	compiled, _, err := compileProject(ctx, pp, cfg, cfg.Render.Concurrency)
	if err != nil {
		return render.CollectClips(pp.ClipsDir)
	}

	svc := &render.Service{Paths: pp, Config: cfg}
	clips := make([]string, 0, len(compiled))
	for _, c := range compiled {
		if c.Err != nil {
			continue
		}
		out, _ := svc.ClipPaths(c.Job)
		clips = append(clips, out)
	}
	return clips, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for n := n / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
