package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/paths"
	"clipforge/internal/render"
	"clipforge/internal/render/state"
	"clipforge/internal/tools"
	"clipforge/pkg/guide"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check project health",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	var checks []healthCheck

	checks = append(checks, checkTools(cmd))

	cfg, cfgErr := config.Load(pp.ConfigFile)
	checks = append(checks, checkConfig(pp, cfg, cfgErr))
	if cfgErr != nil {
		return writeDoctorResult(cmd, pp.Root, checks)
	}
	pp = paths.ApplyConfig(pp, cfg)

	checks = append(checks, checkGuide(pp))
	checks = append(checks, checkSubtitles(pp))
	checks = append(checks, checkAssets(pp, cfg))

	if !hasFailed(checks) {
		checks = append(checks, checkClips(cmd, pp, cfg))
	}

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkTools(cmd *cobra.Command) healthCheck {
	statuses, err := tools.Detect(cmd.Context())
	if err != nil {
		return healthCheck{Name: "Tools", Status: "error", Summary: err.Error()}
	}

	var satisfied, total int
	var toolInfo []string
	for _, st := range statuses {
		total++
		if st.Satisfied {
			satisfied++
			label := st.Tool
			if st.Version != "" {
				label += " " + st.Version
			}
			toolInfo = append(toolInfo, label)
		}
	}

	if satisfied == total {
		return healthCheck{Name: "Tools", Status: "ok", Summary: joinComma(toolInfo)}
	}
	return healthCheck{
		Name:    "Tools",
		Status:  "error",
		Summary: fmt.Sprintf("%d of %d tools satisfied", satisfied, total),
	}
}

func checkConfig(pp paths.ProjectPaths, cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	var warnings, errs int
	for _, v := range cfg.Validate(pp.Root) {
		switch v.Level {
		case config.LevelWarning:
			warnings++
		case config.LevelError:
			errs++
		}
	}

	summary := fmt.Sprintf("%dx%d @ %dfps", cfg.Video.Width, cfg.Video.Height, cfg.Video.FPS)
	if errs > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", summary, errs)}
	}
	if warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", summary, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

func checkGuide(pp paths.ProjectPaths) healthCheck {
	entries, err := guide.LoadGuide(pp.GuideFile)
	if err != nil {
		var verrs guide.ValidationErrors
		if errors.As(err, &verrs) {
			return healthCheck{Name: "Guide", Status: "error", Summary: fmt.Sprintf("%d validation errors", len(verrs))}
		}
		return healthCheck{Name: "Guide", Status: "error", Summary: err.Error()}
	}

	summary := fmt.Sprintf("%d entries", len(entries))
	if ok, _ := paths.FileExists(pp.CharacterGuide); ok {
		characters, err := guide.LoadCharacters(pp.CharacterGuide)
		if err != nil {
			return healthCheck{Name: "Guide", Status: "error", Summary: err.Error()}
		}
		summary += fmt.Sprintf(", %d character cues", len(characters))
	}
	return healthCheck{Name: "Guide", Status: "ok", Summary: summary}
}

func checkSubtitles(pp paths.ProjectPaths) healthCheck {
	cues, err := guide.LoadSRT(pp.SubtitlesFile)
	if err != nil {
		return healthCheck{Name: "Subtitles", Status: "error", Summary: err.Error()}
	}
	edits, err := guide.LoadEdits(pp.EditsFile)
	if err != nil {
		return healthCheck{Name: "Subtitles", Status: "error", Summary: err.Error()}
	}

	parts := []string{fmt.Sprintf("%d cues", len(cues))}
	if len(edits) > 0 {
		parts = append(parts, fmt.Sprintf("%d edits", len(edits)))
	}
	if ok, _ := paths.FileExists(pp.NarrationFile); !ok {
		parts = append(parts, "no narration audio")
		return healthCheck{Name: "Subtitles", Status: "warning", Summary: joinComma(parts)}
	}
	return healthCheck{Name: "Subtitles", Status: "ok", Summary: joinComma(parts)}
}

func checkAssets(pp paths.ProjectPaths, cfg config.Config) healthCheck {
	images, err := countImages(pp.ImagesDir)
	if err != nil {
		return healthCheck{Name: "Assets", Status: "error", Summary: err.Error()}
	}
	parts := []string{fmt.Sprintf("%d images", images)}

	status := "ok"
	if images == 0 {
		status = "warning"
	}
	def := filepath.Join(pp.CharactersDir, cfg.Character.Default+".png")
	if ok, _ := paths.FileExists(def); ok {
		parts = append(parts, "default character "+cfg.Character.Default)
	} else {
		status = "warning"
		parts = append(parts, "default character missing")
	}
	return healthCheck{Name: "Assets", Status: status, Summary: joinComma(parts)}
}

func countImages(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("list images: %w", err)
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, known := range guide.ImageExtensions {
			if ext == known {
				count++
				break
			}
		}
	}
	return count, nil
}

func checkClips(cmd *cobra.Command, pp paths.ProjectPaths, cfg config.Config) healthCheck {
	compiled, _, err := compileProject(cmd.Context(), pp, cfg, cfg.Render.Concurrency)
	if err != nil {
		return healthCheck{Name: "Clips", Status: "error", Summary: err.Error()}
	}

	rs, err := state.Load(pp.StateFile)
	if err != nil {
		return healthCheck{Name: "Clips", Status: "warning", Summary: "could not load render state"}
	}

	svc := &render.Service{Paths: pp, Config: cfg}
	var jobs []render.Job
	failed := 0
	for _, c := range compiled {
		if c.Err != nil {
			failed++
			continue
		}
		job := c.Job
		job.OutputPath, _ = svc.ClipPaths(job)
		jobs = append(jobs, job)
	}

	var rendered, staleCount, missingCount int
	for _, a := range state.DetectChanges(rs, jobs, cfg, false) {
		if a.Action == state.ActionSkip {
			rendered++
			continue
		}
		switch a.Reason {
		case state.ReasonNew, state.ReasonOutputMissing:
			missingCount++
		default:
			staleCount++
		}
	}

	if failed > 0 {
		return healthCheck{Name: "Clips", Status: "error", Summary: fmt.Sprintf("%d of %d clips fail to compile", failed, len(compiled))}
	}
	if rendered == len(jobs) {
		return healthCheck{Name: "Clips", Status: "ok", Summary: fmt.Sprintf("%d clips rendered", rendered)}
	}

	parts := []string{}
	if staleCount > 0 {
		parts = append(parts, fmt.Sprintf("%d stale", staleCount))
	}
	if missingCount > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", missingCount))
	}
	return healthCheck{Name: "Clips", Status: "warning", Summary: joinComma(parts)}
}

func hasFailed(checks []healthCheck) bool {
	for _, c := range checks {
		if c.Status == "error" && c.Name != "Tools" {
			return true
		}
	}
	return false
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("PROJECT HEALTH:")+" "+projectRoot)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	return nil
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
