package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/paths"
	"clipforge/pkg/guide"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the config, guides and compiled clip plans",
		RunE:  runValidate,
	}
}

// finding is one validation result tagged with where it came from.
type finding struct {
	Level   string `json:"level"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

func runValidate(cmd *cobra.Command, _ []string) error {
	pp, cfg, err := loadProject()
	if err != nil {
		return err
	}

	findings := collectFindings(cmd.Context(), pp, cfg)

	if outputJSON {
		data, err := json.MarshalIndent(findings, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
	} else {
		writeFindings(cmd, findings)
	}

	if n := countLevel(findings, config.LevelError); n > 0 {
		return fmt.Errorf("validation failed with %d error(s)", n)
	}
	return nil
}

// collectFindings validates each project input in pipeline order. Later
// stages only run when the inputs they depend on loaded.
func collectFindings(ctx context.Context, pp paths.ProjectPaths, cfg config.Config) []finding {
	var findings []finding
	add := func(level, source, message string) {
		findings = append(findings, finding{Level: level, Source: source, Message: message})
	}

	results := cfg.Validate(pp.Root)
	for _, r := range results {
		add(r.Level, "config", r.Message)
	}
	if config.HasErrors(results) {
		return findings
	}

	loaded := true
	if _, err := guide.LoadGuide(pp.GuideFile); err != nil {
		addLoadError(add, "guide", err)
		loaded = false
	}
	if ok, _ := paths.FileExists(pp.CharacterGuide); ok {
		if _, err := guide.LoadCharacters(pp.CharacterGuide); err != nil {
			addLoadError(add, "characters", err)
			loaded = false
		}
	}
	if _, err := guide.LoadSRT(pp.SubtitlesFile); err != nil {
		add(config.LevelError, "subtitles", err.Error())
		loaded = false
	}
	if _, err := guide.LoadEdits(pp.EditsFile); err != nil {
		add(config.LevelError, "edits", err.Error())
		loaded = false
	}
	if !loaded {
		return findings
	}

	compiled, warnings, err := compileProject(ctx, pp, cfg, cfg.Render.Concurrency)
	findings = append(findings, warningFindings("build", warnings)...)
	if err != nil {
		add(config.LevelError, "build", err.Error())
		return findings
	}
	for _, c := range compiled {
		source := fmt.Sprintf("clip %03d", c.Job.Index)
		findings = append(findings, warningFindings(source, c.Warnings)...)
		if c.Err != nil {
			add(config.LevelError, source, c.Err.Error())
		}
	}
	return findings
}

func addLoadError(add func(level, source, message string), source string, err error) {
	var verrs guide.ValidationErrors
	if errors.As(err, &verrs) {
		for _, issue := range verrs {
			add(config.LevelError, source, issue.Error())
		}
		return
	}
	add(config.LevelError, source, err.Error())
}

func writeFindings(cmd *cobra.Command, findings []finding) {
	if len(findings) == 0 {
		cmd.Println("No issues found.")
		return
	}
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{f.Level, f.Source, f.Message}
	}
	cmd.Println(renderTable([]string{"Level", "Source", "Message"}, rows, nil))
	cmd.Printf("%d error(s), %d warning(s)\n", countLevel(findings, config.LevelError), countLevel(findings, config.LevelWarning))
}

func countLevel(findings []finding, level string) int {
	n := 0
	for _, f := range findings {
		if f.Level == level {
			n++
		}
	}
	return n
}

// warningFindings converts compile warnings for display alongside other
// findings.
func warningFindings(source string, warnings []clip.Warning) []finding {
	out := make([]finding, len(warnings))
	for i, w := range warnings {
		out[i] = finding{Level: config.LevelWarning, Source: source, Message: w.Message}
	}
	return out
}
