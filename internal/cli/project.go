package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/paths"
	"clipforge/internal/plan"
	"clipforge/internal/render"
	"clipforge/internal/tools"
	"clipforge/pkg/guide"
)

// loadProject resolves the project root, loads its config and applies the
// configured file overrides.
func loadProject() (paths.ProjectPaths, config.Config, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return paths.ProjectPaths{}, config.Config{}, err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return pp, config.Config{}, fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return pp, config.Config{}, fmt.Errorf("project directory does not exist: %s", pp.Root)
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return pp, config.Config{}, err
	}
	return paths.ApplyConfig(pp, cfg), cfg, nil
}

// newProber returns an image prober backed by ffprobe when it is on PATH.
func newProber() render.ImageProber {
	prober := render.ImageProber{Runner: render.CmdRunner{}}
	if path, err := tools.Lookup("ffprobe"); err == nil {
		prober.FFprobe = path
	}
	return prober
}

// projectClips is the guide pipeline output for a project.
type projectClips struct {
	Clips    []guide.Clip
	Warnings []clip.Warning
}

// buildProjectClips loads the guide, character guide, subtitles and edits
// and builds the project's clips. The narration length comes from ffprobe,
// falling back to the end of the last subtitle.
func buildProjectClips(ctx context.Context, pp paths.ProjectPaths, cfg config.Config, prober render.ImageProber) (projectClips, error) {
	entries, err := guide.LoadGuide(pp.GuideFile)
	if err != nil {
		return projectClips{}, err
	}

	var characters []guide.CharacterEntry
	useCharacter := false
	if ok, _ := paths.FileExists(pp.CharacterGuide); ok {
		characters, err = guide.LoadCharacters(pp.CharacterGuide)
		if err != nil {
			return projectClips{}, err
		}
		useCharacter = true
	}

	cues, err := guide.LoadSRT(pp.SubtitlesFile)
	if err != nil {
		return projectClips{}, err
	}
	edits, err := guide.LoadEdits(pp.EditsFile)
	if err != nil {
		return projectClips{}, err
	}
	timing := guide.ApplyEdits(cues, edits)

	var warnings []clip.Warning
	audio, err := narrationDuration(ctx, pp, prober)
	if err != nil {
		audio = lastEnd(timing)
		warnings = append(warnings, clip.Configf("narration duration unavailable (%v); using last subtitle end %.3fs", err, audio))
	}

	clips, buildWarnings, err := guide.Build(entries, characters, timing, guide.Options{
		Config:        cfg,
		ImagesDir:     pp.ImagesDir,
		CharactersDir: pp.CharactersDir,
		UseCharacter:  useCharacter,
		AudioDuration: audio,
	})
	if err != nil {
		return projectClips{}, err
	}
	return projectClips{Clips: clips, Warnings: append(warnings, buildWarnings...)}, nil
}

func narrationDuration(ctx context.Context, pp paths.ProjectPaths, prober render.ImageProber) (float64, error) {
	if _, err := os.Stat(pp.NarrationFile); err != nil {
		return 0, err
	}
	return prober.Duration(ctx, pp.NarrationFile)
}

func lastEnd(timing []guide.TimingEntry) float64 {
	end := 0.0
	for _, t := range timing {
		end = max(end, t.End())
	}
	return end
}

// compiledClip is one clip after plan compilation.
type compiledClip struct {
	Job      render.Job
	Warnings []clip.Warning
	Err      error
}

// compileProject builds and compiles every clip. Clip indexes are 1-based
// in narration order.
func compileProject(ctx context.Context, pp paths.ProjectPaths, cfg config.Config, concurrency int) ([]compiledClip, []clip.Warning, error) {
	prober := newProber()
	built, err := buildProjectClips(ctx, pp, cfg, prober)
	if err != nil {
		return nil, nil, err
	}
	compiled, err := compileBuilt(ctx, cfg, built, prober, concurrency)
	return compiled, built.Warnings, err
}

// compileBuilt compiles already built clips.
func compileBuilt(ctx context.Context, cfg config.Config, built projectClips, prober plan.Prober, concurrency int) ([]compiledClip, error) {
	if len(built.Clips) == 0 {
		return nil, errors.New("guide produced no clips")
	}

	results, err := plan.CompileAll(ctx, cfg, guide.Specs(built.Clips), prober, concurrency)
	if err != nil {
		return nil, err
	}

	compiled := make([]compiledClip, len(results))
	for i, res := range results {
		c := built.Clips[i]
		compiled[i] = compiledClip{
			Job:      render.Job{Index: i + 1, Trigger: c.Trigger, Plan: res.Plan},
			Warnings: res.Warnings,
			Err:      res.Err,
		}
	}
	return compiled, nil
}

func warningStrings(warnings []clip.Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
