package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/effects"
	"clipforge/internal/expr"
	"clipforge/internal/plan"
)

// FFmpeg renders expression trees in ffmpeg's expression syntax.
var FFmpeg = expr.Dialect{
	Name: "ffmpeg",
	Vars: map[expr.Var]string{
		expr.Frame:    "n",
		expr.Time:     "t",
		expr.FrameW:   "W",
		expr.FrameH:   "H",
		expr.LayerW:   "w",
		expr.LayerH:   "h",
		expr.TextW:    "text_w",
		expr.TextH:    "text_h",
		expr.OutFrame: "on",
		expr.InW:      "iw",
		expr.InH:      "ih",
		expr.Zoom:     "zoom",
	},
	Funcs:   map[expr.Func]string{expr.FnMin: "min", expr.FnMax: "max", expr.FnSin: "sin"},
	If:      "if",
	Lt:      "lt",
	Between: "between",
}

const outputLabel = "vout"

// BuildFilterGraph constructs the ffmpeg filter_complex graph for a plan. Input
// stream i of the graph is plan input i.
func BuildFilterGraph(p plan.Plan) (string, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return "", errors.New("invalid video dimensions")
	}
	if p.FPS <= 0 {
		return "", errors.New("invalid video fps")
	}
	if p.Background < 0 || p.Background >= len(p.Inputs) {
		return "", errors.New("plan has no background input")
	}

	chains := []string{fmt.Sprintf("[%d:v]format=rgba[bg]", p.Background)}
	current := "bg"
	background := p.Inputs[p.Background].Color

	for i, ov := range p.Overlays {
		next := fmt.Sprintf("v%d", i)
		switch ov.Kind {
		case plan.OverlayImage:
			layer := fmt.Sprintf("img%d", i)
			chains = append(chains, fmt.Sprintf("[%d:v]%s[%s]", ov.Input, imageChain(p, ov, background), layer))
			chains = append(chains, overlayChain(current, layer, next, ov))
		case plan.OverlayCharacter:
			layer := fmt.Sprintf("char%d", i)
			chains = append(chains, fmt.Sprintf("[%d:v]%s[%s]", ov.Input, characterChain(ov), layer))
			chains = append(chains, overlayChain(current, layer, next, ov))
		case plan.OverlayCaption, plan.OverlaySpeech:
			chains = append(chains, fmt.Sprintf("[%s]%s[%s]", current, buildDrawText(ov), next))
		default:
			return "", fmt.Errorf("unknown overlay kind %d", ov.Kind)
		}
		current = next
	}
	chains = append(chains, fmt.Sprintf("[%s]format=yuv420p[%s]", current, outputLabel))
	return strings.Join(chains, ";"), nil
}

func imageChain(p plan.Plan, ov plan.Overlay, background string) string {
	filters := []string{"setsar=1", "format=rgba"}
	if z := ov.Zoom; z != nil {
		// zoompan emits d frames per input frame; feed it the first one only.
		filters = append(filters,
			"trim=end_frame=1",
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", z.CanvasW, z.CanvasH),
			fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s", z.CanvasW, z.CanvasH, fallback(background, "black")),
			fmt.Sprintf("zoompan=z='%s':x='%s':y='%s':d=%d:s=%dx%d:fps=%d",
				formatExpr(z.Factor), formatExpr(z.X), formatExpr(z.Y),
				z.LastFrame-z.FirstFrame+1, ov.Width, ov.Height, p.FPS),
		)
	} else {
		filters = append(filters,
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", ov.Width, ov.Height),
			fmt.Sprintf("fps=%d", p.FPS),
		)
	}
	if ov.Blur != nil {
		filters = append(filters, blurFilter(ov.Blur))
	}
	return strings.Join(filters, ",")
}

func blurFilter(b *effects.Blur) string {
	enable := fmt.Sprintf("enable='%s'", formatExpr(b.Window()))
	switch b.Method {
	case effects.BlurBox:
		return fmt.Sprintf("boxblur=luma_radius=%s:luma_power=1:%s", formatFloat(b.Radius), enable)
	case effects.BlurTMix:
		return fmt.Sprintf("tmix=frames=%d:%s", b.Frames, enable)
	default:
		return fmt.Sprintf("tblend=all_mode=average:all_opacity=%s:%s", formatFloat(b.Opacity), enable)
	}
}

func characterChain(ov plan.Overlay) string {
	filters := []string{"setsar=1", "format=rgba"}
	if ov.Scale == nil || !expr.Uses(ov.Scale, expr.Frame) {
		filters = append(filters, fmt.Sprintf("scale=%d:%d", ov.Width, ov.Height))
	} else {
		scale := formatExpr(ov.Scale)
		filters = append(filters, fmt.Sprintf("scale=w='%d*(%s)':h='%d*(%s)':eval=frame", ov.Width, scale, ov.Height, scale))
	}
	return strings.Join(filters, ",")
}

func overlayChain(base, layer, out string, ov plan.Overlay) string {
	return fmt.Sprintf("[%s][%s]overlay=x='%s':y='%s':shortest=1[%s]",
		base, layer, formatExpr(ov.X), formatExpr(ov.Y), out)
}

func buildDrawText(ov plan.Overlay) string {
	values := []string{
		fmt.Sprintf("text='%s'", escapeDrawText(ov.Text)),
		fmt.Sprintf("fontsize=%d", max(ov.Font.Size, 12)),
		fmt.Sprintf("fontcolor=%s", fallback(ov.Font.Color, "black")),
		fmt.Sprintf("x='%s'", formatExpr(ov.X)),
		fmt.Sprintf("y='%s'", formatExpr(ov.Y)),
	}
	if strings.TrimSpace(ov.Font.File) != "" {
		values = append(values, fmt.Sprintf("fontfile='%s'", escapeFFmpegPath(ov.Font.File)))
	}
	return "drawtext=" + strings.Join(values, ":")
}

// BuildFFmpegCmd assembles the ffmpeg CLI arguments for rendering a plan.
func BuildFFmpegCmd(p plan.Plan, filterGraph, outputPath string, cfg config.Config) ([]string, error) {
	if strings.TrimSpace(outputPath) == "" {
		return nil, errors.New("output path is empty")
	}
	if strings.TrimSpace(filterGraph) == "" {
		return nil, errors.New("filter graph is empty")
	}

	args, err := inputArgs(p)
	if err != nil {
		return nil, err
	}
	args = append(args,
		"-filter_complex", filterGraph,
		"-map", "["+outputLabel+"]",
		"-frames:v", strconv.Itoa(p.TotalFrames),
		"-t", formatFloat(p.Duration),
		"-c:v", fallback(cfg.Video.Codec, "libx264"),
	)
	if preset := strings.TrimSpace(cfg.Video.Preset); preset != "" {
		args = append(args, "-preset", preset)
	}
	if cfg.Video.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(cfg.Video.CRF))
	}
	args = append(args,
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-an",
		outputPath,
	)
	return args, nil
}

// BuildFrameCmd assembles the ffmpeg CLI arguments for extracting a single
// composited frame at the given time, for previews.
func BuildFrameCmd(p plan.Plan, filterGraph string, at float64, outputPath string) ([]string, error) {
	if strings.TrimSpace(outputPath) == "" {
		return nil, errors.New("output path is empty")
	}
	if at < 0 || at >= p.Duration {
		return nil, fmt.Errorf("sample time %s outside clip duration %s", formatFloat(at), formatFloat(p.Duration))
	}
	args, err := inputArgs(p)
	if err != nil {
		return nil, err
	}
	return append(args,
		"-filter_complex", filterGraph,
		"-map", "["+outputLabel+"]",
		"-ss", formatFloat(at),
		"-frames:v", "1",
		outputPath,
	), nil
}

func inputArgs(p plan.Plan) ([]string, error) {
	args := []string{"-hide_banner", "-y"}
	fps := strconv.Itoa(p.FPS)
	for _, in := range p.Inputs {
		switch in.Kind {
		case plan.InputBackground:
			source := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s",
				fallback(in.Color, "white"), p.Width, p.Height, p.FPS, formatFloat(p.Duration))
			args = append(args, "-f", "lavfi", "-i", source)
		default:
			if strings.TrimSpace(in.Path) == "" {
				return nil, fmt.Errorf("%s input has no path", in.Kind)
			}
			if in.Animated {
				args = append(args, "-stream_loop", "-1", "-ignore_loop", "0", "-i", in.Path)
			} else {
				args = append(args, "-loop", "1", "-framerate", fps, "-i", in.Path)
			}
		}
	}
	return args, nil
}

// formatExpr renders n for use inside a single-quoted filter option.
func formatExpr(n expr.Node) string {
	return escapeFilterValue(FFmpeg.Format(n))
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func escapeDrawText(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")

	const newlinePlaceholder = "\u0000"
	value = strings.ReplaceAll(value, "\n", newlinePlaceholder)

	value = escapeFilterValueNoQuotes(value)
	value = strings.ReplaceAll(value, newlinePlaceholder, `\n`)
	value = strings.ReplaceAll(value, "'", "''")
	return value
}

func escapeFFmpegPath(value string) string {
	value = filepath.Clean(value)
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ":", `\:`)
	value = strings.ReplaceAll(value, "'", `\'`)
	return value
}

func escapeFilterValue(value string) string {
	value = escapeFilterValueNoQuotes(value)
	value = strings.ReplaceAll(value, "'", `\'`)
	return value
}

func escapeFilterValueNoQuotes(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ":", `\:`)
	value = strings.ReplaceAll(value, ",", `\,`)
	return value
}
