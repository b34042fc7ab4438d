package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/expr"
	"clipforge/internal/layout"
	"clipforge/internal/paths"
)

var (
	layoutCharacter bool
	layoutImages    int
	layoutSide      string
)

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout [name]",
		Short: "List layouts or print the resolved geometry of one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLayout,
	}

	cmd.Flags().BoolVar(&layoutCharacter, "character", false, "Resolve with a character overlay")
	cmd.Flags().IntVar(&layoutImages, "images", -1, "Number of images (default: the layout's slot count)")
	cmd.Flags().StringVar(&layoutSide, "side", "", "Character side: left or right")
	return cmd
}

// layoutRow is one placed box of a resolved layout.
type layoutRow struct {
	Box    string  `json:"box"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	XExpr  string  `json:"x_expr"`
	YExpr  string  `json:"y_expr"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type layoutOutput struct {
	Layout   string      `json:"layout"`
	Content  layout.Area `json:"content"`
	Rows     []layoutRow `json:"rows"`
	Warnings []string    `json:"warnings,omitempty"`
}

func runLayout(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listLayouts(cmd)
	}

	cfg, err := layoutConfig()
	if err != nil {
		return err
	}

	name, ok := layout.Parse(args[0])
	if !ok {
		return fmt.Errorf("unknown layout %q", args[0])
	}
	side, ok := clip.ParseCharacterSide(layoutSide)
	if !ok {
		return fmt.Errorf("unknown character side %q", layoutSide)
	}
	images := layoutImages
	if images < 0 {
		images = name.Slots()
	}

	res, warnings := layout.Resolve(cfg, args[0], layoutCharacter, images, side)
	rows, err := layoutRows(cfg, res)
	if err != nil {
		return err
	}
	out := layoutOutput{
		Layout:   res.Name.String(),
		Content:  res.Content,
		Rows:     rows,
		Warnings: warningStrings(warnings),
	}

	if outputJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Layout: %s (content x=%d w=%d)\n", out.Layout, out.Content.X, out.Content.W)
	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{
			r.Box,
			strconv.Itoa(r.Width),
			strconv.Itoa(r.Height),
			r.XExpr,
			r.YExpr,
			formatCoord(r.X),
			formatCoord(r.Y),
		}
	}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight}
	cmd.Println(renderTable([]string{"Box", "W", "H", "X", "Y", "X@box", "Y@box"}, table, aligns))
	for _, w := range out.Warnings {
		cmd.Printf("warning: %s\n", w)
	}
	return nil
}

func listLayouts(cmd *cobra.Command) error {
	rows := make([][]string, 0, len(layout.All))
	for _, n := range layout.All {
		needs := "no"
		if n.NeedsCharacter() {
			needs = "yes"
		}
		rows = append(rows, []string{n.String(), strconv.Itoa(n.Slots()), needs})
	}
	cmd.Println(renderTable([]string{"Layout", "Slots", "Character"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
	return nil
}

// layoutConfig returns the project config when one exists and the defaults
// otherwise, so layouts can be inspected outside a project.
func layoutConfig() (config.Config, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(pp.ConfigFile)
}

// layoutRows evaluates every placement with the layer filling its box.
func layoutRows(cfg config.Config, res layout.Result) ([]layoutRow, error) {
	rows := make([]layoutRow, 0, len(res.Slots)+1)
	for i, slot := range res.Slots {
		row, err := evalBox(cfg, fmt.Sprintf("slot %d", i+1), slot.Width, slot.Height, slot.X, slot.Y)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if res.Character != nil {
		size := cfg.Character.BoxSize
		row, err := evalBox(cfg, "character", size, size, res.Character.X, res.Character.Y)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func evalBox(cfg config.Config, label string, w, h int, x, y expr.Node) (layoutRow, error) {
	env := expr.Env{
		expr.FrameW: float64(cfg.Video.Width),
		expr.FrameH: float64(cfg.Video.Height),
		expr.LayerW: float64(w),
		expr.LayerH: float64(h),
	}
	xv, err := expr.Eval(x, env)
	if err != nil {
		return layoutRow{}, fmt.Errorf("%s x: %w", label, err)
	}
	yv, err := expr.Eval(y, env)
	if err != nil {
		return layoutRow{}, fmt.Errorf("%s y: %w", label, err)
	}
	return layoutRow{
		Box:    label,
		Width:  w,
		Height: h,
		XExpr:  expr.String(x),
		YExpr:  expr.String(y),
		X:      xv,
		Y:      yv,
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
