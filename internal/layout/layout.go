// Package layout maps a layout name, character presence, image count and
// character side to concrete slot geometry.
package layout

import (
	"strings"

	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/expr"
)

// Name is one of the supported layouts.
type Name int

const (
	Single Name = iota
	ImageCenter
	CharacterCenter
	TwoImages
	ThreeStacked
)

// All lists every layout in declaration order.
var All = []Name{Single, ImageCenter, CharacterCenter, TwoImages, ThreeStacked}

var canonical = map[Name]string{
	Single:          "single-centered",
	ImageCenter:     "image-only-center",
	CharacterCenter: "character-center-only",
	TwoImages:       "two-images-side-by-side",
	ThreeStacked:    "three-stacked-beside-character",
}

var aliases = map[string]Name{
	"default":              Single,
	"legacy_single":        Single,
	"image_center_only":    ImageCenter,
	"stickman_center_only": CharacterCenter,
	"two_images_center":    TwoImages,
	"stickman_left_3img":   ThreeStacked,
}

func (n Name) String() string {
	if s, ok := canonical[n]; ok {
		return s
	}
	return canonical[Single]
}

// Parse maps a layout name to a Name. Empty names are Single. Unknown names
// return Single and false.
func Parse(name string) (Name, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Single, true
	}
	for n, s := range canonical {
		if s == key {
			return n, true
		}
	}
	if n, ok := aliases[key]; ok {
		return n, true
	}
	return Single, false
}

// Slots is the number of image slots the layout provides.
func (n Name) Slots() int {
	switch n {
	case CharacterCenter:
		return 0
	case TwoImages:
		return 2
	case ThreeStacked:
		return 3
	default:
		return 1
	}
}

// NeedsCharacter reports whether the layout requires a character overlay.
func (n Name) NeedsCharacter() bool {
	return n == CharacterCenter || n == ThreeStacked
}

// Slot is the target box and placement for one image. Width and Height are the
// box the image is fitted into; X and Y place the fitted layer and may refer to
// layer_w and layer_h.
type Slot struct {
	Width  int
	Height int
	X      expr.Node
	Y      expr.Node
}

// Position anchors the character overlay.
type Position struct {
	X expr.Node
	Y expr.Node
}

// Area is a horizontal band of the frame.
type Area struct {
	X int
	W int
}

// Result is the resolved geometry for one clip.
type Result struct {
	Name      Name
	Content   Area
	Slots     []Slot
	Character *Position
}

// Resolve computes the layout geometry. It never fails: unknown names and
// unmet requirements fall back to Single with a warning.
func Resolve(cfg config.Config, name string, hasCharacter bool, imageCount int, side clip.CharacterSide) (Result, []clip.Warning) {
	var warnings []clip.Warning

	n, ok := Parse(name)
	if !ok {
		warnings = append(warnings, clip.Configf("unknown layout %q; using %s", name, Single))
		return single(cfg, hasCharacter, side), warnings
	}

	var res Result
	switch n {
	case ImageCenter:
		if hasCharacter {
			warnings = append(warnings, clip.Configf("layout %s ignores the character overlay", n))
			if side == clip.SideRight {
				warnings = append(warnings, clip.Configf("layout %s ignores character side %s", n, side))
			}
		}
		res = imageCenter(cfg)
	case CharacterCenter:
		if !hasCharacter {
			warnings = append(warnings, clip.Configf("layout %s requires a character; using %s", n, Single))
			return single(cfg, false, side), warnings
		}
		if side == clip.SideRight {
			warnings = append(warnings, clip.Configf("layout %s only centers the character; side %s ignored", n, side))
		}
		res = Result{
			Name:      CharacterCenter,
			Content:   Area{X: 0, W: cfg.Video.Width},
			Character: &Position{X: expr.Center(expr.FrameW, expr.LayerW), Y: expr.Center(expr.FrameH, expr.LayerH)},
		}
	case TwoImages:
		res = twoImages(cfg, hasCharacter, side)
	case ThreeStacked:
		if !hasCharacter {
			warnings = append(warnings, clip.Configf("layout %s requires a character; using %s", n, Single))
			return single(cfg, false, side), warnings
		}
		res = threeStacked(cfg, side)
	default:
		res = single(cfg, hasCharacter, side)
	}

	// An image-less Single clip is a background or text-only clip.
	if want := n.Slots(); imageCount < want && !(n == Single && imageCount == 0) {
		warnings = append(warnings, clip.Configf("layout %s expects %d images, got %d", n, want, imageCount))
	}
	return res, warnings
}

// ContentArea is the horizontal band left for images once the character
// column is reserved.
func ContentArea(cfg config.Config, hasCharacter bool, side clip.CharacterSide) Area {
	frameW := cfg.Video.Width
	if !hasCharacter {
		return Area{X: 0, W: frameW}
	}
	reserved := cfg.ReservedWidth()
	if side == clip.SideRight {
		return Area{X: cfg.Layout.LeftMargin, W: frameW - cfg.Layout.LeftMargin - reserved}
	}
	return Area{X: reserved, W: frameW - reserved - cfg.Layout.RightMargin}
}

// CharacterAnchor is the rest position of a character against the given side.
func CharacterAnchor(cfg config.Config, side clip.CharacterSide) *Position {
	y := expr.Center(expr.FrameH, expr.LayerH)
	if side == clip.SideRight {
		return &Position{X: expr.Sub(expr.Sub(expr.FrameW, expr.LayerW), expr.Int(cfg.Character.MarginX)), Y: y}
	}
	return &Position{X: expr.Int(cfg.Character.MarginX), Y: y}
}

func single(cfg config.Config, hasCharacter bool, side clip.CharacterSide) Result {
	area := ContentArea(cfg, hasCharacter, side)
	res := Result{Name: Single, Content: area}
	if !hasCharacter {
		res.Slots = []Slot{{
			Width:  cfg.Video.Width,
			Height: cfg.Layout.SafeHeight,
			X:      expr.Center(expr.FrameW, expr.LayerW),
			Y:      expr.Center(expr.FrameH, expr.LayerH),
		}}
		return res
	}
	res.Slots = []Slot{{
		Width:  area.W,
		Height: cfg.Layout.SafeHeight,
		X:      expr.Add(expr.Int(area.X), expr.Center(expr.Int(area.W), expr.LayerW)),
		Y:      expr.Center(expr.FrameH, expr.LayerH),
	}}
	res.Character = CharacterAnchor(cfg, side)
	return res
}

func imageCenter(cfg config.Config) Result {
	return Result{
		Name:    ImageCenter,
		Content: Area{X: 0, W: cfg.Video.Width},
		Slots: []Slot{{
			Width:  cfg.Video.Width,
			Height: cfg.Layout.SafeHeight,
			X:      expr.Center(expr.FrameW, expr.LayerW),
			Y:      expr.Center(expr.FrameH, expr.LayerH),
		}},
	}
}

func twoImages(cfg config.Config, hasCharacter bool, side clip.CharacterSide) Result {
	area := ContentArea(cfg, hasCharacter, side)
	gap := cfg.Layout.PairGap
	slotW := (area.W - gap) / 2
	leftX := area.X + (area.W-(2*slotW+gap))/2
	rightX := leftX + slotW + gap

	y := expr.Center(expr.FrameH, expr.LayerH)
	res := Result{Name: TwoImages, Content: area}
	for _, x := range []int{leftX, rightX} {
		res.Slots = append(res.Slots, Slot{
			Width:  slotW,
			Height: cfg.Layout.SafeHeight,
			X:      expr.Add(expr.Int(x), expr.Center(expr.Int(slotW), expr.LayerW)),
			Y:      y,
		})
	}
	if hasCharacter {
		res.Character = CharacterAnchor(cfg, side)
	}
	return res
}

func threeStacked(cfg config.Config, side clip.CharacterSide) Result {
	area := ContentArea(cfg, true, side)
	gap := cfg.Layout.StackGap
	slotH := (cfg.Layout.SafeHeight - 2*gap) / 3
	total := 3*slotH + 2*gap
	top := (cfg.Video.Height - total) / 2

	res := Result{Name: ThreeStacked, Content: area, Character: CharacterAnchor(cfg, side)}
	for i := 0; i < 3; i++ {
		y := top + i*(slotH+gap)
		res.Slots = append(res.Slots, Slot{
			Width:  area.W,
			Height: slotH,
			X:      expr.Add(expr.Int(area.X), expr.Center(expr.Int(area.W), expr.LayerW)),
			Y:      expr.Add(expr.Int(y), expr.Center(expr.Int(slotH), expr.LayerH)),
		})
	}
	return res
}
