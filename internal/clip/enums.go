package clip

import "strings"

// SlideDirection selects the axis and side a sliding layer enters from.
type SlideDirection int

const (
	SlideNone SlideDirection = iota
	SlideLeft
	SlideRight
	SlideUp
	SlideDown
)

// ParseSlideDirection maps a guide value to a direction. Empty and unknown
// values map to SlideNone; ok is false only for unknown non-empty values.
func ParseSlideDirection(value string) (SlideDirection, bool) {
	switch normalize(value) {
	case "", "none":
		return SlideNone, true
	case "left":
		return SlideLeft, true
	case "right":
		return SlideRight, true
	case "up":
		return SlideUp, true
	case "down":
		return SlideDown, true
	default:
		return SlideNone, false
	}
}

func (d SlideDirection) String() string {
	switch d {
	case SlideLeft:
		return "left"
	case SlideRight:
		return "right"
	case SlideUp:
		return "up"
	case SlideDown:
		return "down"
	default:
		return "none"
	}
}

// CharacterSide is the frame edge the character column sits against.
type CharacterSide int

const (
	SideLeft CharacterSide = iota
	SideRight
)

// ParseCharacterSide maps a guide value to a side, defaulting to left.
func ParseCharacterSide(value string) (CharacterSide, bool) {
	switch normalize(value) {
	case "", "left":
		return SideLeft, true
	case "right":
		return SideRight, true
	default:
		return SideLeft, false
	}
}

func (s CharacterSide) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// CaptionAnchor places a caption relative to an image slot.
type CaptionAnchor int

const (
	AnchorNone CaptionAnchor = iota
	AnchorTop
	AnchorBottom
)

// ParseCaptionAnchor maps a guide value to an anchor.
func ParseCaptionAnchor(value string) (CaptionAnchor, bool) {
	switch normalize(value) {
	case "", "none", "center":
		return AnchorNone, true
	case "top":
		return AnchorTop, true
	case "bottom":
		return AnchorBottom, true
	default:
		return AnchorNone, false
	}
}

func (a CaptionAnchor) String() string {
	switch a {
	case AnchorTop:
		return "top"
	case AnchorBottom:
		return "bottom"
	default:
		return "none"
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
