package clip

import "testing"

func TestTotalFrames(t *testing.T) {
	tests := []struct {
		duration float64
		fps      int
		want     int
	}{
		{2.0, 25, 50},
		{2.01, 25, 51},
		{0, 25, 1},
		{0.5, 30, 15},
	}
	for _, tt := range tests {
		spec := ClipSpec{Duration: tt.duration, FPS: tt.fps}
		if got := spec.TotalFrames(); got != tt.want {
			t.Errorf("TotalFrames(%g, %d) = %d, want %d", tt.duration, tt.fps, got, tt.want)
		}
	}
}

func TestParseSlideDirection(t *testing.T) {
	tests := []struct {
		in   string
		want SlideDirection
		ok   bool
	}{
		{"", SlideNone, true},
		{" Left ", SlideLeft, true},
		{"DOWN", SlideDown, true},
		{"diagonal", SlideNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseSlideDirection(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSlideDirection(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCharacterSideDefaultsLeft(t *testing.T) {
	if side, ok := ParseCharacterSide("middle"); side != SideLeft || ok {
		t.Fatalf("expected left,false got %v,%v", side, ok)
	}
	if side, _ := ParseCharacterSide("RIGHT"); side != SideRight {
		t.Fatalf("expected right, got %v", side)
	}
}

func TestCaptionSlotDefault(t *testing.T) {
	if got := (Caption{}).Slot(); got != 0 {
		t.Fatalf("Slot() = %d, want 0", got)
	}
	two := 2
	if got := (Caption{AnchorSlot: &two}).Slot(); got != 2 {
		t.Fatalf("Slot() = %d, want 2", got)
	}
}

func TestTrackFor(t *testing.T) {
	tl := &Timeline{Tracks: []Track{
		{ID: "a", Kind: "caption", TargetID: "0"},
		{ID: "b", Kind: TrackKindImage, TargetID: "1"},
	}}
	track, ok := tl.TrackFor(TrackKindImage, "1")
	if !ok || track.ID != "b" {
		t.Fatalf("expected track b, got %+v (ok=%v)", track, ok)
	}
	var empty *Timeline
	if _, ok := empty.TrackFor(TrackKindImage, "0"); ok {
		t.Fatal("expected nil timeline to have no tracks")
	}
}

func TestWarningString(t *testing.T) {
	w := Validationf("keyframe %d: bad", 2)
	if w.String() != "validation: keyframe 2: bad" {
		t.Fatalf("unexpected warning string %q", w.String())
	}
}
