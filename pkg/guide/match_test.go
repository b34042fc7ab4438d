package guide

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Café ", "cafe"},
		{"São Paulo", "sao paulo"},
		{"ÉLAN", "elan"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchTrigger(t *testing.T) {
	tests := []struct {
		trigger string
		text    string
		want    bool
	}{
		{"cafe", "We met at the Café.", true},
		{"cat", "concatenate the clips", false},
		{"cat", "the cat sat", true},
		{"são paulo", "Arriving in Sao Paulo today", true},
		{"new york", "a brand new yorkshire", true},
		{"", "anything", false},
		{"dog", "no match here", false},
	}
	for _, tt := range tests {
		if got := MatchTrigger(tt.trigger, tt.text); got != tt.want {
			t.Errorf("MatchTrigger(%q, %q) = %v, want %v", tt.trigger, tt.text, got, tt.want)
		}
	}
}

func TestFindTiming(t *testing.T) {
	timing := []TimingEntry{
		Original{Index: 1, Span: Span{From: 0, To: 1}, Content: "intro"},
		Original{Index: 2, Span: Span{From: 1, To: 2}, Content: "the Bridge opens"},
		Original{Index: 3, Span: Span{From: 2, To: 3}, Content: "bridge again"},
	}
	entry, ok := FindTiming("bridge", timing)
	if !ok || entry.Start() != 1 {
		t.Fatalf("expected first matching cue, got %v %v", entry, ok)
	}
	if _, ok := FindTiming("tunnel", timing); ok {
		t.Fatal("expected no match")
	}
}
