package layout

import (
	"strings"
	"testing"
)

func TestRenderHeader_ShowsNameTitleAndStatus(t *testing.T) {
	h := RenderHeader("Exam", "12:00", 80)
	for _, want := range []string{"simtai", "Exam", "12:00"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestRenderHeader_EmptyStatus(t *testing.T) {
	h := RenderHeader("Start", "", 80)
	if !strings.Contains(h, "Start") {
		t.Error("header missing title")
	}
}

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{80, 24, false},
		{79, 24, true},
		{80, 23, true},
		{120, 40, false},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestRenderFooter_ListsHints(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "Esc", Description: "Back"}, {Key: "F", Description: "Finish"}}, 80)
	if !strings.Contains(f, "Esc") || !strings.Contains(f, "Finish") {
		t.Errorf("footer missing hints: %q", f)
	}
}

func TestRenderFooter_DropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{
		{Key: "←/→", Description: "Navigate"},
		{Key: "A-D", Description: "Answer"},
		{Key: "F", Description: "Finish"},
		{Key: "Ctrl+L", Description: "Log"},
	}
	f := RenderFooter(hints, 40)
	if !strings.Contains(f, "Navigate") {
		t.Errorf("footer lost its first hint: %q", f)
	}
	if strings.Contains(f, "Log") {
		t.Errorf("expected the last hint to be dropped at width 40: %q", f)
	}
}

func TestContentHeight(t *testing.T) {
	if got := ContentHeight(30); got != 24 {
		t.Errorf("ContentHeight(30) = %d, want 24", got)
	}
	if got := ContentHeight(4); got != 0 {
		t.Errorf("ContentHeight(4) = %d, want 0", got)
	}
}
