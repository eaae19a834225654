package components

import (
	"strings"
	"testing"
)

func TestOptionIndex(t *testing.T) {
	tests := []struct {
		key    string
		n      int
		want   int
		wantOK bool
	}{
		{"a", 4, 0, true},
		{"D", 4, 3, true},
		{"c", 4, 2, true},
		{"e", 4, 0, false},
		{"1", 4, 0, false},
		{"ab", 4, 0, false},
		{"b", 2, 1, true},
		{"c", 2, 0, false},
	}
	for _, tt := range tests {
		got, ok := OptionIndex(tt.key, tt.n)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("OptionIndex(%q, %d) = %d, %v; want %d, %v", tt.key, tt.n, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestOptionLabel(t *testing.T) {
	if OptionLabel(0) != "A" || OptionLabel(3) != "D" {
		t.Errorf("unexpected labels %q %q", OptionLabel(0), OptionLabel(3))
	}
	if OptionLabel(20) != "21" {
		t.Errorf("OptionLabel(20) = %q, want 21", OptionLabel(20))
	}
}

func TestOptionList_ViewMarksChoice(t *testing.T) {
	o := OptionList{Options: []string{"uno", "dos", "tres"}, Correct: 0, Chosen: 1}
	lines := strings.Split(strings.TrimRight(o.View(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "▸ B)") {
		t.Errorf("chosen option not marked: %q", lines[1])
	}
	if strings.Contains(lines[0], "▸") {
		t.Errorf("unchosen option marked: %q", lines[0])
	}
}

func TestCountBar_Caption(t *testing.T) {
	bar := NewCountBar("Questions", 3, 10, 60)
	if !strings.Contains(bar.View(), "3/10") {
		t.Errorf("expected caption 3/10 in %q", bar.View())
	}
	if bar.Percent != 0.3 {
		t.Errorf("Percent = %v, want 0.3", bar.Percent)
	}
}

func TestCountBar_ZeroTotal(t *testing.T) {
	bar := NewCountBar("", 0, 0, 40)
	if bar.Percent != 0 {
		t.Errorf("Percent = %v, want 0", bar.Percent)
	}
}

func TestProgressBar_Percentage(t *testing.T) {
	bar := NewProgressBar("Score", 0.5, 60)
	if !strings.Contains(bar.View(), "50%") {
		t.Errorf("expected 50%% in %q", bar.View())
	}
}

func TestButton_Disabled(t *testing.T) {
	b := NewButton("Generate exam", true)
	if b.Disabled() {
		t.Fatal("new button should be enabled")
	}
	d := b.Disable("random-folder mode needs a folder")
	if !d.Disabled() || b.Disabled() {
		t.Fatal("Disable must return a disabled copy")
	}
	if v := d.View(); !strings.Contains(v, "Generate exam") || !strings.Contains(v, "needs a folder") {
		t.Errorf("disabled view should show label and reason: %q", v)
	}
}
