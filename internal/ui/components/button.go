package components

import (
	"github.com/simtai/simtai/internal/ui/theme"
)

// Button is the form's submit row. A disabled button shows why it cannot
// be pressed instead of the active styling.
type Button struct {
	Label  string
	Active bool

	// Reason is set when the button is disabled.
	Reason string
}

// NewButton creates an enabled button.
func NewButton(label string, active bool) Button {
	return Button{Label: label, Active: active}
}

// Disable returns a copy that renders as unavailable, explaining reason.
func (b Button) Disable(reason string) Button {
	b.Reason = reason
	return b
}

// Disabled reports whether Disable was called with a reason.
func (b Button) Disabled() bool {
	return b.Reason != ""
}

func (b Button) View() string {
	label := "  ▸ " + b.Label + " "
	switch {
	case b.Disabled():
		return theme.ButtonInactive.Render(label) + "  " + theme.Dim.Render(b.Reason)
	case b.Active:
		return theme.ButtonActive.Render(label)
	default:
		return theme.ButtonInactive.Render(label)
	}
}
