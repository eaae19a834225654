package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/simtai/simtai/internal/ui/theme"
)

var optionLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// OptionLabel is the letter shown next to option i.
func OptionLabel(i int) string {
	if i >= 0 && i < len(optionLabels) {
		return optionLabels[i]
	}
	return fmt.Sprint(i + 1)
}

// OptionIndex maps an answer key such as "a" or "C" to an option index.
func OptionIndex(key string, n int) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	k := strings.ToUpper(key)
	for i := 0; i < n && i < len(optionLabels); i++ {
		if optionLabels[i] == k {
			return i, true
		}
	}
	return 0, false
}

// OptionList renders the answer choices of one question.
type OptionList struct {
	Options []string
	Correct int

	// Chosen is the selected option, -1 when unanswered.
	Chosen int

	// Reveal marks the correct option and a wrong choice.
	Reveal bool
}

// View renders one line per option.
func (o OptionList) View() string {
	var b strings.Builder
	for i, opt := range o.Options {
		prefix := "  "
		if i == o.Chosen {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, OptionLabel(i), opt)

		var style lipgloss.Style
		switch {
		case o.Reveal && i == o.Correct:
			style = theme.Correct
		case o.Reveal && i == o.Chosen:
			style = theme.Incorrect
		case i == o.Chosen:
			style = theme.Selected
		case o.Reveal:
			style = theme.Dim
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
