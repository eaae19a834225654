package start

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	ex "github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/ui/components"
	"github.com/simtai/simtai/internal/ui/theme"
)

func (s *StartScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(s.choiceRow(fieldCount, "Questions", fmt.Sprint(ex.QuestionCounts[s.count])))
	b.WriteString(s.choiceRow(fieldMinutes, "Minutes", fmt.Sprint(ex.MinuteChoices[s.minutes])))
	b.WriteString(s.choiceRow(fieldDifficulty, "Difficulty", string(ex.Difficulties[s.difficulty])))
	b.WriteString("\n")
	b.WriteString(s.inputRow(fieldTopic, s.topic))
	b.WriteString(s.inputRow(fieldFile, s.file))
	if f := strings.TrimSpace(s.file.Value()); f != "" && !ex.AllowedUpload(f, "") {
		b.WriteString("    " + theme.Warning.Render("only PDF, TXT or MD files are accepted") + "\n")
	}
	b.WriteString("\n")

	if s.m.CanPickFolder() {
		b.WriteString(s.choiceRow(fieldMode, "Source", modeLabel(s.mode)))
	} else {
		b.WriteString(theme.Dim.Render("  Source      normal (folder picking unavailable)") + "\n")
	}
	if s.mode == ex.SourceRandomFolder {
		b.WriteString(s.choiceRow(fieldStrategy, "Sampling", strategyLabel(s.strategy)))
		folder := s.folder
		if folder == "" {
			folder = "press Enter to choose"
		}
		b.WriteString(s.row(fieldFolder, "Folder", folder))
	}
	b.WriteString("\n")

	b.WriteString(theme.Dim.Render("Saved context: " + savedLabel(s.saved)))
	b.WriteString("\n\n")
	btn := components.NewButton("Generate exam", s.focus == fieldStart)
	if err := s.Config().Validate(); err != nil {
		btn = btn.Disable(err.Error())
	}
	b.WriteString(btn.View())
	b.WriteString("\n")

	if msg := s.errorText(); msg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(max(20, width-6)).Inherit(theme.Incorrect).Render(msg))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *StartScreen) row(f field, label, value string) string {
	prefix := "  "
	style := theme.Unselected
	if s.focus == f {
		prefix = "▸ "
		style = theme.Selected
	}
	return style.Render(fmt.Sprintf("%s%-12s", prefix, label)) + theme.Body.Render(value) + "\n"
}

func (s *StartScreen) choiceRow(f field, label, value string) string {
	if s.focus == f {
		value = "‹ " + value + " ›"
	}
	return s.row(f, label, value)
}

func (s *StartScreen) inputRow(f field, in components.TextInput) string {
	prefix := "  "
	if s.focus == f {
		prefix = theme.Selected.Render("▸ ")
	}
	return prefix + in.View() + "\n"
}

func modeLabel(m ex.SourceMode) string {
	if m == ex.SourceRandomFolder {
		return "random from folder"
	}
	return "topic, file or saved context"
}

func strategyLabel(f ex.FolderStrategy) string {
	if f == ex.FolderSimulacro {
		return "simulacro (3 topics, fragments)"
	}
	return "roulette (1 topic, full text)"
}
