package exam

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	ex "github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/session"
	"github.com/simtai/simtai/internal/ui/components"
	"github.com/simtai/simtai/internal/ui/layout"
	"github.com/simtai/simtai/internal/ui/theme"
)

// lowTime is when the countdown turns red.
const lowTime = time.Minute

func (s *ExamScreen) View(width, height int) string {
	var body string
	switch s.m.State() {
	case session.StateGenerating:
		body = s.renderGenerating(width, height)
	case session.StatePresenting:
		body = s.renderQuestion(width)
	case session.StateFinished:
		if f, ok := s.m.Reviewing(); ok {
			body = s.renderReview(f, width, height)
		} else {
			body = s.renderResults(width)
		}
	default:
		body = s.renderIdle()
	}
	if s.errMsg != "" {
		body += "\n" + theme.Incorrect.Render(s.errMsg)
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

func (s *ExamScreen) renderGenerating(width, height int) string {
	p := s.m.Progress()
	var b strings.Builder
	b.WriteString(theme.Prompt.Render("Generating questions..."))
	b.WriteString("\n\n")
	b.WriteString(components.NewCountBar("Received", p.Accepted, p.Requested, width-6).View())
	b.WriteString("\n\n")

	tail := max(3, height-10)
	if layout.IsCompactHeight(height) {
		tail = max(3, height-8)
	}
	for _, e := range s.m.Log().Tail(tail) {
		b.WriteString(theme.Dim.Render(truncate(e.String(), width-6)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ExamScreen) renderQuestion(width int) string {
	c, ok := s.m.Current()
	if !ok {
		return ""
	}
	q := c.Question
	wrap := lipgloss.NewStyle().Width(max(20, width-6))

	var b strings.Builder
	b.WriteString(theme.Dim.Render(fmt.Sprintf("Question %d of %d", c.Index+1, c.Total)))
	b.WriteString("   ")
	b.WriteString(answeredDots(s.m.Records(), c.Index))
	b.WriteString("\n\n")
	b.WriteString(wrap.Inherit(theme.Prompt).Render(q.Prompt))
	b.WriteString("\n\n")
	if !q.Valid() {
		b.WriteString(theme.Warning.Render(malformedNote))
		b.WriteString("\n\n")
	}

	b.WriteString(components.OptionList{
		Options: q.Options,
		Correct: q.CorrectIndex,
		Chosen:  c.Record.Selected,
		Reveal:  c.Record.Answered,
	}.View())

	if c.Record.Answered {
		b.WriteString("\n")
		b.WriteString(renderFeedback(q, c.Record, width))
	}
	return b.String()
}

const malformedNote = "This question is malformed: none of its options is marked correct."

func renderFeedback(q ex.Question, r ex.AnswerRecord, width int) string {
	w := max(20, width-8)
	var b strings.Builder
	if r.Correct {
		b.WriteString(theme.Correct.Render("Correct"))
	} else {
		b.WriteString(theme.Incorrect.Render("Incorrect"))
		if q.Valid() {
			b.WriteString(theme.Dim.Render(fmt.Sprintf("  (answer: %s)", components.OptionLabel(q.CorrectIndex))))
		} else {
			b.WriteString(theme.Dim.Render("  (no valid answer)"))
		}
	}
	b.WriteString("\n")
	if !r.Correct {
		if why, ok := q.Refutation(r.Selected); ok {
			b.WriteString(theme.Refutation.Width(w).Render(why))
			b.WriteString("\n")
		}
	}
	if q.Explanation != "" {
		b.WriteString(theme.Explanation.Width(w).Render(q.Explanation))
		b.WriteString("\n")
	}
	return b.String()
}

func answeredDots(records []ex.AnswerRecord, current int) string {
	var b strings.Builder
	for i, r := range records {
		dot := "○"
		if r.Answered {
			dot = "●"
		}
		if i == current {
			b.WriteString(theme.Selected.Render(dot))
		} else {
			b.WriteString(theme.Dim.Render(dot))
		}
	}
	return b.String()
}

func (s *ExamScreen) renderResults(width int) string {
	sum, ok := s.m.Summary()
	if !ok {
		return ""
	}
	sc := sum.Score

	var b strings.Builder
	title := "Exam finished"
	if sum.Expired {
		title = "Time is up"
	}
	b.WriteString(theme.Prompt.Render(title))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar("Score", sc.Percentage/100, min(width-6, 60)).View())
	b.WriteString("\n\n")

	rows := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"Grade", fmt.Sprintf("%.2f / %d", sc.Raw, sc.Total), theme.Body},
		{"Correct", fmt.Sprint(sc.Correct), theme.Correct},
		{"Incorrect", fmt.Sprint(sc.Incorrect), theme.Incorrect},
		{"Unanswered", fmt.Sprint(sc.Unanswered), theme.Dim},
		{"Penalty", fmt.Sprintf("-%.2f", sc.PenaltyPoints), theme.Warning},
		{"Time", formatClock(sum.Duration), theme.Body},
		{"Difficulty", string(sum.Config.Difficulty), theme.Body},
	}
	for _, r := range rows {
		b.WriteString(theme.Dim.Render(fmt.Sprintf("%-12s", r.label)))
		b.WriteString(r.style.Render(r.value))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ExamScreen) renderReview(f ex.ReviewFilter, width, height int) string {
	items := s.m.Review(f)
	var b strings.Builder
	b.WriteString(theme.Prompt.Render(fmt.Sprintf("%s (%d)", f.Label(), len(items))))
	b.WriteString("\n\n")
	if len(items) == 0 {
		b.WriteString(theme.Hint.Render("Nothing to show."))
		return b.String()
	}

	var blocks []string
	for _, it := range items {
		blocks = append(blocks, renderReviewItem(it, width))
	}
	lines := strings.Split(strings.Join(blocks, "\n"), "\n")
	s.scroll = min(s.scroll, max(0, len(lines)-1))
	visible := max(1, height-6)
	end := min(len(lines), s.scroll+visible)
	b.WriteString(strings.Join(lines[s.scroll:end], "\n"))
	return b.String()
}

func renderReviewItem(it session.ReviewItem, width int) string {
	q := it.Question
	wrap := lipgloss.NewStyle().Width(max(20, width-6))
	var b strings.Builder
	b.WriteString(wrap.Inherit(theme.Prompt).Render(fmt.Sprintf("%d. %s", it.Index+1, q.Prompt)))
	b.WriteString("\n")
	b.WriteString(components.OptionList{
		Options: q.Options,
		Correct: q.CorrectIndex,
		Chosen:  it.Record.Selected,
		Reveal:  true,
	}.View())
	if it.Record.Answered {
		b.WriteString(renderFeedback(q, it.Record, width))
	} else if q.Explanation != "" {
		b.WriteString(theme.Explanation.Width(max(20, width-8)).Render(q.Explanation))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ExamScreen) renderIdle() string {
	msg := "No exam in progress."
	if err := s.m.LastError(); err != nil {
		msg = err.Error()
	}
	return theme.Body.Render(msg) + "\n\n" + theme.Hint.Render("Press Enter to go back.")
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
