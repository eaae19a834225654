package exam

// AnswerRecord is the per-question answer state. Correct is computed when
// the option is selected and never recomputed.
type AnswerRecord struct {
	QuestionID string
	Selected   int // -1 when nothing is selected
	Correct    bool
	Answered   bool
}

// BlankRecord returns the record a question starts with.
func BlankRecord(q Question) AnswerRecord {
	return AnswerRecord{QuestionID: q.Key(), Selected: -1}
}

// WrongPerPoint is how many wrong answers cancel one correct answer.
const WrongPerPoint = 3

// Score summarizes a finished exam.
type Score struct {
	Total      int
	Correct    int
	Incorrect  int
	Unanswered int

	// Raw is Correct minus the penalty for incorrect answers.
	Raw float64

	// Percentage is Raw over Total, floored at zero. It cannot exceed 100
	// because Raw never exceeds Total.
	Percentage float64

	// PenaltyPoints is the amount subtracted from Correct.
	PenaltyPoints float64
}

// ComputeScore scores a set of answer records against the question total.
// Blank records do not count as answered: unanswered is the total minus the
// records that hold a selection, so a session with fewer records than
// questions still adds up.
func ComputeScore(total int, records []AnswerRecord) Score {
	s := Score{Total: total}
	answered := 0
	for _, r := range records {
		if !r.Answered {
			continue
		}
		answered++
		if r.Correct {
			s.Correct++
		} else {
			s.Incorrect++
		}
	}
	s.Unanswered = total - answered
	if s.Unanswered < 0 {
		s.Unanswered = 0
	}

	s.PenaltyPoints = float64(s.Incorrect) / WrongPerPoint
	s.Raw = float64(s.Correct) - s.PenaltyPoints
	if total > 0 && s.Raw > 0 {
		s.Percentage = s.Raw * 100 / float64(total)
	}
	return s
}

// ReviewFilter selects which questions a review shows.
type ReviewFilter string

const (
	ReviewCorrect    ReviewFilter = "correct"
	ReviewIncorrect  ReviewFilter = "incorrect"
	ReviewUnanswered ReviewFilter = "unanswered"
)

// ReviewFilters lists every filter. Together they partition a session.
var ReviewFilters = []ReviewFilter{ReviewCorrect, ReviewIncorrect, ReviewUnanswered}

// Match reports whether a record belongs to the filter.
func (f ReviewFilter) Match(r AnswerRecord) bool {
	switch f {
	case ReviewCorrect:
		return r.Answered && r.Correct
	case ReviewIncorrect:
		return r.Answered && !r.Correct
	case ReviewUnanswered:
		return !r.Answered
	}
	return false
}

// Label is the heading used for the filter in the review view.
func (f ReviewFilter) Label() string {
	switch f {
	case ReviewCorrect:
		return "Correct"
	case ReviewIncorrect:
		return "Incorrect"
	case ReviewUnanswered:
		return "Unanswered"
	}
	return string(f)
}
