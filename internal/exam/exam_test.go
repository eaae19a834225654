package exam

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScore_Formula(t *testing.T) {
	var records []AnswerRecord
	for i := 0; i < 7; i++ {
		records = append(records, AnswerRecord{Selected: 0, Correct: true, Answered: true})
	}
	for i := 0; i < 3; i++ {
		records = append(records, AnswerRecord{Selected: 1, Answered: true})
	}

	s := ComputeScore(10, records)
	if s.Correct != 7 || s.Incorrect != 3 || s.Unanswered != 0 {
		t.Fatalf("counts = %d/%d/%d, want 7/3/0", s.Correct, s.Incorrect, s.Unanswered)
	}
	if s.Raw != 6 {
		t.Errorf("Raw = %v, want 6", s.Raw)
	}
	if s.Percentage != 60 {
		t.Errorf("Percentage = %v, want 60", s.Percentage)
	}
	if s.PenaltyPoints != 1 {
		t.Errorf("PenaltyPoints = %v, want 1", s.PenaltyPoints)
	}
}

func TestComputeScore_FloorsAtZero(t *testing.T) {
	records := []AnswerRecord{
		{Selected: 1, Answered: true},
		{Selected: 2, Answered: true},
		{Selected: 3, Answered: true},
		{Selected: 0, Correct: true, Answered: true},
		{Selected: 1, Answered: true},
	}
	s := ComputeScore(5, records)
	if s.Raw >= 0 {
		t.Fatalf("Raw = %v, want negative", s.Raw)
	}
	if s.Percentage != 0 {
		t.Errorf("Percentage = %v, want 0", s.Percentage)
	}
}

func TestComputeScore_BlankAndMissingRecordsAreUnanswered(t *testing.T) {
	records := []AnswerRecord{
		{Selected: 0, Correct: true, Answered: true},
		{Selected: -1},
	}
	// Four questions, two records, one of them blank.
	s := ComputeScore(4, records)
	if s.Unanswered != 3 {
		t.Errorf("Unanswered = %d, want 3", s.Unanswered)
	}
	if s.Percentage != 25 {
		t.Errorf("Percentage = %v, want 25", s.Percentage)
	}
}

func TestComputeScore_EmptyExam(t *testing.T) {
	s := ComputeScore(0, nil)
	if s.Percentage != 0 || s.Raw != 0 {
		t.Errorf("empty exam score = %+v, want zeros", s)
	}
}

func TestReviewFiltersPartition(t *testing.T) {
	records := []AnswerRecord{
		{Selected: 0, Correct: true, Answered: true},
		{Selected: 2, Answered: true},
		{Selected: -1},
		{Selected: 1, Correct: true, Answered: true},
	}
	for _, r := range records {
		matches := 0
		for _, f := range ReviewFilters {
			if f.Match(r) {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("record %+v matched %d filters, want 1", r, matches)
		}
	}
}

func TestQuestionKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`7`, "7"},
		{`"q-3"`, "q-3"},
		{``, ""},
	}
	for _, tt := range tests {
		q := Question{ID: json.RawMessage(tt.raw)}
		if got := q.Key(); got != tt.want {
			t.Errorf("Key(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestQuestionRefutation(t *testing.T) {
	q := Question{
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 2,
		Refutations:  map[string]string{"0": "no", "2": "unused", "3": ""},
	}

	r, ok := q.Refutation(0)
	assert.True(t, ok)
	assert.Equal(t, "no", r)

	_, ok = q.Refutation(2)
	assert.False(t, ok, "correct option never has a refutation")

	_, ok = q.Refutation(3)
	assert.False(t, ok, "empty refutation is treated as absent")

	_, ok = q.Refutation(1)
	assert.False(t, ok)
}

func TestDecodeQuestions_Lenient(t *testing.T) {
	elems := []json.RawMessage{
		json.RawMessage(`{"id":1,"question":"Q1","options":["a","b"],"correct_index":1,"explanation":"e"}`),
		json.RawMessage(`"not an object"`),
		json.RawMessage(`{"id":"x","question":"Q3","options":"oops","correct_index":0}`),
	}

	qs := DecodeQuestions(elems)
	require.Len(t, qs, 3)

	assert.Equal(t, "Q1", qs[0].Prompt)
	assert.Equal(t, 1, qs[0].CorrectIndex)
	assert.True(t, qs[0].Valid())

	assert.Equal(t, Question{}.Prompt, qs[1].Prompt)
	assert.False(t, qs[1].Valid())

	assert.Equal(t, "Q3", qs[2].Prompt)
	assert.Empty(t, qs[2].Options)
	assert.False(t, qs[2].Valid())
}

func TestSessionConfigRequest_Precedence(t *testing.T) {
	base := DefaultSessionConfig()

	tests := []struct {
		name  string
		cfg   SessionConfig
		check func(t *testing.T, r GenerationRequest)
	}{
		{
			name: "folder wins over everything",
			cfg: func() SessionConfig {
				c := base
				c.Mode = SourceRandomFolder
				c.FolderPath = "/notes"
				c.Strategy = FolderSimulacro
				c.FilePath = "tema1.pdf"
				c.Topic = "Redes"
				return c
			}(),
			check: func(t *testing.T, r GenerationRequest) {
				assert.Equal(t, "/notes", r.DirectoryPath)
				assert.Equal(t, "simulacro_3", r.Mode)
				assert.Empty(t, r.FilePath)
				assert.Empty(t, r.Topic)
				assert.Empty(t, r.Context)
			},
		},
		{
			name: "file before topic",
			cfg: func() SessionConfig {
				c := base
				c.FilePath = "tema1.pdf"
				c.Topic = "Redes"
				return c
			}(),
			check: func(t *testing.T, r GenerationRequest) {
				assert.Equal(t, "tema1.pdf", r.FilePath)
				assert.Equal(t, "manual", r.Mode)
				assert.Empty(t, r.Topic)
			},
		},
		{
			name: "topic before context",
			cfg: func() SessionConfig {
				c := base
				c.Topic = "  Redes  "
				return c
			}(),
			check: func(t *testing.T, r GenerationRequest) {
				assert.Equal(t, "Redes", r.Topic)
				assert.Empty(t, r.Context)
			},
		},
		{
			name: "fallback context",
			cfg:  base,
			check: func(t *testing.T, r GenerationRequest) {
				assert.Equal(t, "C1", r.Context)
			},
		},
		{
			name: "folder mode without a folder falls through",
			cfg: func() SessionConfig {
				c := base
				c.Mode = SourceRandomFolder
				return c
			}(),
			check: func(t *testing.T, r GenerationRequest) {
				assert.Empty(t, r.DirectoryPath)
				assert.Equal(t, "C1", r.Context)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.cfg.Request("C1")
			assert.Equal(t, DefaultDifficulty, r.Difficulty)
			assert.Equal(t, 10, r.NumQuestions)
			tt.check(t, r)
		})
	}
}

func TestSessionConfigValidate(t *testing.T) {
	c := DefaultSessionConfig()
	require.NoError(t, c.Validate())

	c.FilePath = "slides.pptx"
	assert.Error(t, c.Validate())

	c = DefaultSessionConfig()
	c.NumQuestions = 0
	assert.Error(t, c.Validate())

	c = DefaultSessionConfig()
	c.Mode = SourceRandomFolder
	assert.Error(t, c.Validate())
}

func TestAllowedUpload(t *testing.T) {
	tests := []struct {
		name, mime string
		want       bool
	}{
		{"tema.pdf", "", true},
		{"notes.MD", "", true},
		{"notes.txt", "", true},
		{"blob", "application/pdf", true},
		{"blob", "text/plain; charset=utf-8", true},
		{"slides.pptx", "application/vnd.ms-powerpoint", false},
		{"image.png", "", false},
	}
	for _, tt := range tests {
		if got := AllowedUpload(tt.name, tt.mime); got != tt.want {
			t.Errorf("AllowedUpload(%q, %q) = %v, want %v", tt.name, tt.mime, got, tt.want)
		}
	}
}

func TestWithDifficulty(t *testing.T) {
	c := DefaultSessionConfig()
	if got := c.WithDifficulty("").Difficulty; got != DefaultDifficulty {
		t.Errorf("empty override changed difficulty to %q", got)
	}
	if got := c.WithDifficulty(DifficultyAdvanced).Difficulty; got != DifficultyAdvanced {
		t.Errorf("override = %q, want %q", got, DifficultyAdvanced)
	}
	if c.Difficulty != DefaultDifficulty {
		t.Error("WithDifficulty mutated the receiver")
	}
}

func TestSessionConfigTimeLimit(t *testing.T) {
	cfg := DefaultSessionConfig()
	assert.Equal(t, 15*time.Minute, cfg.TimeLimit())

	cfg.Minutes = 0
	assert.Equal(t, DefaultMinutes*time.Minute, cfg.TimeLimit())

	cfg.Minutes = 60
	assert.Equal(t, time.Hour, cfg.TimeLimit())
}
