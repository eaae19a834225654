package exam

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Difficulty is the free-form difficulty label sent to the generation
// service. The service accepts any label; these are the ones the UI offers.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "Básico"
	DifficultyIntermediate Difficulty = "Intermedio"
	DifficultyAdvanced     Difficulty = "Avanzado"
)

// DefaultDifficulty is used when a request carries no difficulty.
const DefaultDifficulty = DifficultyIntermediate

// Difficulties lists the labels offered by the start screen.
var Difficulties = []Difficulty{DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced}

// SourceMode selects where study material comes from.
type SourceMode string

const (
	// SourceNormal uses an uploaded file, a topic, or the persisted context.
	SourceNormal SourceMode = "normal"
	// SourceRandomFolder lets the service pick material from a folder.
	SourceRandomFolder SourceMode = "random-folder"
)

// FolderStrategy is how the service samples a folder in random-folder mode.
type FolderStrategy string

const (
	// FolderSingle picks one file and uses it whole.
	FolderSingle FolderStrategy = "random_1"
	// FolderSimulacro picks up to three files and uses a fragment of each.
	FolderSimulacro FolderStrategy = "simulacro_3"
)

// Defaults offered by the start screen.
const (
	DefaultNumQuestions = 10
	DefaultMinutes      = 15
)

// QuestionCounts and MinuteChoices are the values the start screen cycles through.
var (
	QuestionCounts = []int{5, 10, 20, 50}
	MinuteChoices  = []int{5, 15, 30, 60}
)

// SessionConfig is the snapshot of user choices taken when generation
// starts. It is replayed verbatim on retry, except for an optional
// difficulty override.
type SessionConfig struct {
	NumQuestions int
	Minutes      int
	Difficulty   Difficulty
	Topic        string

	// FilePath is the uploaded study material, if any.
	FilePath string

	// FolderPath is the source folder for random-folder mode.
	FolderPath string

	Mode     SourceMode
	Strategy FolderStrategy
}

// DefaultSessionConfig returns the start screen's initial choices.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		NumQuestions: DefaultNumQuestions,
		Minutes:      DefaultMinutes,
		Difficulty:   DefaultDifficulty,
		Mode:         SourceNormal,
		Strategy:     FolderSingle,
	}
}

// HasMaterial reports whether the configuration names its own source, so the
// persisted context is not needed as a fallback.
func (c SessionConfig) HasMaterial() bool {
	return c.usesFolder() || c.FilePath != "" || strings.TrimSpace(c.Topic) != ""
}

func (c SessionConfig) usesFolder() bool {
	return c.Mode == SourceRandomFolder && c.FolderPath != ""
}

// TimeLimit is the exam duration. A zero Minutes falls back to
// DefaultMinutes; every exam is timed.
func (c SessionConfig) TimeLimit() time.Duration {
	if c.Minutes <= 0 {
		return DefaultMinutes * time.Minute
	}
	return time.Duration(c.Minutes) * time.Minute
}

// Validate checks the fields the generation service cannot default.
func (c SessionConfig) Validate() error {
	if c.NumQuestions <= 0 {
		return fmt.Errorf("question count must be positive, got %d", c.NumQuestions)
	}
	if c.Minutes < 0 {
		return fmt.Errorf("time limit must not be negative, got %d", c.Minutes)
	}
	if c.Mode == SourceRandomFolder && c.FolderPath == "" {
		return fmt.Errorf("random-folder mode needs a folder")
	}
	if c.FilePath != "" && !AllowedUpload(c.FilePath, "") {
		return fmt.Errorf("unsupported file %q: only PDF, TXT and MD are accepted", filepath.Base(c.FilePath))
	}
	return nil
}

// WithDifficulty returns a copy with the difficulty replaced. An empty label
// keeps the current one.
func (c SessionConfig) WithDifficulty(d Difficulty) SessionConfig {
	if d != "" {
		c.Difficulty = d
	}
	return c
}

// Request builds the wire request for this configuration. fallback is the
// persisted context, used only when the configuration names no material.
// At most one material source is set, in precedence order: folder, file,
// topic, fallback context.
func (c SessionConfig) Request(fallback string) GenerationRequest {
	req := GenerationRequest{
		NumQuestions: c.NumQuestions,
		Difficulty:   c.Difficulty,
		Mode:         "manual",
	}
	if req.Difficulty == "" {
		req.Difficulty = DefaultDifficulty
	}

	switch {
	case c.usesFolder():
		req.DirectoryPath = c.FolderPath
		req.Mode = string(c.Strategy)
		if req.Mode == "" {
			req.Mode = string(FolderSingle)
		}
	case c.FilePath != "":
		req.FilePath = c.FilePath
	case strings.TrimSpace(c.Topic) != "":
		req.Topic = strings.TrimSpace(c.Topic)
	default:
		req.Context = fallback
	}
	return req
}

// GenerationRequest is the multipart submission sent to the generation
// service.
type GenerationRequest struct {
	NumQuestions  int
	Difficulty    Difficulty
	Topic         string
	FilePath      string
	DirectoryPath string
	Context       string
	Mode          string
}

// allowedExtensions and allowedMIME form the upload allow-list.
var (
	allowedExtensions = map[string]bool{".pdf": true, ".txt": true, ".md": true}
	allowedMIME       = map[string]bool{"application/pdf": true, "text/plain": true}
)

// AllowedUpload reports whether a file may be sent as study material. A file
// passes when its MIME type or its extension is on the allow-list.
func AllowedUpload(name, mimeType string) bool {
	if mt, _, _ := strings.Cut(mimeType, ";"); allowedMIME[strings.TrimSpace(strings.ToLower(mt))] {
		return true
	}
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}
