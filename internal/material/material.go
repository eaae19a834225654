// Package material loads study material for exam generation: uploaded
// files, and random picks from a folder of topics.
package material

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/simtai/simtai/internal/exam"
)

var (
	// ErrUnsupportedFile is returned for files outside the upload allow-list.
	ErrUnsupportedFile = errors.New("unsupported file type: only PDF, TXT and MD are accepted")

	// ErrNoMaterial is returned when a folder holds no usable files.
	ErrNoMaterial = errors.New("no compatible files found")
)

// FragmentChars is how much of each file a simulacro uses.
const FragmentChars = 3000

// SimulacroTopics is the number of files a simulacro samples.
const SimulacroTopics = 3

// Loader reads study material from disk. It is safe for concurrent use.
type Loader struct {
	pdf PDFExtractor

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// Option configures a Loader.
type Option func(*Loader)

// WithPDFExtractor replaces the pdftotext extractor.
func WithPDFExtractor(p PDFExtractor) Option {
	return func(l *Loader) { l.pdf = p }
}

// WithRand fixes the random source used to pick topics.
func WithRand(r *rand.Rand) Option {
	return func(l *Loader) { l.rng = r }
}

// NewLoader returns a Loader using pdftotext and a randomly seeded source.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{pdf: Pdftotext{}}
	for _, o := range opts {
		o(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return l
}

// ReadFile extracts the text of a PDF, TXT or MD file.
func (l *Loader) ReadFile(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := l.pdf.ExtractText(ctx, path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filepath.Base(path), err)
		}
		return text, nil
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	}
	return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
}

// ReadUpload extracts the text of an uploaded file. PDFs are spooled to a
// temporary file for the extractor.
func (l *Loader) ReadUpload(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	if !exam.AllowedUpload(name, mimeType) {
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedFile)
	}
	if !isPDF(name, mimeType) {
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	}

	f, err := os.CreateTemp("", "simtai-upload-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return l.ReadFile(ctx, f.Name())
}

func isPDF(name, mimeType string) bool {
	mt, _, _ := strings.Cut(mimeType, ";")
	return strings.EqualFold(strings.TrimSpace(mt), "application/pdf") ||
		strings.EqualFold(filepath.Ext(name), ".pdf")
}

// ListFiles returns the usable files directly inside dir, sorted by name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".md", ".txt", ".pdf":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Selection is material picked from a folder.
type Selection struct {
	// Topics are the base names of the chosen files.
	Topics []string

	// Context is the text passed to the generator.
	Context string
}

// Roulette picks one file from dir at random and reads it whole.
func (l *Loader) Roulette(ctx context.Context, dir string) (*Selection, error) {
	files, err := l.files(dir)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	path := files[l.rng.IntN(len(files))]
	l.mu.Unlock()
	text, err := l.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Selection{Topics: []string{filepath.Base(path)}, Context: text}, nil
}

// Simulacro picks up to SimulacroTopics distinct files and joins the first
// FragmentChars characters of each under a topic header. Files that fail to
// read contribute an empty fragment.
func (l *Loader) Simulacro(ctx context.Context, dir string) (*Selection, error) {
	files, err := l.files(dir)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.rng.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })
	l.mu.Unlock()
	files = files[:min(SimulacroTopics, len(files))]

	sel := &Selection{}
	parts := make([]string, 0, len(files))
	for _, path := range files {
		name := filepath.Base(path)
		text, err := l.ReadFile(ctx, path)
		if err != nil {
			text = ""
		}
		sel.Topics = append(sel.Topics, name)
		parts = append(parts, fmt.Sprintf("### TEMA: %s ###\n%s\n", name, fragment(text, FragmentChars)))
	}
	sel.Context = strings.Join(parts, "\n")
	return sel, nil
}

func (l *Loader) files(dir string) ([]string, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoMaterial)
	}
	return files, nil
}

func fragment(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
