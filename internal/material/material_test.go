package material

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePDF struct {
	text  string
	err   error
	paths []string
}

func (f *fakePDF) ExtractText(_ context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	return f.text, f.err
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestListFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.md": "", "a.txt": "", "c.PDF": "", "notes.docx": "", "img.png": "",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	files, err := ListFiles(dir)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"a.txt", "b.md", "c.PDF"}, names)
}

func TestReadFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"tema.md": "# Redes\nTCP/IP", "bad.txt": "ok\xffok", "x.docx": ""})
	pdf := &fakePDF{text: "texto pdf"}
	l := NewLoader(WithPDFExtractor(pdf))

	got, err := l.ReadFile(context.Background(), filepath.Join(dir, "tema.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Redes\nTCP/IP", got)

	got, err = l.ReadFile(context.Background(), filepath.Join(dir, "bad.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ok\uFFFDok", got)

	got, err = l.ReadFile(context.Background(), "/any/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "texto pdf", got)

	_, err = l.ReadFile(context.Background(), filepath.Join(dir, "x.docx"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestReadUpload(t *testing.T) {
	pdf := &fakePDF{text: "from pdf"}
	l := NewLoader(WithPDFExtractor(pdf))
	ctx := context.Background()

	got, err := l.ReadUpload(ctx, "apuntes.md", "", []byte("hola"))
	require.NoError(t, err)
	assert.Equal(t, "hola", got)

	got, err = l.ReadUpload(ctx, "blob", "text/plain; charset=utf-8", []byte("plano"))
	require.NoError(t, err)
	assert.Equal(t, "plano", got)

	got, err = l.ReadUpload(ctx, "tema.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "from pdf", got)
	require.Len(t, pdf.paths, 1)
	_, statErr := os.Stat(pdf.paths[0])
	assert.True(t, os.IsNotExist(statErr), "temporary upload is removed")

	_, err = l.ReadUpload(ctx, "foto.png", "image/png", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestRoulette(t *testing.T) {
	dir := writeFiles(t, map[string]string{"t1.md": "uno", "t2.md": "dos", "t3.txt": "tres"})
	l := NewLoader(WithRand(rand.New(rand.NewPCG(1, 2))))

	seen := map[string]bool{}
	for range 30 {
		sel, err := l.Roulette(context.Background(), dir)
		require.NoError(t, err)
		require.Len(t, sel.Topics, 1)
		body, _ := os.ReadFile(filepath.Join(dir, sel.Topics[0]))
		assert.Equal(t, string(body), sel.Context)
		seen[sel.Topics[0]] = true
	}
	assert.Greater(t, len(seen), 1, "picks vary")
}

func TestSimulacro(t *testing.T) {
	long := strings.Repeat("á", FragmentChars+50)
	dir := writeFiles(t, map[string]string{"a.md": long, "b.md": "bee", "c.md": "cee", "d.md": "dee"})
	l := NewLoader(WithRand(rand.New(rand.NewPCG(3, 4))))

	sel, err := l.Simulacro(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, sel.Topics, SimulacroTopics)

	distinct := map[string]bool{}
	for _, name := range sel.Topics {
		distinct[name] = true
		assert.Contains(t, sel.Context, "### TEMA: "+name+" ###\n")
	}
	assert.Len(t, distinct, SimulacroTopics)
	if distinct["a.md"] {
		assert.Contains(t, sel.Context, strings.Repeat("á", FragmentChars)+"\n")
		assert.NotContains(t, sel.Context, strings.Repeat("á", FragmentChars+1))
	}
}

func TestSimulacro_FewerFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{"solo.txt": "único"})
	sel, err := NewLoader().Simulacro(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"solo.txt"}, sel.Topics)
	assert.Equal(t, "### TEMA: solo.txt ###\núnico\n", sel.Context)
}

func TestSimulacro_UnreadablePDFContributesEmptyFragment(t *testing.T) {
	dir := writeFiles(t, map[string]string{"roto.pdf": "x"})
	l := NewLoader(WithPDFExtractor(&fakePDF{err: errors.New("boom")}))
	sel, err := l.Simulacro(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "### TEMA: roto.pdf ###\n\n", sel.Context)
}

func TestEmptyFolder(t *testing.T) {
	dir := writeFiles(t, map[string]string{"readme.docx": ""})
	_, err := NewLoader().Roulette(context.Background(), dir)
	assert.ErrorIs(t, err, ErrNoMaterial)

	_, err = NewLoader().Simulacro(context.Background(), filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoader_ConcurrentPicks(t *testing.T) {
	dir := writeFiles(t, map[string]string{"t1.md": "uno", "t2.md": "dos", "t3.txt": "tres", "t4.md": "cuatro"})
	l := NewLoader()

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				sel, err := l.Simulacro(context.Background(), dir)
				if assert.NoError(t, err) {
					assert.Len(t, sel.Topics, SimulacroTopics)
				}
				return
			}
			sel, err := l.Roulette(context.Background(), dir)
			if assert.NoError(t, err) {
				assert.Len(t, sel.Topics, 1)
			}
		}()
	}
	wg.Wait()
}
