package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/examgen"
	"github.com/simtai/simtai/internal/material"
	"github.com/simtai/simtai/internal/sse"
)

var errUnsupportedUpload = errors.New("tipo de archivo no permitido: solo PDF, TXT o MD")

// generateForm is the multipart request of POST /generate-exam.
type generateForm struct {
	NumQuestions  int
	Difficulty    exam.Difficulty
	Topic         string
	Context       string
	DirectoryPath string
	Mode          string
	File          *multipart.FileHeader
}

// prepared is the material resolved before streaming starts.
type prepared struct {
	input examgen.Input

	// logs are sent ahead of the context frame.
	logs []string

	// context is sent as a context frame when non-empty.
	context string
}

func (s *Server) handleGenerateExam(c *gin.Context) {
	form, err := s.parseForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	ctx := c.Request.Context()
	p := s.prepare(ctx, form)

	log.Printf("Generating -> Questions: %d | Difficulty: %s | Topic: %s | Mode: %s",
		form.NumQuestions, form.Difficulty, orDefault(form.Topic), form.Mode)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	w := sse.NewWriter(c.Writer)
	if err := s.stream(ctx, w, p); err != nil {
		log.Printf("generation stream ended early: %v", err)
	}
}

func (s *Server) stream(ctx context.Context, w *sse.Writer, p *prepared) error {
	for _, msg := range p.logs {
		if err := w.Log(msg); err != nil {
			return err
		}
	}
	if err := w.Context(p.context); err != nil {
		return err
	}

	if err := s.gen.Run(ctx, p.input, w); err != nil {
		if ctx.Err() != nil {
			return err
		}
		// Surface the failure to the reader and still terminate the stream.
		if err := w.Log(fmt.Sprintf("[ERROR] %v", err)); err != nil {
			return err
		}
	}
	return w.Done()
}

func (s *Server) parseForm(c *gin.Context) (*generateForm, error) {
	form := &generateForm{
		Difficulty:    exam.Difficulty(strings.TrimSpace(c.DefaultPostForm("difficulty", string(exam.DefaultDifficulty)))),
		Topic:         strings.TrimSpace(c.PostForm("topic")),
		Context:       c.PostForm("context"),
		DirectoryPath: strings.TrimSpace(c.PostForm("directory_path")),
		Mode:          strings.TrimSpace(c.DefaultPostForm("mode", examgen.ModeManual)),
	}
	if form.Difficulty == "" {
		form.Difficulty = exam.DefaultDifficulty
	}
	if form.Mode == "random" {
		form.Mode = examgen.ModeRandom
	}

	n, err := strconv.Atoi(strings.TrimSpace(c.DefaultPostForm("num_questions", strconv.Itoa(exam.DefaultNumQuestions))))
	if err != nil || n <= 0 {
		return nil, errors.New("num_questions must be a positive integer")
	}
	if s.cfg.MaxQuestions > 0 && n > s.cfg.MaxQuestions {
		return nil, fmt.Errorf("num_questions must be at most %d", s.cfg.MaxQuestions)
	}
	form.NumQuestions = n

	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return nil, fmt.Errorf("invalid upload: %v", err)
	default:
		if !exam.AllowedUpload(fh.Filename, fh.Header.Get("Content-Type")) {
			return nil, errUnsupportedUpload
		}
		form.File = fh
	}
	return form, nil
}

// prepare resolves the study material. Read failures are logged and fall
// back to the submitted context.
func (s *Server) prepare(ctx context.Context, form *generateForm) *prepared {
	p := &prepared{input: examgen.Input{
		NumQuestions: form.NumQuestions,
		Difficulty:   form.Difficulty,
		Topic:        form.Topic,
		Context:      form.Context,
		Mode:         form.Mode,
	}}

	switch {
	case form.Mode == examgen.ModeManual && form.File != nil:
		text, err := s.readUpload(ctx, form.File)
		if err != nil {
			log.Printf("Error reading upload %s: %v", form.File.Filename, err)
			break
		}
		if len([]rune(text)) < 50 {
			log.Printf("Warning: extracted text from %s is too short or empty", form.File.Filename)
		}
		p.input.Context = text
		p.context = text

	case form.DirectoryPath != "" && form.Mode == examgen.ModeSimulacro:
		sel, err := s.material.Simulacro(ctx, form.DirectoryPath)
		if err != nil {
			p.logs = append(p.logs, folderError("SIMULACRO", form.DirectoryPath, err))
			break
		}
		log.Printf("[SIMULACRO] Temas elegidos: %s", strings.Join(sel.Topics, ", "))
		p.logs = append(p.logs, "🎲 [SIMULACRO] Temas: "+strings.Join(sel.Topics, ", "))
		p.input.Context = sel.Context
		p.context = sel.Context

	case form.DirectoryPath != "" && form.Mode == examgen.ModeRandom:
		sel, err := s.material.Roulette(ctx, form.DirectoryPath)
		if err != nil {
			p.logs = append(p.logs, folderError("RULETA", form.DirectoryPath, err))
			break
		}
		log.Printf("[RULETA] Tema seleccionado al azar: %s", sel.Topics[0])
		p.logs = append(p.logs, "🎲 [RULETA] Tema: "+sel.Topics[0])
		p.input.Context = sel.Context
		p.context = sel.Context
	}
	return p
}

func (s *Server) readUpload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return s.material.ReadUpload(ctx, fh.Filename, fh.Header.Get("Content-Type"), data)
}

func folderError(tag, dir string, err error) string {
	log.Printf("[%s] Error al leer directorio %s: %v", tag, dir, err)
	if errors.Is(err, material.ErrNoMaterial) {
		return fmt.Sprintf("[%s] No se encontraron archivos compatibles en: %s", tag, dir)
	}
	return fmt.Sprintf("[%s] Error al leer directorio: %v", tag, err)
}

func orDefault(topic string) string {
	if topic == "" {
		return "Default"
	}
	return topic
}
