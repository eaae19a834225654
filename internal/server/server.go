// Package server is the exam generation service: an HTTP endpoint that
// streams questions as server-sent events.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/simtai/simtai/internal/examgen"
	"github.com/simtai/simtai/internal/material"
)

// Generator streams an exam into a sink. examgen.LLMGenerator implements it.
type Generator interface {
	Run(ctx context.Context, in examgen.Input, sink examgen.Sink) error
}

// MaterialLoader reads study material. material.Loader implements it.
type MaterialLoader interface {
	ReadUpload(ctx context.Context, name, mimeType string, data []byte) (string, error)
	Roulette(ctx context.Context, dir string) (*material.Selection, error)
	Simulacro(ctx context.Context, dir string) (*material.Selection, error)
}

// Server serves the generation API.
type Server struct {
	cfg      Config
	gen      Generator
	material MaterialLoader
	router   *gin.Engine
}

// New builds the router. Request logging goes through gin.Logger.
func New(cfg Config, gen Generator, loader MaterialLoader) *Server {
	s := &Server{cfg: cfg, gen: gen, material: loader}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), CORSMiddleware())
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	router.GET("/", s.handleRoot)
	router.POST("/generate-exam", s.handleGenerateExam)
	s.router = router

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:     s.router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ListenAndServe listens on Config.Addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "simtai API is running"})
}
