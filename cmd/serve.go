package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/simtai/simtai/internal/examgen"
	"github.com/simtai/simtai/internal/llm"
	"github.com/simtai/simtai/internal/material"
	"github.com/simtai/simtai/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the exam generation service",
	Long: "Run the HTTP service that turns study material into exam questions and " +
		"streams them as server-sent events on POST /generate-exam.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		llmCfg := llm.ConfigFromEnv()
		if p, _ := cmd.Flags().GetString("provider"); p != "" {
			llmCfg.Provider = p
		}
		llmCfg.MockReply = examgen.DemoReply
		provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		cfg := server.ConfigFromEnv()
		if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
			cfg.Addr = addr
		}

		loader := material.NewLoader()
		if bin, _ := cmd.Flags().GetString("pdftotext"); bin != "" {
			loader = material.NewLoader(material.WithPDFExtractor(material.Pdftotext{Bin: bin}))
		}

		srv := server.New(cfg, examgen.New(provider, examgen.ConfigFromEnv()), loader)
		log.Printf("simtai service listening on %s (model %s)", cfg.Addr, provider.ModelID())
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (overrides SIMTAI_LISTEN, default :8000)")
	serveCmd.Flags().String("provider", "", "LLM provider: gemini, openai, anthropic, openrouter or mock")
	serveCmd.Flags().String("pdftotext", "", "Path to the pdftotext binary")
}
