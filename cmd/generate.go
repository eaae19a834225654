package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/ingest"
	"github.com/simtai/simtai/internal/session"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one exam without the TUI and print it as JSON",
	Long: "Send one generation request to the service, print progress to stderr " +
		"and the resulting questions to stdout as a JSON array.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := generateConfig(cmd)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		slot, release, err := contextStore(ctx, st)
		if err != nil {
			return fmt.Errorf("open context store: %w", err)
		}
		defer release()

		m := session.New(session.Options{Generator: newClient(cmd), Store: slot})
		run, err := m.Start(ctx, cfg)
		if err != nil {
			return err
		}

		progress := newLogPrinter(m.Log(), os.Stderr)
		progress.flush()
		if err := run.Consume(progress.flush); err != nil {
			return fmt.Errorf("generation request failed: %w", err)
		}
		progress.flush()

		if m.State() != session.StatePresenting {
			if err := m.LastError(); err != nil {
				return err
			}
			return session.ErrNoQuestions
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(m.Questions())
	},
}

func init() {
	generateCmd.Flags().IntP("count", "n", exam.DefaultNumQuestions, "Number of questions")
	generateCmd.Flags().StringP("difficulty", "d", string(exam.DefaultDifficulty), "Difficulty label (Básico, Intermedio, Avanzado)")
	generateCmd.Flags().StringP("topic", "t", "", "Topic to ask about")
	generateCmd.Flags().StringP("file", "f", "", "Study material file (.pdf, .txt or .md)")
	generateCmd.Flags().String("folder", "", "Pick study material at random from this folder")
	generateCmd.Flags().Bool("simulacro", false, "With --folder, mix fragments of three topics")
}

func generateConfig(cmd *cobra.Command) (exam.SessionConfig, error) {
	cfg := exam.DefaultSessionConfig()
	cfg.NumQuestions, _ = cmd.Flags().GetInt("count")
	d, _ := cmd.Flags().GetString("difficulty")
	cfg.Difficulty = exam.Difficulty(d)
	cfg.Topic, _ = cmd.Flags().GetString("topic")
	cfg.FilePath, _ = cmd.Flags().GetString("file")

	if folder, _ := cmd.Flags().GetString("folder"); folder != "" {
		cfg.Mode = exam.SourceRandomFolder
		cfg.FolderPath = folder
		if sim, _ := cmd.Flags().GetBool("simulacro"); sim {
			cfg.Strategy = exam.FolderSimulacro
		}
	}
	return cfg, cfg.Validate()
}

// logPrinter writes log entries it has not printed yet.
type logPrinter struct {
	log  *ingest.Log
	w    io.Writer
	seen int
}

func newLogPrinter(log *ingest.Log, w io.Writer) *logPrinter {
	return &logPrinter{log: log, w: w}
}

func (p *logPrinter) flush() {
	dropped := p.log.Dropped()
	entries := p.log.Entries()
	skip := min(max(0, p.seen-dropped), len(entries))
	for _, e := range entries[skip:] {
		fmt.Fprintln(p.w, e)
	}
	p.seen = dropped + len(entries)
}
