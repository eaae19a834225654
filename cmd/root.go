package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/simtai/simtai/internal/client"
	"github.com/simtai/simtai/internal/ingest"
	"github.com/simtai/simtai/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "simtai",
	Short: "AI exam simulator",
	Long:  "simtai generates multiple-choice practice exams from your study material and runs them in the terminal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is the normal case.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SIMTAI_DB env var)")
	rootCmd.PersistentFlags().String("api-url", "", "Generation service URL (overrides SIMTAI_API_URL env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SIMTAI_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the SQLite store named by the flags and environment.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// contextSlot is a persisted context slot that can also be cleared.
type contextSlot interface {
	ingest.ContextStore
	ingest.ContextClearer
}

// contextStore picks the context slot: Redis when SIMTAI_REDIS_URL is set,
// the SQLite store otherwise. The returned func releases it.
func contextStore(ctx context.Context, st *store.Store) (contextSlot, func(), error) {
	url := os.Getenv("SIMTAI_REDIS_URL")
	if url == "" {
		return st.ContextRepo(), func() {}, nil
	}
	rs, err := store.OpenRedisContextStore(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return rs, func() { _ = rs.Close() }, nil
}

// newClient builds the generation client from --api-url or SIMTAI_API_URL.
func newClient(cmd *cobra.Command) *client.Client {
	url, _ := cmd.Flags().GetString("api-url")
	if url == "" {
		url = client.BaseURLFromEnv()
	}
	return client.New(url)
}
