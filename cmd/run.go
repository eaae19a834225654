package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/simtai/simtai/internal/app"
	"github.com/simtai/simtai/internal/session"
)

// pingTimeout bounds the startup check of the generation service.
const pingTimeout = 2 * time.Second

// runApp opens the store, builds the session machine, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
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

	gen := newClient(cmd)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err = gen.Ping(pingCtx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generation service at %s is not answering: %v\n", gen.BaseURL(), err)
		fmt.Fprintln(os.Stderr, "Start it with `simtai serve`; exams will fail until it is up.")
	}

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	picker := app.NewPicker(dir)

	m := session.New(session.Options{
		Generator: gen,
		Store:     slot,
		Picker:    picker,
	})
	return app.Run(ctx, m, picker)
}
