package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simtai/simtai/internal/store"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Inspect or clear the saved study context",
}

var contextShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved study context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		content, ok, err := slot.GetContext(ctx)
		if err != nil {
			return fmt.Errorf("read context: %w", err)
		}
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, "No saved context.")
			return nil
		}
		if repo, isRepo := slot.(*store.ContextRepo); isRepo {
			if at, err := repo.UpdatedAt(ctx); err == nil && !at.IsZero() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s, %d characters\n",
					at.Local().Format("2006-01-02 15:04:05"), len([]rune(content)))
			}
		}
		fmt.Fprintln(out, content)
		return nil
	},
}

var contextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved study context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if err := slot.ClearContext(ctx); err != nil {
			return fmt.Errorf("clear context: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved context cleared.")
		return nil
	},
}

func init() {
	contextCmd.AddCommand(contextShowCmd)
	contextCmd.AddCommand(contextClearCmd)
}
