package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"auctionrelay/internal/database"
)

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsImportCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspects the saved messaging sessions.",
}

func openStore() (*database.Database, error) {
	db, err := database.NewDatabase(cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store %s: %w", cfg.SessionDBPath, err)
	}
	return db, nil
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists saved sessions. Tokens are not printed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := db.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			out := make([]map[string]any, 0, len(rows))
			for _, r := range rows {
				out = append(out, map[string]any{
					"backend":   r.Backend,
					"state":     r.State,
					"hasToken":  r.Token != "",
					"updatedAt": r.UpdatedAt,
				})
			}
			return printJSON(out)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Backend", "State", "Token", "Updated"})
		for _, r := range rows {
			token := "no"
			if r.Token != "" {
				token = "yes"
			}
			t.AppendRow(table.Row{r.Backend, r.State, token, r.UpdatedAt.Local().Format(time.ANSIC)})
		}
		t.Render()
		return nil
	},
}

var sessionsImportCmd = &cobra.Command{
	Use:   "import <sessions.json>",
	Short: "Imports session tokens exported by the messaging bridges.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ImportSessionsFromJSON(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		slog.Info("✅ Sessions imported", "count", n)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <backend>",
	Short: "Forgets the saved session of a backend.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteSession(cmd.Context(), args[0]); err != nil {
			return err
		}
		slog.Info("Session deleted", "backend", args[0])
		return nil
	},
}
