package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tubio/internal/config"
	"tubio/internal/session"
)

func newSessionCommand(configFlag *string) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and maintain stored sessions",
	}

	sessionCmd.AddCommand(newSessionListCommand(configFlag))
	sessionCmd.AddCommand(newSessionPurgeCommand(configFlag))

	return sessionCmd
}

func openStore(configFlag *string) (*session.Store, error) {
	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	store, err := session.Open(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

func newSessionListCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configFlag)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No sessions stored")
				return nil
			}

			interactive := shouldColorize(out)
			now := time.Now()
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				state := "active"
				if entry.ExpiresAt.Before(now) {
					state = "expired"
					if interactive {
						state = ansiRed + state + ansiReset
					}
				}
				rows = append(rows, []string{
					entry.ID,
					state,
					entry.CreatedAt.Local().Format(time.DateTime),
					entry.LastAccessed.Local().Format(time.DateTime),
					entry.ExpiresAt.Local().Format(time.DateTime),
					strconv.Itoa(entry.ConfigSize),
				})
			}
			headers := []string{"ID", "State", "Created", "Last Access", "Expires", "Config Bytes"}
			if !interactive {
				// Keep piped output grep-friendly.
				fmt.Fprintln(out, strings.Join(headers, "\t"))
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
				return nil
			}
			fmt.Fprintln(out, renderTable(headers, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newSessionPurgeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired sessions now",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configFlag)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Sweep(cmd.Context())
			if err != nil {
				return fmt.Errorf("purge sessions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired session(s)\n", removed)
			return nil
		},
	}
}
