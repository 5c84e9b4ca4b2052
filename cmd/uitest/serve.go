package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hairizuan-noorazman/ui-bdd/server"
	"github.com/hairizuan-noorazman/ui-bdd/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports and run history over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if port > 0 {
				a.cfg.Server.Port = port
			}

			a.log.Info(cmd.Context(), "starting server", map[string]interface{}{
				"version": Version,
				"commit":  Commit,
				"date":    BuildDate,
			})

			runs, assets, err := a.historyStores(true)
			if err != nil {
				return err
			}

			deps := server.Deps{
				Reports: a.reports(),
				Fs:      a.fs,
				Runs:    runs,
				Assets:  assets,
				Logger:  a.log,
			}
			if runs != nil {
				blobs, err := storage.New(cmd.Context(), a.cfg.Storage, a.fs)
				if err != nil {
					a.log.Warn(cmd.Context(), "artifact storage unavailable, asset downloads disabled", map[string]interface{}{
						"error": err.Error(),
					})
				} else {
					deps.Blobs = blobs
				}
			}

			srv := server.New(a.cfg.Server, deps)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port, overrides server.port")
	cmd.AddCommand(newHashPasswordCmd())
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for server.password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := server.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
