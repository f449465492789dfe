package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"mycelica/patchscan/internal/db"
	"mycelica/patchscan/internal/patch"
	"mycelica/patchscan/internal/watch"
)

var (
	watchDebounceMs int
	watchStore      bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <file.pd>",
	Short: "Print the inventory again every time the patch file changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		debounce := cfg.Watch.DebounceMs
		if cmd.Flags().Changed("debounce-ms") {
			debounce = watchDebounceMs
		}

		var store *db.DB
		if watchStore {
			d, err := OpenDatabase()
			if err != nil {
				return err
			}
			defer d.Close()
			store = d
		}

		source, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		format := formatFlag(cmd)
		withResolved := resolveFlag(cmd)

		w, err := watch.New(watch.Config{
			Path:       args[0],
			DebounceMs: debounce,
			Logger:     slog.Default(),
			Handler: func(res *patch.Result, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
					return
				}
				if err := writeResult(out, res, format, withResolved); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
				}
				if store != nil {
					if _, err := store.SaveScan(ctx, source, res); err != nil {
						slog.Error("storing scan", "error", err)
					}
				}
			},
		})
		if err != nil {
			return err
		}
		defer w.Stop()

		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: text, json or yaml")
	watchCmd.Flags().BoolVar(&resolve, "resolve", false, "Append connections with both endpoints resolved to object text")
	watchCmd.Flags().IntVar(&watchDebounceMs, "debounce-ms", 200, "Quiet period before a change triggers a rescan")
	watchCmd.Flags().BoolVar(&watchStore, "store", false, "Also store every rescan in the scan database")
	rootCmd.AddCommand(watchCmd)
}
