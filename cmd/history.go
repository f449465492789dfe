package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"mycelica/patchscan/internal/db"
	"mycelica/patchscan/internal/patch"
	"mycelica/patchscan/internal/report"
)

var (
	historyJSON   bool
	historySource string
	showNode      int
	forgetScan    bool
	showLatest    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored scans, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		scans, err := d.ListScans(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing scans: %w", err)
		}

		if historySource != "" {
			filtered := scans[:0]
			for _, s := range scans {
				if s.Source == historySource {
					filtered = append(filtered, s)
				}
			}
			scans = filtered
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(scans)
		}

		if len(scans) == 0 {
			fmt.Fprintln(out, "No stored scans.")
			return nil
		}
		for _, s := range scans {
			fmt.Fprintf(out, "%s  %s  %4d objects %4d connections  %s\n",
				s.ID[:8], time.UnixMilli(s.CreatedAt).Format("2006-01-02 15:04:05"),
				s.NodeCount, s.ConnectionCount, s.Source)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <scan-id> | --latest <file.pd>",
	Short: "Print a stored scan (full id or a prefix of at least 6 characters)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		id, err := showScanID(cmd, d, args[0])
		if err != nil {
			return err
		}

		if forgetScan {
			if err := d.DeleteScan(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted scan %s\n", id)
			return nil
		}

		if cmd.Flags().Changed("node") {
			conns, err := d.ConnectionsTouching(ctx, id, showNode)
			if err != nil {
				return fmt.Errorf("loading connections: %w", err)
			}
			nodes, err := d.NodesForScan(ctx, id)
			if err != nil {
				return fmt.Errorf("loading nodes: %w", err)
			}
			res := &patch.Result{Nodes: nodes, Connections: conns}
			return report.WriteResolved(cmd.OutOrStdout(), res)
		}

		res, err := d.LoadScan(ctx, id)
		if err != nil {
			return err
		}
		return writeResult(cmd.OutOrStdout(), res, formatFlag(cmd), resolveFlag(cmd))
	},
}

// showScanID resolves ref as a scan id, or with --latest as the patch file
// whose most recent stored scan is wanted
func showScanID(cmd *cobra.Command, d *db.DB, ref string) (string, error) {
	if !showLatest {
		return d.ResolveScanID(cmd.Context(), ref)
	}
	source := ref
	if abs, err := filepath.Abs(ref); err == nil {
		source = abs
	}
	s, err := d.LatestScan(cmd.Context(), source)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyCmd.Flags().StringVar(&historySource, "source", "", "Only list scans of this absolute file path")

	showCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: text, json or yaml")
	showCmd.Flags().BoolVar(&resolve, "resolve", false, "Append connections with both endpoints resolved to object text")
	showCmd.Flags().IntVar(&showNode, "node", 0, "Only list connections to or from this object id")
	showCmd.Flags().BoolVar(&forgetScan, "delete", false, "Delete the scan instead of printing it")
	showCmd.Flags().BoolVar(&showLatest, "latest", false, "Treat the argument as a patch file and use its most recent stored scan")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
}
