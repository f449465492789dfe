package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exportJSON bool

var exportCmd = &cobra.Command{
	Use:   "export <file.pd>",
	Short: "Scan a patch and store the inventory in the scan database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadPatch(args[0])
		if err != nil {
			return err
		}

		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		source := args[0]
		if abs, err := filepath.Abs(source); err == nil {
			source = abs
		}

		id, err := d.SaveScan(cmd.Context(), source, res)
		if err != nil {
			return fmt.Errorf("storing scan: %w", err)
		}

		out := cmd.OutOrStdout()
		if exportJSON {
			return json.NewEncoder(out).Encode(map[string]any{
				"id":          id,
				"source":      source,
				"nodes":       len(res.Nodes),
				"connections": len(res.Connections),
			})
		}
		fmt.Fprintf(out, "Stored scan %s (%d objects, %d connections) in %s\n",
			id, len(res.Nodes), len(res.Connections), d.Path)
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "Print the stored scan id as JSON")
	rootCmd.AddCommand(exportCmd)
}
