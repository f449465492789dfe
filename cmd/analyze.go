package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"mycelica/patchscan/internal/graph"
	"mycelica/patchscan/internal/patch"
)

var (
	analyzeJSON         bool
	analyzeScan         string
	analyzeTopN         int
	analyzeHubThreshold int
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	healthStyle  = lipgloss.NewStyle().Bold(true)
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file.pd]",
	Short: "Analyze patch structure: components, flow, bridges, health score",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := analyzeSource(cmd, args)
		if err != nil {
			return err
		}

		config := &graph.AnalyzerConfig{
			HubThreshold: cfg.Analyze.HubThreshold,
			TopN:         cfg.Analyze.TopN,
		}
		if cmd.Flags().Changed("hub-threshold") {
			config.HubThreshold = analyzeHubThreshold
		}
		if cmd.Flags().Changed("top-n") {
			config.TopN = analyzeTopN
		}

		snap := graph.NewSnapshot(res)
		analysis := graph.Analyze(snap, config)

		if analyzeJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		}

		printHumanReadable(cmd.OutOrStdout(), analysis)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output as JSON")
	analyzeCmd.Flags().StringVar(&analyzeScan, "scan", "", "Analyze a stored scan (id or prefix) instead of a file")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 20, "Number of top items to show per section (0 or less shows all)")
	analyzeCmd.Flags().IntVar(&analyzeHubThreshold, "hub-threshold", 8, "Minimum degree to consider a node a hub")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeSource loads either the file argument or the --scan stored result
func analyzeSource(cmd *cobra.Command, args []string) (*patch.Result, error) {
	switch {
	case analyzeScan != "" && len(args) > 0:
		return nil, fmt.Errorf("give either a file or --scan, not both")
	case analyzeScan != "":
		d, err := OpenDatabase()
		if err != nil {
			return nil, err
		}
		defer d.Close()

		id, err := d.ResolveScanID(cmd.Context(), analyzeScan)
		if err != nil {
			return nil, err
		}
		return d.LoadScan(cmd.Context(), id)
	case len(args) == 1:
		return loadPatch(args[0])
	default:
		return nil, fmt.Errorf("Usage: patchscan analyze <file.pd> | --scan <id>")
	}
}

func printHumanReadable(w io.Writer, report *graph.AnalysisReport) {
	barLen := int(report.HealthScore * 20)
	if barLen > 20 {
		barLen = 20
	}
	bar := strings.Repeat("█", barLen) + strings.Repeat("░", 20-barLen)
	fmt.Fprintf(w, "\n  %s  [%s]\n", healthStyle.Render(fmt.Sprintf("Patch Health: %.0f%%", report.HealthScore*100)), bar)
	fmt.Fprintf(w, "  breakdown: connectivity=%.2f components=%.2f resolution=%.2f fragility=%.2f\n\n",
		report.HealthBreakdown.Connectivity,
		report.HealthBreakdown.Components,
		report.HealthBreakdown.Resolution,
		report.HealthBreakdown.Fragility)

	t := report.Topology
	section(w, "TOPOLOGY")
	fmt.Fprintf(w, "  Objects: %d  Connections: %d  Components: %d\n", t.TotalNodes, t.TotalEdges, t.NumComponents)
	fmt.Fprintf(w, "  Largest component: %d  Smallest: %d\n", t.LargestComponent, t.SmallestComponent)
	if t.UnresolvedEdges > 0 {
		fmt.Fprintf(w, "  Connections naming a missing object: %d\n", t.UnresolvedEdges)
	}
	if t.OrphanCount > 0 {
		fmt.Fprintf(w, "  Unconnected objects: %d %v\n", t.OrphanCount, t.OrphanIDs)
	}

	if len(t.Kinds) > 0 {
		kinds := make([]string, 0, len(t.Kinds))
		for k := range t.Kinds {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		parts := make([]string, len(kinds))
		for i, k := range kinds {
			parts[i] = fmt.Sprintf("%s=%d", k, t.Kinds[k])
		}
		fmt.Fprintf(w, "  Record kinds: %s\n", strings.Join(parts, " "))
	}

	fmt.Fprintln(w, "\n  Degree distribution:")
	for _, b := range t.DegreeHistogram {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			fmt.Fprintf(w, "    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}

	if len(t.Hubs) > 0 {
		fmt.Fprintln(w, "\n  Top hubs (degree > threshold):")
		for _, hub := range t.Hubs {
			fmt.Fprintf(w, "    %d degree=%d (in=%d, out=%d)  %s\n",
				hub.ID, hub.Degree, hub.InDegree, hub.OutDegree, truncContent(hub.Content, 40))
		}
	}

	f := report.Flow
	fmt.Fprintln(w)
	section(w, "SIGNAL FLOW")
	fmt.Fprintf(w, "  Sources: %v\n  Sinks: %v\n", f.Sources, f.Sinks)
	if f.MaxFanOut != nil {
		fmt.Fprintf(w, "  Busiest outlet: %d (out %d) feeds %d\n", f.MaxFanOut.NodeID, f.MaxFanOut.Port, f.MaxFanOut.Count)
	}
	if f.MaxFanIn != nil {
		fmt.Fprintf(w, "  Busiest inlet: %d (in %d) fed by %d\n", f.MaxFanIn.NodeID, f.MaxFanIn.Port, f.MaxFanIn.Count)
	}
	if f.SelfConnections > 0 {
		fmt.Fprintf(w, "  Self connections: %d\n", f.SelfConnections)
	}
	if len(f.CyclicNodes) > 0 {
		fmt.Fprintf(w, "  Objects on or behind a feedback loop: %v\n", f.CyclicNodes)
	}

	br := report.Bridges
	if br.APCount > 0 || br.BridgeCount > 0 {
		fmt.Fprintln(w)
		section(w, "STRUCTURAL FRAGILITY")
		if br.APCount > 0 {
			fmt.Fprintf(w, "  %d articulation points (removal splits the patch):\n", br.APCount)
			for _, ap := range br.ArticulationPoints[:min(len(br.ArticulationPoints), 10)] {
				fmt.Fprintf(w, "    %d (degree %d)  %s\n", ap.ID, ap.Degree, truncContent(ap.Content, 40))
			}
		}
		if br.BridgeCount > 0 {
			fmt.Fprintf(w, "  %d single-cord links (removal splits the patch):\n", br.BridgeCount)
			for _, be := range br.BridgeEdges[:min(len(br.BridgeEdges), 10)] {
				fmt.Fprintf(w, "    %s -- %s\n", truncContent(be.SourceContent, 30), truncContent(be.TargetContent, 30))
			}
		}
	}

	fmt.Fprintln(w)
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "  %s\n", sectionStyle.Render(title))
	fmt.Fprintln(w, "  ────────────────────────────────────────")
}

func truncContent(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
