package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"mycelica/patchscan/internal/patch"
)

// ErrUnknownFormat is returned by Encode for anything but text, json or yaml
var ErrUnknownFormat = errors.New("unknown output format")

// Output formats accepted by Encode
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// unknownNode is printed in the resolved listing for ids with no node record
const unknownNode = "UNKNOWN"

// WriteInventory writes the header, the object section and the connection section
func WriteInventory(w io.Writer, res *patch.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Found %d objects and %d connections.\n", len(res.Nodes), len(res.Connections))

	fmt.Fprintln(bw, "\n--- Objects ---")
	for _, n := range res.Nodes {
		fmt.Fprintf(bw, "ID %d: %s (Line %d)\n", n.ID, n.Content, n.Line)
	}

	fmt.Fprintln(bw, "\n--- Connections ---")
	for _, c := range res.Connections {
		fmt.Fprintf(bw, "Line %d: %d (out %d) -> %d (in %d)\n",
			c.Line, c.SourceNode, c.SourcePort, c.DestNode, c.DestPort)
	}

	return bw.Flush()
}

// WriteResolved lists every connection with both endpoints looked up by id.
// An id with no node prints as UNKNOWN; nothing is rejected.
func WriteResolved(w io.Writer, res *patch.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "\n--- Resolved Connections ---")
	for _, c := range res.Connections {
		fmt.Fprintf(bw, "%d (%s) [%d] -> %d (%s) [%d]\n",
			c.SourceNode, describe(res, c.SourceNode), c.SourcePort,
			c.DestNode, describe(res, c.DestNode), c.DestPort)
	}

	return bw.Flush()
}

func describe(res *patch.Result, id int) string {
	if n := res.NodeByID(id); n != nil {
		return n.Content
	}
	return unknownNode
}

// Encode writes res in the requested format. Text output is the inventory.
func Encode(w io.Writer, res *patch.Result, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return WriteInventory(w, res)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q (want text, json or yaml)", ErrUnknownFormat, format)
	}
}
