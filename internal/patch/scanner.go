package patch

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Introducer marks a line as patch structure rather than free text.
const Introducer = "#X"

// connectPattern is tested before the introducer prefix. Anything after the
// terminating ';' is not inspected.
var connectPattern = regexp.MustCompile(`^#X\s+connect\s+(\d+)\s+(\d+)\s+(\d+)\s+(\d+);`)

// scanState is the per-call accumulator. It never outlives one scan.
type scanState struct {
	nodes       []Node
	connections []Connection
}

// Scan classifies lines into connection records, node records and ignored
// lines in a single pass. It is a pure function of its input.
func Scan(lines []string) *Result {
	s := &scanState{}
	for i, line := range lines {
		s.feed(i+1, line)
	}
	return s.result()
}

func (s *scanState) feed(lineNo int, raw string) {
	line := strings.TrimSpace(raw)

	if c, ok := parseConnection(line); ok {
		c.Line = lineNo
		s.connections = append(s.connections, c)
		return
	}

	if strings.HasPrefix(line, Introducer) {
		s.nodes = append(s.nodes, Node{
			ID:      len(s.nodes),
			Line:    lineNo,
			Content: nodeContent(line),
		})
	}
}

func (s *scanState) result() *Result {
	if s.nodes == nil {
		s.nodes = []Node{}
	}
	if s.connections == nil {
		s.connections = []Connection{}
	}
	return &Result{Nodes: s.nodes, Connections: s.connections}
}

// parseConnection matches a trimmed line against the connect shape.
// Numbers that overflow int are treated as a failed match.
func parseConnection(line string) (Connection, bool) {
	m := connectPattern.FindStringSubmatch(line)
	if m == nil {
		return Connection{}, false
	}

	var fields [4]int
	for i := range fields {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Connection{}, false
		}
		fields[i] = v
	}

	return Connection{
		SourceNode: fields[0],
		SourcePort: fields[1],
		DestNode:   fields[2],
		DestPort:   fields[3],
		Raw:        line,
	}, true
}

// nodeContent drops the introducer plus the one character after it, then trims.
func nodeContent(line string) string {
	rest := line[len(Introducer):]
	if rest == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(rest)
	return strings.TrimSpace(rest[size:])
}
