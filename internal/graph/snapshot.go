package graph

import (
	"sort"
	"strings"

	"mycelica/patchscan/internal/patch"
)

// NodeInfo is a node record as the analyzers see it
type NodeInfo struct {
	ID      int
	Line    int
	Kind    string // first word of the content: "obj", "msg", "floatatom", ...
	Content string
}

// EdgeInfo is one connection record
type EdgeInfo struct {
	Line       int
	Source     int
	SourcePort int
	Target     int
	TargetPort int
}

// GraphSnapshot holds a scanned patch with precomputed adjacency lists
type GraphSnapshot struct {
	Nodes      map[int]*NodeInfo
	Edges      []EdgeInfo
	Adj        map[int][]int // undirected
	OutAdj     map[int][]int // directed: source -> targets
	InAdj      map[int][]int // directed: target -> sources
	Unresolved int           // edges with an endpoint that has no node record
}

// NewSnapshot builds a GraphSnapshot from a scan result. Edges whose
// endpoints are not both known stay in Edges but are left out of adjacency.
func NewSnapshot(res *patch.Result) *GraphSnapshot {
	nodes := make([]*NodeInfo, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		nodes = append(nodes, &NodeInfo{
			ID:      n.ID,
			Line:    n.Line,
			Kind:    kindOf(n.Content),
			Content: n.Content,
		})
	}

	edges := make([]EdgeInfo, 0, len(res.Connections))
	for _, c := range res.Connections {
		edges = append(edges, EdgeInfo{
			Line:       c.Line,
			Source:     c.SourceNode,
			SourcePort: c.SourcePort,
			Target:     c.DestNode,
			TargetPort: c.DestPort,
		})
	}

	return buildSnapshot(nodes, edges)
}

func buildSnapshot(nodes []*NodeInfo, edges []EdgeInfo) *GraphSnapshot {
	nodeMap := make(map[int]*NodeInfo, len(nodes))
	adj := make(map[int][]int)
	outAdj := make(map[int][]int)
	inAdj := make(map[int][]int)

	for _, n := range nodes {
		nodeMap[n.ID] = n
		adj[n.ID] = nil // ensure entry exists
		outAdj[n.ID] = nil
		inAdj[n.ID] = nil
	}

	unresolved := 0
	for _, e := range edges {
		_, okS := nodeMap[e.Source]
		_, okT := nodeMap[e.Target]
		if !okS || !okT {
			unresolved++
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
		outAdj[e.Source] = append(outAdj[e.Source], e.Target)
		inAdj[e.Target] = append(inAdj[e.Target], e.Source)
	}

	return &GraphSnapshot{
		Nodes:      nodeMap,
		Edges:      edges,
		Adj:        adj,
		OutAdj:     outAdj,
		InAdj:      inAdj,
		Unresolved: unresolved,
	}
}

// NodeIDs returns all node ids in ascending order
func (s *GraphSnapshot) NodeIDs() []int {
	ids := make([]int, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Resolved reports whether both endpoints of e have node records
func (s *GraphSnapshot) Resolved(e EdgeInfo) bool {
	_, okS := s.Nodes[e.Source]
	_, okT := s.Nodes[e.Target]
	return okS && okT
}

func kindOf(content string) string {
	if i := strings.IndexAny(content, " \t;"); i >= 0 {
		return content[:i]
	}
	return content
}
