package graph

// ArticulationPoint is a node whose removal splits its component
type ArticulationPoint struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Degree  int    `json:"degree"`
}

// BridgeEdge is a single connection whose removal splits its component
type BridgeEdge struct {
	SourceID      int    `json:"source_id"`
	TargetID      int    `json:"target_id"`
	SourceContent string `json:"source_content"`
	TargetContent string `json:"target_content"`
}

// BridgeReport contains bridge analysis results
type BridgeReport struct {
	ArticulationPoints []ArticulationPoint `json:"articulation_points"`
	BridgeEdges        []BridgeEdge        `json:"bridge_edges"`
	APCount            int                 `json:"ap_count"`
	BridgeCount        int                 `json:"bridge_count"`
}

// ComputeBridges finds articulation points and bridge edges on the
// undirected view of the patch. Parallel connections between the same two
// nodes never form a bridge.
func ComputeBridges(snap *GraphSnapshot) *BridgeReport {
	if len(snap.Nodes) == 0 {
		return &BridgeReport{}
	}

	nodeIDs := snap.NodeIDs()
	idToIdx := make(map[int]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idToIdx[id] = i
	}
	n := len(nodeIDs)

	// Deduplicated undirected adjacency (as indices), remembering multiplicity
	adjIdx := make([][]int, n)
	type edgePair struct{ u, v int }
	multiplicity := make(map[edgePair]int)

	for _, e := range snap.Edges {
		u, okU := idToIdx[e.Source]
		v, okV := idToIdx[e.Target]
		if !okU || !okV || u == v {
			continue
		}
		key := edgePair{u, v}
		if u > v {
			key = edgePair{v, u}
		}
		if multiplicity[key] == 0 {
			adjIdx[u] = append(adjIdx[u], v)
			adjIdx[v] = append(adjIdx[v], u)
		}
		multiplicity[key]++
	}

	disc := make([]int, n)
	low := make([]int, n)
	visited := make([]bool, n)
	isAP := make([]bool, n)
	var bridgePairs [][2]int
	counter := 1

	const noParent = -1

	// Iterative Tarjan for each connected component
	type frame struct {
		node, parent, ni int
	}

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}

		visited[start] = true
		disc[start] = counter
		low[start] = counter
		counter++

		stack := []frame{{start, noParent, 0}}
		rootChildren := 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			node := top.node
			parent := top.parent

			if top.ni < len(adjIdx[node]) {
				child := adjIdx[node][top.ni]
				top.ni++

				if child == parent {
					continue
				}

				if visited[child] {
					// Back edge
					if disc[child] < low[node] {
						low[node] = disc[child]
					}
				} else {
					visited[child] = true
					disc[child] = counter
					low[child] = counter
					counter++

					if node == start {
						rootChildren++
					}

					stack = append(stack, frame{child, node, 0})
				}
			} else {
				stack = stack[:len(stack)-1]

				if len(stack) > 0 {
					pn := stack[len(stack)-1].node

					if low[node] < low[pn] {
						low[pn] = low[node]
					}

					if low[node] > disc[pn] {
						bridgePairs = append(bridgePairs, [2]int{pn, node})
					}

					if pn != start && low[node] >= disc[pn] {
						isAP[pn] = true
					}
				}
			}
		}

		if rootChildren >= 2 {
			isAP[start] = true
		}
	}

	var aps []ArticulationPoint
	for i := 0; i < n; i++ {
		if isAP[i] {
			id := nodeIDs[i]
			aps = append(aps, ArticulationPoint{
				ID:      id,
				Content: snap.Nodes[id].Content,
				Degree:  len(adjIdx[i]),
			})
		}
	}

	var bridges []BridgeEdge
	for _, pair := range bridgePairs {
		key := edgePair{pair[0], pair[1]}
		if key.u > key.v {
			key = edgePair{key.v, key.u}
		}
		if multiplicity[key] > 1 {
			continue
		}
		uid := nodeIDs[pair[0]]
		vid := nodeIDs[pair[1]]
		bridges = append(bridges, BridgeEdge{
			SourceID:      uid,
			TargetID:      vid,
			SourceContent: snap.Nodes[uid].Content,
			TargetContent: snap.Nodes[vid].Content,
		})
	}

	return &BridgeReport{
		ArticulationPoints: aps,
		BridgeEdges:        bridges,
		APCount:            len(aps),
		BridgeCount:        len(bridges),
	}
}
