package graph

// PortLoad is the busiest outlet or inlet in the patch
type PortLoad struct {
	NodeID int `json:"node_id"`
	Port   int `json:"port"`
	Count  int `json:"count"`
}

// FlowReport describes the directed shape of the patch
type FlowReport struct {
	Sources         []int     `json:"sources"`          // outbound only
	Sinks           []int     `json:"sinks"`            // inbound only
	SelfConnections int       `json:"self_connections"` // outlet wired back into the same node
	CyclicNodes     []int     `json:"cyclic_nodes"`     // on a directed cycle or fed through one
	MaxFanOut       *PortLoad `json:"max_fan_out"`
	MaxFanIn        *PortLoad `json:"max_fan_in"`
}

// ComputeFlow finds sources, sinks, port fan-out/fan-in and nodes caught in
// directed cycles (Kahn's algorithm leftovers).
func ComputeFlow(snap *GraphSnapshot) *FlowReport {
	report := &FlowReport{}
	if len(snap.Nodes) == 0 {
		return report
	}

	type port struct{ node, port int }
	outLoad := make(map[port]int)
	inLoad := make(map[port]int)
	for _, e := range snap.Edges {
		if !snap.Resolved(e) {
			continue
		}
		if e.Source == e.Target {
			report.SelfConnections++
		}
		outLoad[port{e.Source, e.SourcePort}]++
		inLoad[port{e.Target, e.TargetPort}]++
	}

	busiest := func(loads map[port]int) *PortLoad {
		var best *PortLoad
		for p, count := range loads {
			if best == nil || count > best.Count ||
				(count == best.Count && (p.node < best.NodeID || (p.node == best.NodeID && p.port < best.Port))) {
				best = &PortLoad{NodeID: p.node, Port: p.port, Count: count}
			}
		}
		return best
	}
	report.MaxFanOut = busiest(outLoad)
	report.MaxFanIn = busiest(inLoad)

	nodeIDs := snap.NodeIDs()
	inDegree := make(map[int]int, len(nodeIDs))
	for _, id := range nodeIDs {
		in, out := len(snap.InAdj[id]), len(snap.OutAdj[id])
		inDegree[id] = in
		switch {
		case in == 0 && out > 0:
			report.Sources = append(report.Sources, id)
		case in > 0 && out == 0:
			report.Sinks = append(report.Sinks, id)
		}
	}

	var queue []int
	for _, id := range nodeIDs {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range snap.OutAdj[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	for _, id := range nodeIDs {
		if inDegree[id] > 0 {
			report.CyclicNodes = append(report.CyclicNodes, id)
		}
	}
	return report
}
