package patch

// Node is one "#X" declaration that is not a well-formed connect record
type Node struct {
	ID      int    `json:"id" yaml:"id"`           // rank among node records, 0-based
	Line    int    `json:"line" yaml:"line"`       // 1-based line in the raw input
	Content string `json:"content" yaml:"content"` // "obj 10 20 osc~ 440;"
}

// Connection is one "#X connect <src> <outlet> <dst> <inlet>;" record.
// SourceNode and DestNode are taken as written; they are not checked
// against the node list.
type Connection struct {
	Line       int    `json:"line" yaml:"line"`
	SourceNode int    `json:"source_node" yaml:"source_node"`
	SourcePort int    `json:"source_port" yaml:"source_port"`
	DestNode   int    `json:"dest_node" yaml:"dest_node"`
	DestPort   int    `json:"dest_port" yaml:"dest_port"`
	Raw        string `json:"raw" yaml:"raw"`
}

// Result holds both record sequences in input order
type Result struct {
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// NodeByID returns the node with the given id, or nil. Ids are positional,
// so this is an index lookup.
func (r *Result) NodeByID(id int) *Node {
	if id < 0 || id >= len(r.Nodes) {
		return nil
	}
	return &r.Nodes[id]
}
