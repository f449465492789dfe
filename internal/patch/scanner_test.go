package patch

import (
	"reflect"
	"testing"
)

func TestScan_SingleObject(t *testing.T) {
	res := Scan([]string{"#X obj 10 20 osc~ 440;"})
	if len(res.Nodes) != 1 || len(res.Connections) != 0 {
		t.Fatalf("expected 1 node and 0 connections, got %d and %d", len(res.Nodes), len(res.Connections))
	}
	n := res.Nodes[0]
	if n.ID != 0 || n.Line != 1 || n.Content != "obj 10 20 osc~ 440;" {
		t.Errorf("unexpected node: %+v", n)
	}
}

func TestScan_SingleConnection(t *testing.T) {
	res := Scan([]string{"#X connect 0 0 1 0;"})
	if len(res.Nodes) != 0 {
		t.Fatalf("connect line must not produce a node, got %+v", res.Nodes)
	}
	if len(res.Connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(res.Connections))
	}
	want := Connection{Line: 1, SourceNode: 0, SourcePort: 0, DestNode: 1, DestPort: 0, Raw: "#X connect 0 0 1 0;"}
	if res.Connections[0] != want {
		t.Errorf("got %+v, want %+v", res.Connections[0], want)
	}
}

func TestScan_TwoObjectsThenConnection(t *testing.T) {
	res := Scan([]string{
		"#X obj 10 10 metro 500;",
		"#X obj 10 40 bng 15 250 50 0 empty empty empty 17 7 0 10 #fcfcfc #000000 #000000;",
		"#X connect 0 0 1 0;",
	})
	if len(res.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(res.Nodes))
	}
	if res.Nodes[0].ID != 0 || res.Nodes[1].ID != 1 {
		t.Errorf("expected ids 0 and 1, got %d and %d", res.Nodes[0].ID, res.Nodes[1].ID)
	}
	if len(res.Connections) != 1 || res.Connections[0].Line != 3 {
		t.Errorf("expected one connection on line 3, got %+v", res.Connections)
	}
}

func TestScan_IgnoredLinesKeepCounters(t *testing.T) {
	res := Scan([]string{
		"#N canvas 0 50 450 300 12;",
		"",
		"   ",
		"just a comment",
		"#X obj 1 1 dac~;",
		"#A set 0 0 0;",
		"#X msg 1 1 bang;",
	})
	if len(res.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d: %+v", len(res.Nodes), res.Nodes)
	}
	if res.Nodes[0].ID != 0 || res.Nodes[0].Line != 5 {
		t.Errorf("first node: got %+v", res.Nodes[0])
	}
	if res.Nodes[1].ID != 1 || res.Nodes[1].Line != 7 {
		t.Errorf("second node: got %+v", res.Nodes[1])
	}
}

func TestScan_Classification(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantNode    bool
		wantContent string
		wantConn    *Connection
	}{
		{
			name:        "object with trailing separator",
			line:        "#X obj 10 20 osc~ 440;",
			wantNode:    true,
			wantContent: "obj 10 20 osc~ 440;",
		},
		{
			name:        "leading and trailing whitespace trimmed",
			line:        "\t  #X msg 5 5 440;  \r",
			wantNode:    true,
			wantContent: "msg 5 5 440;",
		},
		{
			name:     "connect with extra spaces",
			line:     "#X connect  12   3 4  1;",
			wantConn: &Connection{SourceNode: 12, SourcePort: 3, DestNode: 4, DestPort: 1, Raw: "#X connect  12   3 4  1;"},
		},
		{
			name:     "connect with trailing text after terminator",
			line:     "#X connect 1 0 2 1; trailing",
			wantConn: &Connection{SourceNode: 1, SourcePort: 0, DestNode: 2, DestPort: 1, Raw: "#X connect 1 0 2 1; trailing"},
		},
		{
			name:        "connect with three integers falls through to node",
			line:        "#X connect 0 0 1;",
			wantNode:    true,
			wantContent: "connect 0 0 1;",
		},
		{
			name:        "connect with five integers falls through to node",
			line:        "#X connect 0 0 1 0 7;",
			wantNode:    true,
			wantContent: "connect 0 0 1 0 7;",
		},
		{
			name:        "connect without terminator falls through to node",
			line:        "#X connect 0 0 1 0",
			wantNode:    true,
			wantContent: "connect 0 0 1 0",
		},
		{
			name:        "negative integer falls through to node",
			line:        "#X connect -1 0 1 0;",
			wantNode:    true,
			wantContent: "connect -1 0 1 0;",
		},
		{
			name:        "integer overflow falls through to node",
			line:        "#X connect 99999999999999999999999 0 1 0;",
			wantNode:    true,
			wantContent: "connect 99999999999999999999999 0 1 0;",
		},
		{
			name:        "restore is a node record",
			line:        "#X restore 100 100 pd sub;",
			wantNode:    true,
			wantContent: "restore 100 100 pd sub;",
		},
		{
			name:        "bare introducer",
			line:        "#X",
			wantNode:    true,
			wantContent: "",
		},
		{
			name:        "one character after introducer is always dropped",
			line:        "#Xobj 1 2;",
			wantNode:    true,
			wantContent: "bj 1 2;",
		},
		{
			name: "canvas header ignored",
			line: "#N canvas 0 0 450 300 12;",
		},
		{
			name: "introducer not at start ignored",
			line: "foo #X obj 1 1 f;",
		},
		{
			name: "lowercase introducer ignored",
			line: "#x obj 1 1 f;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Scan([]string{tt.line})

			if tt.wantNode {
				if len(res.Nodes) != 1 {
					t.Fatalf("expected 1 node, got %d", len(res.Nodes))
				}
				if res.Nodes[0].Content != tt.wantContent {
					t.Errorf("content: got %q, want %q", res.Nodes[0].Content, tt.wantContent)
				}
			} else if len(res.Nodes) != 0 {
				t.Errorf("expected no nodes, got %+v", res.Nodes)
			}

			if tt.wantConn != nil {
				if len(res.Connections) != 1 {
					t.Fatalf("expected 1 connection, got %d", len(res.Connections))
				}
				want := *tt.wantConn
				want.Line = 1
				if res.Connections[0] != want {
					t.Errorf("got %+v, want %+v", res.Connections[0], want)
				}
			} else if len(res.Connections) != 0 {
				t.Errorf("expected no connections, got %+v", res.Connections)
			}
		})
	}
}

func TestScan_IdentityIsPositional(t *testing.T) {
	res := Scan([]string{"#X obj 0 0 f;", "#X obj 0 0 f;"})
	if len(res.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(res.Nodes))
	}
	if res.Nodes[0].ID == res.Nodes[1].ID {
		t.Errorf("identical content must get distinct ids, both got %d", res.Nodes[0].ID)
	}
}

func TestScan_ConnectionsDoNotAdvanceNodeIDs(t *testing.T) {
	res := Scan([]string{
		"#X obj 0 0 a;",
		"#X connect 0 0 1 0;",
		"#X connect 0 0 1 0 9;",
		"#X obj 0 0 b;",
	})
	ids := []int{}
	for _, n := range res.Nodes {
		ids = append(ids, n.ID)
	}
	if !reflect.DeepEqual(ids, []int{0, 1, 2}) {
		t.Errorf("expected ids [0 1 2], got %v", ids)
	}
	if res.Nodes[1].Content != "connect 0 0 1 0 9;" {
		t.Errorf("malformed connect should be node 1, got %+v", res.Nodes[1])
	}
}

func TestScan_DanglingReferencesAccepted(t *testing.T) {
	res := Scan([]string{"#X connect 40 2 77 5;"})
	if len(res.Connections) != 1 {
		t.Fatalf("expected connection to be recorded without validation")
	}
	c := res.Connections[0]
	if c.SourceNode != 40 || c.DestNode != 77 {
		t.Errorf("ids must be kept as written, got %+v", c)
	}
}

func TestScan_EmptyInput(t *testing.T) {
	res := Scan(nil)
	if res.Nodes == nil || res.Connections == nil {
		t.Fatal("empty result should carry non-nil slices")
	}
	if len(res.Nodes) != 0 || len(res.Connections) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestScan_Idempotent(t *testing.T) {
	lines := []string{
		"#N canvas 0 0 450 300 12;",
		"#X obj 10 10 osc~ 220;",
		"#X obj 10 40 *~ 0.1;",
		"#X obj 10 70 dac~;",
		"#X connect 0 0 1 0;",
		"#X connect 1 0 2 0;",
		"#X connect 1 0 2 1;",
	}
	first := Scan(lines)
	second := Scan(lines)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("scans differ:\n%+v\n%+v", first, second)
	}
}

func TestResult_NodeByID(t *testing.T) {
	res := Scan([]string{"#X obj 0 0 a;", "#X obj 0 0 b;"})
	if n := res.NodeByID(1); n == nil || n.Content != "obj 0 0 b;" {
		t.Errorf("NodeByID(1): got %+v", n)
	}
	if n := res.NodeByID(2); n != nil {
		t.Errorf("NodeByID(2) should be nil, got %+v", n)
	}
	if n := res.NodeByID(-1); n != nil {
		t.Errorf("NodeByID(-1) should be nil, got %+v", n)
	}
}
