package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/comalice/motionchart"
	"github.com/comalice/motionchart/internal/primitives"
)

// DefaultVisualizer renders graph configs as Graphviz DOT or JSON.
type DefaultVisualizer struct{}

// nodeColors fills nodes by type.
var nodeColors = map[string]string{
	"idle":     "lightgrey",
	"start":    "lightyellow",
	"standard": "white",
	"end":      "lightyellow",
	"single":   "lightblue",
}

// ExportDOT generates Graphviz DOT source for the motion graph. Nodes are
// clustered by action; current is highlighted when set. Graph edges are
// solid, action sequence steps dashed.
func (v *DefaultVisualizer) ExportDOT(config *primitives.GraphConfig, current motionchart.NodeID) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", config.ID)
	buf.WriteString(`  rankdir=LR;
  node [shape=box, fontsize=10, style="rounded,filled"];
  edge [fontsize=9];
`)

	active := ""
	if !current.IsZero() {
		active = current.String()
	}
	for _, cluster := range groupByAction(config) {
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+cluster.action)
		fmt.Fprintf(&buf, "    label=%q;\n", cluster.action)
		for _, name := range cluster.nodes {
			renderNode(&buf, name, config.Nodes[name], name == config.Idle, name == active)
		}
		buf.WriteString("  }\n")
	}

	for _, edge := range collectEdges(config) {
		if edge.Label == "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", edge.From, edge.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q style=dashed];\n", edge.From, edge.To, edge.Label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the graph config to JSON.
func (v *DefaultVisualizer) ExportJSON(config *primitives.GraphConfig) ([]byte, error) {
	return json.MarshalIndent(config, "", "  ")
}

func renderNode(buf *bytes.Buffer, name string, n *primitives.NodeConfig, idle, active bool) {
	primitive := name[strings.IndexByte(name, ':')+1:]
	label := fmt.Sprintf("%s\n(%s, %d)", primitive, n.Type, n.Clip.Frames)
	color := nodeColors[strings.ToLower(n.Type)]
	if active {
		color = "lightgreen"
	}
	attrs := fmt.Sprintf("label=%q fillcolor=%s", label, color)
	if idle {
		attrs += " peripheries=2"
	}
	fmt.Fprintf(buf, "    %q [%s];\n", name, attrs)
}

type actionCluster struct {
	action string
	nodes  []string
}

// groupByAction buckets node names by their action prefix, both sorted.
func groupByAction(config *primitives.GraphConfig) []actionCluster {
	byAction := make(map[string][]string)
	for name := range config.Nodes {
		id, err := motionchart.ParseNodeID(name)
		if err != nil {
			continue
		}
		byAction[id.Action] = append(byAction[id.Action], name)
	}
	clusters := make([]actionCluster, 0, len(byAction))
	for action, nodes := range byAction {
		sort.Strings(nodes)
		clusters = append(clusters, actionCluster{action: action, nodes: nodes})
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].action < clusters[j].action })
	return clusters
}

// Edge is one rendered arrow. Action step edges carry the action as label.
type Edge struct {
	From  string
	To    string
	Label string
}

// collectEdges collects graph edges followed by action sequence edges, in a
// stable order.
func collectEdges(config *primitives.GraphConfig) []Edge {
	var edges []Edge
	names := make([]string, 0, len(config.Nodes))
	for name := range config.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, target := range config.Nodes[name].To {
			if _, ok := config.Nodes[target]; ok {
				edges = append(edges, Edge{From: name, To: target})
			}
		}
	}

	actions := make([]string, 0, len(config.Actions))
	for name := range config.Actions {
		actions = append(actions, name)
	}
	sort.Strings(actions)
	for _, action := range actions {
		prev := config.Idle
		for _, step := range config.Actions[action].Sequence {
			node := step
			if !strings.Contains(step, ":") {
				node = action + ":" + step
			}
			if _, ok := config.Nodes[node]; !ok {
				continue
			}
			edges = append(edges, Edge{From: prev, To: node, Label: action})
			prev = node
		}
	}
	return edges
}
