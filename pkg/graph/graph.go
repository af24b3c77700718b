package graph

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/proteograph/pint/pkg/structure"
)

// Node is a graph node holding named feature vectors. Scalar features are
// stored as length-1 vectors. Exactly one of Residue or Atom is set,
// depending on the graph resolution.
type Node struct {
	Key      string
	Residue  *structure.Residue
	Atom     *structure.Atom
	Features map[string][]float64
}

// SetScalar stores a scalar feature on the node.
func (n *Node) SetScalar(name string, value float64) {
	if n.Features == nil {
		n.Features = map[string][]float64{}
	}
	n.Features[name] = []float64{value}
}

// Edge connects two nodes by key and holds named feature vectors.
type Edge struct {
	Key1     string
	Key2     string
	Features map[string][]float64
}

// SetScalar stores a scalar feature on the edge.
func (e *Edge) SetScalar(name string, value float64) {
	if e.Features == nil {
		e.Features = map[string][]float64{}
	}
	e.Features[name] = []float64{value}
}

// Graph is one featurized entry: an interface or variant neighborhood
// converted to nodes and edges, with its named target values.
type Graph struct {
	ID      string
	Targets map[string]float64

	nodes map[string]*Node
	edges map[[2]string]*Edge
	order []string
}

// New creates an empty graph with the given id and targets.
func New(id string, targets map[string]float64) *Graph {
	if targets == nil {
		targets = map[string]float64{}
	}
	return &Graph{
		ID:      id,
		Targets: targets,
		nodes:   map[string]*Node{},
		edges:   map[[2]string]*Edge{},
	}
}

// AddNode registers a node, replacing any previous node with the same key.
func (g *Graph) AddNode(n *Node) {
	if n.Features == nil {
		n.Features = map[string][]float64{}
	}
	if _, ok := g.nodes[n.Key]; !ok {
		g.order = append(g.order, n.Key)
	}
	g.nodes[n.Key] = n
}

// Node returns the node with the given key, or nil.
func (g *Graph) Node(key string) *Node {
	return g.nodes[key]
}

// AddEdge registers an edge. Unknown endpoints create empty nodes so the
// graph stays consistent.
func (g *Graph) AddEdge(e *Edge) {
	if e.Features == nil {
		e.Features = map[string][]float64{}
	}
	for _, key := range []string{e.Key1, e.Key2} {
		if _, ok := g.nodes[key]; !ok {
			g.AddNode(&Node{Key: key, Features: map[string][]float64{}})
		}
	}
	g.edges[edgeKey(e.Key1, e.Key2)] = e
}

// Edge returns the edge between two keys regardless of direction, or nil.
func (g *Graph) Edge(key1, key2 string) *Edge {
	return g.edges[edgeKey(key1, key2)]
}

// edgeKey normalizes the undirected edge identity.
func edgeKey(key1, key2 string) [2]string {
	if key2 < key1 {
		key1, key2 = key2, key1
	}
	return [2]string{key1, key2}
}

// Nodes returns the nodes in deterministic order, sorted by key.
func (g *Graph) Nodes() []*Node {
	keys := make([]string, len(g.order))
	copy(keys, g.order)
	sort.Strings(keys)

	nodes := make([]*Node, 0, len(keys))
	for _, k := range keys {
		nodes = append(nodes, g.nodes[k])
	}
	return nodes
}

// Edges returns the edges in deterministic order.
func (g *Graph) Edges() []*Edge {
	keys := make([][2]string, 0, len(g.edges))
	for k := range g.edges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	edges := make([]*Edge, 0, len(keys))
	for _, k := range keys {
		edges = append(edges, g.edges[k])
	}
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Centroid returns the mean position over all residue or atom nodes.
func (g *Graph) Centroid() (structure.Position, error) {
	if len(g.nodes) == 0 {
		return structure.Position{}, errors.Errorf("graph %s has no nodes", g.ID)
	}

	var c structure.Position
	n := 0
	for _, node := range g.nodes {
		var p structure.Position
		switch {
		case node.Atom != nil:
			p = node.Atom.Position
		case node.Residue != nil:
			var err error
			p, err = node.Residue.Centroid()
			if err != nil {
				return structure.Position{}, err
			}
		default:
			continue
		}
		c[0] += p[0]
		c[1] += p[1]
		c[2] += p[2]
		n++
	}
	if n == 0 {
		return structure.Position{}, errors.Errorf("graph %s has no positioned nodes", g.ID)
	}
	return structure.Position{c[0] / float64(n), c[1] / float64(n), c[2] / float64(n)}, nil
}
