package models

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	pbmodels "github.com/ysongK/BayNet/pb/models"
)

// VariableType is the domain-side variable kind. Unlike the wire enum it is
// a closed set with an explicit unknown case: ordinals outside the schema
// map to VariableUnknown instead of leaking through as bare integers.
type VariableType int

const (
	VariableUnknown VariableType = iota
	VariableDiscrete
	VariableContinuous
	VariableMixed
)

func (t VariableType) String() string {
	switch t {
	case VariableDiscrete:
		return "discrete"
	case VariableContinuous:
		return "continuous"
	case VariableMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// VariableTypeFromProto maps a wire ordinal into the closed domain set.
func VariableTypeFromProto(t pbmodels.NodeType) VariableType {
	switch t {
	case pbmodels.NodeTypeDiscrete:
		return VariableDiscrete
	case pbmodels.NodeTypeContinuous:
		return VariableContinuous
	case pbmodels.NodeTypeMixed:
		return VariableMixed
	default:
		return VariableUnknown
	}
}

// Vertex is one random variable in a Network.
type Vertex struct {
	Name   string
	Type   VariableType
	Levels []string

	CPT *ConditionalProbabilityTable
	CPD *ConditionalProbabilityDistribution

	// Raw keeps the cpd_array payload of nodes this library has no parameter
	// model for (mixed or unknown variable types), so their data survives a
	// decode/encode pass.
	Raw *Tensor
	// rawType preserves the wire ordinal when Type is VariableUnknown.
	rawType pbmodels.NodeType
}

// Network is a directed acyclic graph of named random variables. Vertices
// keep insertion order; names are unique. Acyclicity is enforced on every
// edge insertion.
type Network struct {
	vertices []*Vertex
	index    map[string]int
	parents  map[string][]string
	children map[string][]string
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{
		index:    make(map[string]int),
		parents:  make(map[string][]string),
		children: make(map[string][]string),
	}
}

// AddVertex adds a variable with no parents. Duplicate names are rejected.
func (n *Network) AddVertex(name string) (*Vertex, error) {
	if name == "" {
		return nil, fmt.Errorf("vertex name must not be empty")
	}
	if _, exists := n.index[name]; exists {
		return nil, fmt.Errorf("vertex %q already exists", name)
	}
	v := &Vertex{Name: name}
	n.index[name] = len(n.vertices)
	n.vertices = append(n.vertices, v)
	return v, nil
}

// Vertex looks a variable up by name.
func (n *Network) Vertex(name string) (*Vertex, error) {
	i, ok := n.index[name]
	if !ok {
		return nil, fmt.Errorf("vertex %q not found", name)
	}
	return n.vertices[i], nil
}

// Vertices returns all variables in insertion order. The slice is shared;
// callers must not reorder it.
func (n *Network) Vertices() []*Vertex {
	return n.vertices
}

// Names returns all vertex names in insertion order.
func (n *Network) Names() []string {
	names := make([]string, len(n.vertices))
	for i, v := range n.vertices {
		names[i] = v.Name
	}
	return names
}

// Parents returns the ordered direct parents of a vertex.
func (n *Network) Parents(name string) []string {
	return append([]string(nil), n.parents[name]...)
}

// Children returns the ordered direct children of a vertex.
func (n *Network) Children(name string) []string {
	return append([]string(nil), n.children[name]...)
}

// AddEdge inserts the dependency edge from -> to. Both endpoints must exist,
// the edge must not already be present, and it must not close a cycle.
func (n *Network) AddEdge(from, to string) error {
	if _, ok := n.index[from]; !ok {
		return fmt.Errorf("vertex %q not found", from)
	}
	if _, ok := n.index[to]; !ok {
		return fmt.Errorf("vertex %q not found", to)
	}
	for _, p := range n.parents[to] {
		if p == from {
			return fmt.Errorf("edge %s -> %s already exists", from, to)
		}
	}
	if from == to || n.reachable(to, from) {
		return fmt.Errorf("edge %s -> %s would create a cycle", from, to)
	}
	n.parents[to] = append(n.parents[to], from)
	n.children[from] = append(n.children[from], to)
	return nil
}

// AddEdges inserts a batch of edges, failing on the first bad one.
func (n *Network) AddEdges(edges [][2]string) error {
	for _, e := range edges {
		if err := n.AddEdge(e[0], e[1]); err != nil {
			return err
		}
	}
	return nil
}

// reachable reports whether to can be reached from from along directed edges.
func (n *Network) reachable(from, to string) bool {
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true
		}
		for _, c := range n.children[cur] {
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}

// Edges returns all directed edges as (from, to) pairs, ordered by child
// insertion order.
func (n *Network) Edges() [][2]string {
	var edges [][2]string
	for _, v := range n.vertices {
		for _, p := range n.parents[v.Name] {
			edges = append(edges, [2]string{p, v.Name})
		}
	}
	return edges
}

// AreNeighbours reports whether an edge exists between a and b in either
// direction.
func (n *Network) AreNeighbours(a, b string) bool {
	for _, p := range n.parents[b] {
		if p == a {
			return true
		}
	}
	for _, p := range n.parents[a] {
		if p == b {
			return true
		}
	}
	return false
}

// Ancestors returns every vertex with a directed path into name, in vertex
// insertion order. The vertex itself is excluded.
func (n *Network) Ancestors(name string) ([]string, error) {
	return n.closure(name, n.parents)
}

// Descendants returns every vertex reachable from name, in vertex insertion
// order. The vertex itself is excluded.
func (n *Network) Descendants(name string) ([]string, error) {
	return n.closure(name, n.children)
}

func (n *Network) closure(name string, next map[string][]string) ([]string, error) {
	if _, ok := n.index[name]; !ok {
		return nil, fmt.Errorf("vertex %q not found", name)
	}
	seen := make(map[string]bool)
	stack := []string{name}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range next[cur] {
			if !seen[m] {
				seen[m] = true
				stack = append(stack, m)
			}
		}
	}
	delete(seen, name)
	out := make([]string, 0, len(seen))
	for _, v := range n.vertices {
		if seen[v.Name] {
			out = append(out, v.Name)
		}
	}
	return out, nil
}

// TopologicalOrder returns the vertex names so that every parent precedes
// its children. Insertion order breaks ties.
func (n *Network) TopologicalOrder() []string {
	indeg := make(map[string]int, len(n.vertices))
	for _, v := range n.vertices {
		indeg[v.Name] = len(n.parents[v.Name])
	}
	var order, ready []string
	for _, v := range n.vertices {
		if indeg[v.Name] == 0 {
			ready = append(ready, v.Name)
		}
	}
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)
		for _, c := range n.children[cur] {
			indeg[c]--
			if indeg[c] == 0 {
				ready = append(ready, c)
			}
		}
	}
	return order
}

// VStructures returns the colliders of the graph as (parent, collider,
// parent) triples with the parents in lexicographic order. Shielded
// colliders (parents connected by an edge) are only included when asked for.
func (n *Network) VStructures(includeShielded bool) [][3]string {
	var out [][3]string
	for _, v := range n.vertices {
		ps := n.parents[v.Name]
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				if !includeShielded && n.AreNeighbours(ps[i], ps[j]) {
					continue
				}
				a, b := ps[i], ps[j]
				if a > b {
					a, b = b, a
				}
				out = append(out, [3]string{a, v.Name, b})
			}
		}
	}
	return out
}

// AdjacencyMatrix returns the boolean adjacency matrix as 0/1 floats, rows
// and columns in vertex insertion order, entry (i, j) set when an edge
// i -> j exists. With skeleton set the matrix is symmetrized.
func (n *Network) AdjacencyMatrix(skeleton bool) *mat.Dense {
	size := len(n.vertices)
	m := mat.NewDense(size, size, nil)
	for child, ps := range n.parents {
		j := n.index[child]
		for _, p := range ps {
			i := n.index[p]
			m.Set(i, j, 1)
			if skeleton {
				m.Set(j, i, 1)
			}
		}
	}
	return m
}

// NetworkFromAdjacency builds a network from an adjacency matrix and vertex
// names; entry (i, j) nonzero means an edge names[i] -> names[j].
func NetworkFromAdjacency(m mat.Matrix, names []string) (*Network, error) {
	rows, cols := m.Dims()
	if rows != cols {
		return nil, fmt.Errorf("adjacency matrix must be square, got %dx%d", rows, cols)
	}
	if len(names) != rows {
		return nil, fmt.Errorf("got %d names for a %dx%d adjacency matrix", len(names), rows, cols)
	}
	n := NewNetwork()
	for _, name := range names {
		if _, err := n.AddVertex(name); err != nil {
			return nil, err
		}
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if m.At(i, j) != 0 {
				if err := n.AddEdge(names[i], names[j]); err != nil {
					return nil, err
				}
			}
		}
	}
	return n, nil
}

// NetworkFromModelstring parses a bnlearn-style modelstring such as
// "[A][B|C:D][C|D][D]" into a network.
func NetworkFromModelstring(modelstring string) (*Network, error) {
	blocks, err := modelstringBlocks(modelstring)
	if err != nil {
		return nil, err
	}
	n := NewNetwork()
	for _, name := range nodesSorted(blockNames(blocks)) {
		if _, err := n.AddVertex(name); err != nil {
			return nil, err
		}
	}
	for _, b := range blocks {
		for _, p := range b.parents {
			if err := n.AddEdge(p, b.name); err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}

// Modelstring renders the network in bnlearn modelstring form, vertices and
// parent lists sorted by name.
func (n *Network) Modelstring() string {
	var sb strings.Builder
	for _, name := range nodesSorted(n.Names()) {
		sb.WriteByte('[')
		sb.WriteString(name)
		if ps := n.parents[name]; len(ps) > 0 {
			sb.WriteByte('|')
			sb.WriteString(strings.Join(nodesSorted(ps), ":"))
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// Kind reports what the network's parameters make it: discrete, continuous,
// mixed, or unknown when no vertex carries parameters yet.
func (n *Network) Kind() VariableType {
	var discrete, continuous bool
	for _, v := range n.vertices {
		if v.CPT != nil {
			discrete = true
		}
		if v.CPD != nil {
			continuous = true
		}
	}
	switch {
	case discrete && continuous:
		return VariableMixed
	case discrete:
		return VariableDiscrete
	case continuous:
		return VariableContinuous
	default:
		return VariableUnknown
	}
}

type modelstringBlock struct {
	name    string
	parents []string
}

func modelstringBlocks(s string) ([]modelstringBlock, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("modelstring %q must be a sequence of [node|parent:parent] blocks", s)
	}
	var blocks []modelstringBlock
	for _, raw := range strings.Split(s[1:len(s)-1], "][") {
		name, parentPart, hasParents := strings.Cut(raw, "|")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("modelstring block %q has no node name", raw)
		}
		b := modelstringBlock{name: name}
		if hasParents {
			for _, p := range strings.Split(parentPart, ":") {
				p = strings.TrimSpace(p)
				if p == "" {
					return nil, fmt.Errorf("modelstring block %q has an empty parent", raw)
				}
				b.parents = append(b.parents, p)
			}
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func blockNames(blocks []modelstringBlock) []string {
	names := make([]string, len(blocks))
	for i, b := range blocks {
		names[i] = b.name
	}
	return names
}

// nodesSorted returns a lexicographically sorted copy of names.
func nodesSorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
