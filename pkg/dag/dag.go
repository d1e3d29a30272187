package dag

import (
	"errors"
	"slices"

	"github.com/matzehuels/causeway/pkg/nodeset"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	// All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the same
	// ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [DAG.RemoveNode] when the node is missing.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdge is returned by [DAG.AddEdge] when the arc already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrGraphHasCycle is returned by [DAG.AddEdge] when the new arc would close
	// a directed cycle, and by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// It is used to carry display hints (for example whether a node is latent)
// to renderers. Metadata maps are never nil after AddNode.
type Metadata map[string]any

// Node is a vertex of the graph.
type Node struct {
	ID   string   // Unique identifier (also used as display label)
	Meta Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge is a directed arc From → To.
type Edge struct {
	From string
	To   string
}

// DAG is a directed acyclic graph keyed by node ID.
//
// Acyclicity is an invariant: [DAG.AddEdge] refuses any arc that would close a
// cycle, so every DAG reachable through the public API is acyclic. Adjacency
// lists are kept sorted by ID, which makes every traversal deterministic.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent mutation; concurrent reads are fine.
type DAG struct {
	nodes    map[string]*Node
	outgoing map[string][]string // nodeID -> children IDs (sorted)
	incoming map[string][]string // nodeID -> parent IDs (sorted)
	edges    int
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	d.nodes[n.ID] = &n
	return nil
}

// RemoveNode deletes a node together with every arc touching it.
func (d *DAG) RemoveNode(id string) error {
	if _, ok := d.nodes[id]; !ok {
		return ErrUnknownNode
	}
	for _, c := range d.outgoing[id] {
		d.incoming[c] = remove(d.incoming[c], id)
		d.edges--
	}
	for _, p := range d.incoming[id] {
		d.outgoing[p] = remove(d.outgoing[p], id)
		d.edges--
	}
	delete(d.outgoing, id)
	delete(d.incoming, id)
	delete(d.nodes, id)
	return nil
}

// AddEdge adds the arc e.From → e.To between two existing nodes.
//
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode for missing endpoints,
// ErrDuplicateEdge if the arc exists, and ErrGraphHasCycle if To already
// reaches From (a self-loop included).
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if d.HasEdge(e.From, e.To) {
		return ErrDuplicateEdge
	}
	if e.From == e.To || d.HasDirectedPath(e.To, e.From) {
		return ErrGraphHasCycle
	}
	d.outgoing[e.From] = insert(d.outgoing[e.From], e.To)
	d.incoming[e.To] = insert(d.incoming[e.To], e.From)
	d.edges++
	return nil
}

// RemoveEdge removes the arc from→to if it exists.
// No error is returned if the arc does not exist.
func (d *DAG) RemoveEdge(from, to string) {
	if !d.HasEdge(from, to) {
		return
	}
	d.outgoing[from] = remove(d.outgoing[from], to)
	d.incoming[to] = remove(d.incoming[to], from)
	d.edges--
}

// HasNode reports whether id is a node of the graph.
func (d *DAG) HasNode(id string) bool {
	_, ok := d.nodes[id]
	return ok
}

// HasEdge reports whether the arc from→to exists.
func (d *DAG) HasEdge(from, to string) bool {
	_, found := slices.BinarySearch(d.outgoing[from], to)
	return found
}

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodeIDs returns every node ID in lexicographic order.
func (d *DAG) NodeIDs() []string {
	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NodeSet returns the node IDs as a set.
func (d *DAG) NodeSet() nodeset.Set {
	s := nodeset.New(len(d.nodes))
	for id := range d.nodes {
		s.Add(id)
	}
	return s
}

// Edges returns every arc, ordered by source then target.
func (d *DAG) Edges() []Edge {
	edges := make([]Edge, 0, d.edges)
	for _, from := range d.NodeIDs() {
		for _, to := range d.outgoing[from] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of arcs in the graph.
func (d *DAG) EdgeCount() int { return d.edges }

// Children returns the sorted IDs of the node's children.
// The returned slice should not be modified - use it as a read-only view.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the sorted IDs of the node's parents.
// The returned slice should not be modified - use it as a read-only view.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of children of the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of parents of the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Sources returns the sorted IDs of nodes without parents.
func (d *DAG) Sources() []string {
	var sources []string
	for _, id := range d.NodeIDs() {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, id)
		}
	}
	return sources
}

// Sinks returns the sorted IDs of nodes without children.
func (d *DAG) Sinks() []string {
	var sinks []string
	for _, id := range d.NodeIDs() {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// Ancestors returns every node with a directed path into one of ids.
// A member of ids is included only if it is an ancestor of another member.
func (d *DAG) Ancestors(ids ...string) nodeset.Set {
	return d.reach(d.incoming, ids)
}

// Descendants returns every node reachable by a directed path from one of ids.
// A member of ids is included only if it descends from another member.
func (d *DAG) Descendants(ids ...string) nodeset.Set {
	return d.reach(d.outgoing, ids)
}

func (d *DAG) reach(adj map[string][]string, ids []string) nodeset.Set {
	seen := nodeset.New(len(d.nodes))
	stack := make([]string, 0, len(ids))
	for _, id := range ids {
		stack = append(stack, adj[id]...)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.Has(n) {
			continue
		}
		seen.Add(n)
		stack = append(stack, adj[n]...)
	}
	return seen
}

// HasDirectedPath reports whether to is reachable from from by following arcs.
// A node trivially reaches itself.
func (d *DAG) HasDirectedPath(from, to string) bool {
	if from == to {
		return true
	}
	return d.Descendants(from).Has(to)
}

// TopologicalOrder returns the node IDs so that every parent precedes its
// children. Among nodes that are ready at the same time the lexicographically
// smallest comes first, so the order is reproducible.
func (d *DAG) TopologicalOrder() []string {
	indeg := make(map[string]int, len(d.nodes))
	var ready []string
	for id := range d.nodes {
		indeg[id] = len(d.incoming[id])
		if indeg[id] == 0 {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)

	order := make([]string, 0, len(d.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, c := range d.outgoing[n] {
			indeg[c]--
			if indeg[c] == 0 {
				ready = insert(ready, c)
			}
		}
	}
	return order
}

// Clone returns a deep copy of the graph. Node metadata maps are copied
// shallowly.
func (d *DAG) Clone() *DAG {
	c := New(nil)
	for k, v := range d.meta {
		c.meta[k] = v
	}
	for id, n := range d.nodes {
		meta := make(Metadata, len(n.Meta))
		for k, v := range n.Meta {
			meta[k] = v
		}
		c.nodes[id] = &Node{ID: id, Meta: meta}
	}
	for id, ch := range d.outgoing {
		if len(ch) > 0 {
			c.outgoing[id] = slices.Clone(ch)
		}
	}
	for id, pa := range d.incoming {
		if len(pa) > 0 {
			c.incoming[id] = slices.Clone(pa)
		}
	}
	c.edges = d.edges
	return c
}

// Induced returns the subgraph on the nodes of keep that exist in d, with
// every arc among them. Unknown IDs in keep are ignored.
func (d *DAG) Induced(keep nodeset.Set) *DAG {
	c := New(nil)
	for k, v := range d.meta {
		c.meta[k] = v
	}
	for id := range keep {
		if n, ok := d.nodes[id]; ok {
			meta := make(Metadata, len(n.Meta))
			for k, v := range n.Meta {
				meta[k] = v
			}
			c.nodes[id] = &Node{ID: id, Meta: meta}
		}
	}
	for id := range c.nodes {
		for _, to := range d.outgoing[id] {
			if _, ok := c.nodes[to]; ok {
				c.outgoing[id] = append(c.outgoing[id], to)
				c.incoming[to] = insert(c.incoming[to], id)
				c.edges++
			}
		}
	}
	return c
}

// Validate checks graph integrity and returns nil if valid.
// It returns ErrGraphHasCycle if a directed cycle is detected; since
// AddEdge already rejects cycles this only fails on corrupted graphs.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.NodeIDs() {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

func insert(s []string, v string) []string {
	i, found := slices.BinarySearch(s, v)
	if found {
		return s
	}
	return slices.Insert(s, i, v)
}

func remove(s []string, v string) []string {
	i, found := slices.BinarySearch(s, v)
	if !found {
		return s
	}
	return slices.Delete(s, i, i+1)
}
