// Copyright The Sieve Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graphutil adapts the call graphs built by the analyses to the graph
// libraries used for ordering and cycle detection.
package graphutil

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// CallGraph is an abstraction over a per-target call graph to work with
// existing graph libraries. It implements yourbasic/graph's Iterator and
// Gonum's graph.Graph, so the same structure can be handed to both.
type CallGraph struct {
	// Names maps node ids to function names. Node ids are dense, 0..Order-1.
	Names []string

	// IDs maps function names back to node ids
	IDs map[string]int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed
	// edge (a call) from IDs[x] to IDs[y]
	Edges map[int64]map[int64]bool
}

// NewCallGraph returns an empty call graph over the given function names.
// Node ids are assigned in the order the names are given.
func NewCallGraph(names []string) *CallGraph {
	g := &CallGraph{
		Names: make([]string, len(names)),
		IDs:   make(map[string]int64, len(names)),
		Edges: make(map[int64]map[int64]bool, len(names)),
	}
	copy(g.Names, names)
	for i, name := range names {
		g.IDs[name] = int64(i)
		g.Edges[int64(i)] = map[int64]bool{}
	}
	return g
}

// AddEdge records a call from caller to callee. Unknown names are ignored:
// calls to functions outside the target have no node to point at.
func (g *CallGraph) AddEdge(caller string, callee string) {
	from, okFrom := g.IDs[caller]
	to, okTo := g.IDs[callee]
	if okFrom && okTo {
		g.Edges[from][to] = true
	}
}

// Order returns the number of nodes. Part of yourbasic/graph's Iterator.
func (g *CallGraph) Order() int {
	return len(g.Names)
}

// Visit calls do for each neighbor of v, in increasing id order. Part of
// yourbasic/graph's Iterator.
func (g *CallGraph) Visit(v int, do func(w int, c int64) bool) bool {
	var targets []int
	for w := range g.Edges[int64(v)] {
		targets = append(targets, int(w))
	}
	sort.Ints(targets)
	for _, w := range targets {
		if do(w, 1) {
			return true
		}
	}
	return false
}

// Node returns the node with the given id, or nil if there is none.
func (g *CallGraph) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(g.Names)) {
		return nil
	}
	return simple.Node(id)
}

// Nodes returns all the nodes in the graph.
func (g *CallGraph) Nodes() graph.Nodes {
	if len(g.Names) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(g.Names))
	for i := range g.Names {
		nodes[i] = simple.Node(int64(i))
	}
	return iterator.NewOrderedNodes(nodes)
}

// From returns all nodes reachable from the node with the given id through
// one edge.
func (g *CallGraph) From(id int64) graph.Nodes {
	if len(g.Edges[id]) == 0 {
		return graph.Empty
	}
	var targets []int64
	for w := range g.Edges[id] {
		targets = append(targets, w)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	nodes := make([]graph.Node, len(targets))
	for i, w := range targets {
		nodes[i] = simple.Node(w)
	}
	return iterator.NewOrderedNodes(nodes)
}

// HasEdgeBetween reports whether an edge exists between x and y, ignoring
// direction.
func (g *CallGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.Edges[xid][yid] || g.Edges[yid][xid]
}

// Edge returns the edge from u to v if it exists, nil otherwise.
func (g *CallGraph) Edge(uid, vid int64) graph.Edge {
	if !g.Edges[uid][vid] {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

var _ graph.Graph = (*CallGraph)(nil)
