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

package graphutil

import (
	"fmt"

	"github.com/yourbasic/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Component is one strongly connected component of a call graph.
type Component struct {
	// Members are the node ids in the component
	Members []int

	// Trivial is true when the component is a single node without a self loop
	Trivial bool
}

// BottomUpComponents computes the strongly connected components of the call
// graph and returns them callees-first: if any member of component A calls
// into component B, B appears before A. Edges inside a component impose no
// order.
func BottomUpComponents(g *CallGraph) ([]Component, error) {
	sccs := graph.StrongComponents(g)

	// Map each node to its component index to build the condensation.
	compOf := make(map[int]int, g.Order())
	for ci, members := range sccs {
		for _, v := range members {
			compOf[v] = ci
		}
	}

	cond := simple.NewDirectedGraph()
	for ci := range sccs {
		cond.AddNode(simple.Node(int64(ci)))
	}
	for from, tos := range g.Edges {
		for to := range tos {
			cf, ct := compOf[int(from)], compOf[int(to)]
			if cf != ct {
				cond.SetEdge(cond.NewEdge(simple.Node(int64(cf)), simple.Node(int64(ct))))
			}
		}
	}

	// The condensation is acyclic, so a sort failure is a defect in the
	// component computation, not an input problem.
	sorted, err := topo.Sort(cond)
	if err != nil {
		return nil, fmt.Errorf("condensation of call graph is not acyclic: %w", err)
	}

	// topo.Sort puts callers before callees; reverse for bottom-up order.
	components := make([]Component, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		ci := int(sorted[i].ID())
		members := sccs[ci]
		trivial := len(members) == 1 && !g.Edges[int64(members[0])][int64(members[0])]
		components = append(components, Component{Members: members, Trivial: trivial})
	}
	return components, nil
}
