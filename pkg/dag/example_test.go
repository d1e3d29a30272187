package dag_test

import (
	"fmt"

	"github.com/matzehuels/causeway/pkg/dag"
)

func ExampleDAG_basic() {
	// Smoking → Tar → Cancer, Smoking → Cancer
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "Smoking"})
	_ = g.AddNode(dag.Node{ID: "Tar"})
	_ = g.AddNode(dag.Node{ID: "Cancer"})
	_ = g.AddEdge(dag.Edge{From: "Smoking", To: "Tar"})
	_ = g.AddEdge(dag.Edge{From: "Tar", To: "Cancer"})
	_ = g.AddEdge(dag.Edge{From: "Smoking", To: "Cancer"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Order:", g.TopologicalOrder())
	// Output:
	// Nodes: 3
	// Edges: 3
	// Order: [Smoking Tar Cancer]
}

func ExampleDAG_AddEdge_cycle() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})

	err := g.AddEdge(dag.Edge{From: "b", To: "a"})
	fmt.Println(err)
	// Output:
	// graph contains a cycle
}

func ExampleDAG_Ancestors() {
	g := dag.New(nil)
	for _, id := range []string{"u", "x", "m", "y"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "u", To: "x"})
	_ = g.AddEdge(dag.Edge{From: "x", To: "m"})
	_ = g.AddEdge(dag.Edge{From: "m", To: "y"})

	fmt.Println("Ancestors of y:", g.Ancestors("y"))
	fmt.Println("Descendants of x:", g.Descendants("x"))
	// Output:
	// Ancestors of y: {m, u, x}
	// Descendants of x: {m, y}
}
