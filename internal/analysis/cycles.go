package analysis

import (
	"sort"

	"github.com/rendis/bpmnport/internal/bpmn"
)

// FindCycle detects a directed cycle in the sequence-flow graph of a process.
// It returns the ID of an element on the cycle and true when one exists.
//
// The traversal is an iterative depth-first search with an explicit on-stack
// set: a back-edge to a node still on the DFS stack is a cycle. Iterative so
// very deep chains cannot overflow the goroutine stack; O(nodes + edges).
func FindCycle(p *bpmn.Process) (string, bool) {
	adj := make(map[string][]string, len(p.Flows))
	nodes := make(map[string]bool, len(p.Flows)*2)
	for _, f := range p.Flows {
		adj[f.SourceRef] = append(adj[f.SourceRef], f.TargetRef)
		nodes[f.SourceRef] = true
		nodes[f.TargetRef] = true
	}

	roots := make([]string, 0, len(nodes))
	for n := range nodes {
		roots = append(roots, n)
	}
	sort.Strings(roots) // deterministic cycle reporting

	const (
		white = 0 // unvisited
		gray  = 1 // on the DFS stack
		black = 2 // fully explored
	)
	color := make(map[string]int, len(nodes))

	type dfsFrame struct {
		node string
		next int // index of the next successor to explore
	}

	for _, root := range roots {
		if color[root] != white {
			continue
		}
		stack := []dfsFrame{{node: root}}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := adj[top.node]
			if top.next < len(succ) {
				next := succ[top.next]
				top.next++
				switch color[next] {
				case gray:
					return next, true
				case white:
					color[next] = gray
					stack = append(stack, dfsFrame{node: next})
				}
				continue
			}
			color[top.node] = black
			stack = stack[:len(stack)-1]
		}
	}
	return "", false
}
