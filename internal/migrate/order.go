package migrate

import (
	"fmt"

	"github.com/rendis/bpmnport/internal/analysis"
	"github.com/rendis/bpmnport/internal/bpmn"
)

// traversalOrder returns the process flow nodes in migration order.
//
// The preferred order follows sequence-flow adjacency breadth-first from the
// unique none-typed start event. When no unambiguous start exists, or the
// flow graph contains a cycle, it falls back to document order and reports a
// warning: linear layout is a best-effort visualization aid, not an
// execution guarantee.
func traversalOrder(p *bpmn.Process) ([]*bpmn.Element, []string) {
	nodes := p.FlowNodes()

	if at, found := analysis.FindCycle(p); found {
		return nodes, []string{fmt.Sprintf(
			"process %s contains a flow cycle at %s; steps emitted in document order", p.ID, at)}
	}

	start := noneStartEvent(p, nodes)
	if start == nil {
		return nodes, []string{fmt.Sprintf(
			"process %s has no unambiguous start event; steps emitted in document order", p.ID)}
	}

	ordered := make([]*bpmn.Element, 0, len(nodes))
	visited := make(map[string]bool, len(nodes))
	queue := []*bpmn.Element{start}
	visited[start.ID] = true

	for len(queue) > 0 {
		el := queue[0]
		queue = queue[1:]
		ordered = append(ordered, el)
		for _, f := range p.Outgoing(el.ID) {
			next := p.ElementByID(f.TargetRef)
			if next == nil || next.Parent != "" || visited[next.ID] {
				continue
			}
			visited[next.ID] = true
			queue = append(queue, next)
		}
	}

	// Disconnected nodes keep their document order at the tail.
	for _, el := range nodes {
		if !visited[el.ID] {
			ordered = append(ordered, el)
		}
	}
	return ordered, nil
}

// noneStartEvent returns the single start event with no incoming flows and no
// event definition, or nil when zero or several candidates exist.
func noneStartEvent(p *bpmn.Process, nodes []*bpmn.Element) *bpmn.Element {
	var found *bpmn.Element
	for _, el := range nodes {
		if el.Type != "startEvent" || len(p.Incoming(el.ID)) > 0 || hasEventDefinition(p, el.ID) {
			continue
		}
		if found != nil {
			return nil // ambiguous
		}
		found = el
	}
	return found
}

// hasEventDefinition reports whether the event carries a nested
// *EventDefinition child (timer, message, signal, ...).
func hasEventDefinition(p *bpmn.Process, eventID string) bool {
	for _, el := range p.Elements {
		if el.Parent == eventID {
			return true
		}
	}
	return false
}
