package bpmn

// Definitions is the typed inventory parsed from one BPMN document.
type Definitions struct {
	Processes     []*Process
	Collaboration *Collaboration
	// Warnings collects non-fatal parse findings, e.g. dropped dangling flows.
	Warnings []string
}

// Process is one process subtree: a flat element inventory plus sequence flows.
type Process struct {
	ID       string
	Name     string
	Elements []*Element
	Flows    []*SequenceFlow

	byID map[string]*Element
}

// Element is a single parsed BPMN element. Type is the namespace-stripped XML
// local name ("userTask", "exclusiveGateway", ...). Parent is the ID of the
// enclosing flow node for nested elements (event definitions, loop markers,
// sub-process children) and empty for top-level flow nodes.
type Element struct {
	ID     string
	Type   string
	Name   string
	Parent string
	Attrs  map[string]string
}

// SequenceFlow is a directed edge between two elements of the same process.
type SequenceFlow struct {
	ID        string
	SourceRef string
	TargetRef string
	// Condition is the raw text of a nested conditionExpression, if any.
	Condition string
}

// Collaboration groups the pools and message flows of a multi-pool document.
type Collaboration struct {
	ID           string
	Participants []*Participant
	MessageFlows []*MessageFlow
}

// Participant is one pool, optionally bound to a process.
type Participant struct {
	ID         string
	Name       string
	ProcessRef string
}

// MessageFlow is a cross-pool message edge.
type MessageFlow struct {
	ID        string
	Name      string
	SourceRef string
	TargetRef string
}

// ElementByID returns the element with the given ID, or nil.
func (p *Process) ElementByID(id string) *Element {
	if p.byID == nil {
		p.byID = make(map[string]*Element, len(p.Elements))
		for _, e := range p.Elements {
			if e.ID != "" {
				p.byID[e.ID] = e
			}
		}
	}
	return p.byID[id]
}

// FlowNodes returns the top-level flow nodes of the process, in document
// order: every element that is not nested inside another and is not a lane.
func (p *Process) FlowNodes() []*Element {
	nodes := make([]*Element, 0, len(p.Elements))
	for _, e := range p.Elements {
		if e.Parent == "" && e.Type != "lane" {
			nodes = append(nodes, e)
		}
	}
	return nodes
}

// Outgoing returns the sequence flows leaving the given element.
func (p *Process) Outgoing(id string) []*SequenceFlow {
	var out []*SequenceFlow
	for _, f := range p.Flows {
		if f.SourceRef == id {
			out = append(out, f)
		}
	}
	return out
}

// Incoming returns the sequence flows entering the given element.
func (p *Process) Incoming(id string) []*SequenceFlow {
	var in []*SequenceFlow
	for _, f := range p.Flows {
		if f.TargetRef == id {
			in = append(in, f)
		}
	}
	return in
}

// DisplayName returns the element name, falling back to its ID.
func (e *Element) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}
