package bpmn

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rendis/bpmnport/pkg/schema"
)

// Container and bookkeeping elements that never enter the inventory.
var skipLocals = map[string]bool{
	"definitions":           true,
	"laneSet":               true,
	"flowNodeRef":           true,
	"incoming":              true,
	"outgoing":              true,
	"documentation":         true,
	"extensionElements":     true,
	"ioSpecification":       true,
	"dataInput":             true,
	"dataOutput":            true,
	"inputSet":              true,
	"outputSet":             true,
	"dataInputAssociation":  true,
	"dataOutputAssociation": true,
	"sourceRef":             true,
	"targetRef":             true,
	"property":              true,
	"text":                  true,
	"script":                true,
	"BPMNDiagram":           true,
	"BPMNPlane":             true,
	"BPMNShape":             true,
	"BPMNEdge":              true,
	"BPMNLabel":             true,
	"Bounds":                true,
	"waypoint":              true,
	"timeCycle":             true,
	"timeDate":              true,
	"timeDuration":          true,
	"loopCardinality":       true,
	"completionCondition":   true,
}

// ParseFile reads and parses a BPMN document from disk.
func ParseFile(path string) (*Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeParse, "cannot read document: %s", err.Error()).WithCause(err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a BPMN document into a typed element inventory. The decoder
// is namespace-agnostic: elements are matched by local name so documents with
// bpmn:, bpmn2: or default-namespace prefixes all parse the same way.
//
// Parse fails only when the XML is malformed or no process subtree exists.
// Everything else degrades: flows with dangling source/target refs are
// dropped and recorded in Definitions.Warnings.
func Parse(r io.Reader) (*Definitions, error) {
	dec := xml.NewDecoder(r)
	defs := &Definitions{}

	var (
		proc     *Process
		stack    []frame
		collab   *Collaboration
		condFlow *SequenceFlow // flow whose conditionExpression is being read
		sawRoot  bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeParse, "malformed XML: %s", err.Error()).WithCause(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			local := t.Name.Local
			if !sawRoot {
				if local != "definitions" {
					return nil, schema.NewErrorf(schema.ErrCodeParse,
						"unexpected root element %q, want definitions", local)
				}
				sawRoot = true
				continue
			}

			switch {
			case local == "process":
				proc = &Process{
					ID:   attr(t, "id"),
					Name: attr(t, "name"),
				}
				defs.Processes = append(defs.Processes, proc)
				stack = stack[:0]

			case local == "collaboration":
				collab = &Collaboration{ID: attr(t, "id")}
				defs.Collaboration = collab

			case collab != nil && proc == nil && local == "participant":
				collab.Participants = append(collab.Participants, &Participant{
					ID:         attr(t, "id"),
					Name:       attr(t, "name"),
					ProcessRef: attr(t, "processRef"),
				})

			case collab != nil && proc == nil && local == "messageFlow":
				collab.MessageFlows = append(collab.MessageFlows, &MessageFlow{
					ID:        attr(t, "id"),
					Name:      attr(t, "name"),
					SourceRef: attr(t, "sourceRef"),
					TargetRef: attr(t, "targetRef"),
				})

			case proc != nil && local == "sequenceFlow":
				fl := &SequenceFlow{
					ID:        attr(t, "id"),
					SourceRef: attr(t, "sourceRef"),
					TargetRef: attr(t, "targetRef"),
				}
				proc.Flows = append(proc.Flows, fl)
				stack = append(stack, frame{local: local, flow: fl})

			case proc != nil && local == "conditionExpression":
				if fl := nearestFlow(stack); fl != nil {
					condFlow = fl
				}
				stack = append(stack, frame{local: local})

			case proc != nil && skipLocals[local]:
				stack = append(stack, frame{local: local})

			case proc != nil:
				el := &Element{
					ID:     attr(t, "id"),
					Type:   local,
					Name:   attr(t, "name"),
					Parent: nearestElementID(stack),
					Attrs:  attrMap(t),
				}
				proc.Elements = append(proc.Elements, el)
				stack = append(stack, frame{local: local, elem: el})
			}

		case xml.EndElement:
			local := t.Name.Local
			if local == "process" {
				proc = nil
				stack = stack[:0]
				continue
			}
			if local == "collaboration" {
				// keep collab for reference; participants list is complete
				continue
			}
			if proc != nil && len(stack) > 0 && stack[len(stack)-1].local == local {
				if local == "conditionExpression" {
					condFlow = nil
				}
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			if condFlow != nil {
				condFlow.Condition += string(t)
			}
		}
	}

	if !sawRoot {
		return nil, schema.NewError(schema.ErrCodeParse, "empty document")
	}
	if len(defs.Processes) == 0 {
		return nil, schema.NewError(schema.ErrCodeParse, "document contains no process element")
	}

	for _, p := range defs.Processes {
		p.ID = nonEmpty(p.ID, "process")
		trimConditions(p)
		dropDanglingFlows(defs, p)
	}
	return defs, nil
}

// dropDanglingFlows removes flows whose source or target does not resolve to
// an element of the same process. Dropped flows are a warning, never fatal.
func dropDanglingFlows(defs *Definitions, p *Process) {
	kept := p.Flows[:0]
	for _, f := range p.Flows {
		if p.ElementByID(f.SourceRef) == nil || p.ElementByID(f.TargetRef) == nil {
			defs.Warnings = append(defs.Warnings, fmt.Sprintf(
				"process %s: dropped sequence flow %s with dangling reference (%s -> %s)",
				p.ID, f.ID, f.SourceRef, f.TargetRef))
			continue
		}
		kept = append(kept, f)
	}
	p.Flows = kept
}

func trimConditions(p *Process) {
	for _, f := range p.Flows {
		f.Condition = strings.TrimSpace(f.Condition)
	}
}

// frame mirrors the XML nesting while inside a process subtree.
type frame struct {
	local string
	elem  *Element      // non-nil when this node entered the inventory
	flow  *SequenceFlow // non-nil for sequenceFlow nodes
}

// nearestElementID walks the open-element stack outward to find the enclosing
// inventory element, if any.
func nearestElementID(stack []frame) string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].elem != nil {
			return stack[i].elem.ID
		}
	}
	return ""
}

// nearestFlow finds the enclosing sequenceFlow on the open-element stack.
func nearestFlow(stack []frame) *SequenceFlow {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].flow != nil {
			return stack[i].flow
		}
	}
	return nil
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrMap(t xml.StartElement) map[string]string {
	if len(t.Attr) == 0 {
		return nil
	}
	m := make(map[string]string, len(t.Attr))
	for _, a := range t.Attr {
		m[a.Name.Local] = a.Value
	}
	return m
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
