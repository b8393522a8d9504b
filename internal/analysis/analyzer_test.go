package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/bpmnport/internal/bpmn"
	"github.com/rendis/bpmnport/pkg/schema"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultScoring(), nil)
}

func analyzeDoc(t *testing.T, doc string) *schema.AnalysisReport {
	t.Helper()
	defs, err := bpmn.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return newTestAnalyzer().Analyze(defs)
}

const linearDoc = `<definitions>
  <process id="order" name="Order Handling">
    <startEvent id="start"/>
    <task id="t1" name="Receive order"/>
    <userTask id="t2" name="Approve order"/>
    <endEvent id="end"/>
    <sequenceFlow id="f1" sourceRef="start" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="t2"/>
    <sequenceFlow id="f3" sourceRef="t2" targetRef="end"/>
  </process>
</definitions>`

func TestAnalyze_LinearProcess(t *testing.T) {
	report := analyzeDoc(t, linearDoc)

	assert.Equal(t, 4, report.ElementCount)
	assert.Equal(t, 4, report.SupportedElements)
	assert.Zero(t, report.PartialElements)
	assert.Zero(t, report.UnsupportedElements)
	assert.Equal(t, 100.0, report.FeasibilityPercentage)
	assert.Equal(t, 4, report.ComplexityScore)
	assert.Equal(t, schema.ComplexitySimple, report.Complexity)
	assert.Equal(t, 1, report.EstimatedEffortHours)
	assert.Equal(t, schema.GoodCandidate, report.Recommendation)
	assert.Empty(t, report.CriticalIssues)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.Recommendations)
	assert.Equal(t, 1, report.ElementBreakdown["userTask"])
}

func TestAnalyze_EmptyProcess(t *testing.T) {
	report := analyzeDoc(t, `<definitions><process id="p1"/></definitions>`)

	assert.Zero(t, report.ElementCount)
	assert.Equal(t, 0.0, report.FeasibilityPercentage)
	assert.Equal(t, schema.NotRecommended, report.Recommendation)
	assert.Equal(t, schema.ComplexitySimple, report.Complexity)
}

func TestAnalyze_FlowCycle(t *testing.T) {
	doc := `<definitions>
  <process id="p1">
    <task id="t1"/>
    <task id="t2"/>
    <task id="t3"/>
    <sequenceFlow id="f1" sourceRef="t1" targetRef="t2"/>
    <sequenceFlow id="f2" sourceRef="t2" targetRef="t3"/>
    <sequenceFlow id="f3" sourceRef="t3" targetRef="t1"/>
  </process>
</definitions>`

	report := analyzeDoc(t, doc)

	// 3 supported tasks + cycle penalty.
	assert.Equal(t, 23, report.ComplexityScore)
	assert.Equal(t, schema.ComplexityModerate, report.Complexity)
	require.Len(t, report.CriticalIssues, 1)
	assert.Contains(t, report.CriticalIssues[0], "LOOP detected")
	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "critical issues")
}

// Loop characteristics on a task mark repetition, not a flow cycle: they must
// classify and score without triggering the cycle critical.
func TestAnalyze_LoopCharacteristicsWithoutFlowCycle(t *testing.T) {
	doc := `<definitions>
  <process id="p1">
    <startEvent id="start"/>
    <task id="t1" name="Chase signatures">
      <standardLoopCharacteristics/>
    </task>
    <userTask id="t2" name="Collect forms">
      <multiInstanceLoopCharacteristics isSequential="false"/>
    </userTask>
    <endEvent id="end"/>
    <sequenceFlow id="f1" sourceRef="start" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="t2"/>
    <sequenceFlow id="f3" sourceRef="t2" targetRef="end"/>
  </process>
</definitions>`

	report := analyzeDoc(t, doc)

	assert.Equal(t, 6, report.ElementCount)
	assert.Equal(t, 4, report.SupportedElements)
	assert.Equal(t, 1, report.PartialElements)
	assert.Equal(t, 1, report.UnsupportedElements)
	assert.Equal(t, 16, report.ComplexityScore)
	assert.InDelta(t, 75.0, report.FeasibilityPercentage, 0.0001)

	require.Len(t, report.CriticalIssues, 1)
	assert.Contains(t, report.CriticalIssues[0], "multiInstanceLoopCharacteristics")
	for _, issue := range report.CriticalIssues {
		assert.NotContains(t, issue, "LOOP detected")
	}
}

func TestAnalyze_BoundaryEvent(t *testing.T) {
	doc := `<definitions>
  <process id="p1">
    <startEvent id="start"/>
    <task id="t1" name="Ship order"/>
    <boundaryEvent id="late" attachedToRef="t1"/>
    <endEvent id="end"/>
    <sequenceFlow id="f1" sourceRef="start" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="end"/>
  </process>
</definitions>`

	report := analyzeDoc(t, doc)

	// Tier weight 8 plus the structural penalty 8 on top of 3 supported.
	assert.Equal(t, 19, report.ComplexityScore)
	assert.Equal(t, 1, report.UnsupportedElements)
	require.Len(t, report.CriticalIssues, 2)
	assert.Contains(t, report.CriticalIssues[0], "boundaryEvent")
	assert.Contains(t, report.CriticalIssues[1], "boundary event")
	assert.InDelta(t, 75.0, report.FeasibilityPercentage, 0.0001)
}

func TestAnalyze_EventSubprocess(t *testing.T) {
	doc := `<definitions>
  <process id="p1">
    <startEvent id="start"/>
    <task id="t1"/>
    <subProcess id="escalation" triggeredByEvent="true"/>
    <endEvent id="end"/>
    <sequenceFlow id="f1" sourceRef="start" targetRef="t1"/>
    <sequenceFlow id="f2" sourceRef="t1" targetRef="end"/>
  </process>
</definitions>`

	report := analyzeDoc(t, doc)

	// 3 supported + subProcess weight 5 + event-subprocess penalty 10.
	assert.Equal(t, 18, report.ComplexityScore)
	require.Len(t, report.CriticalIssues, 1)
	assert.Contains(t, report.CriticalIssues[0], "event sub-process")
	assert.Equal(t, 1, report.PartialElements)
}

func TestAnalyze_ComplexCondition(t *testing.T) {
	doc := `<definitions>
  <process id="p1">
    <startEvent id="start"/>
    <exclusiveGateway id="gw"/>
    <task id="a"/>
    <task id="b"/>
    <sequenceFlow id="f1" sourceRef="start" targetRef="gw"/>
    <sequenceFlow id="f2" sourceRef="gw" targetRef="a">
      <conditionExpression>${approved &amp;&amp; amount &gt; 500}</conditionExpression>
    </sequenceFlow>
    <sequenceFlow id="f3" sourceRef="gw" targetRef="b">
      <conditionExpression>${amount &lt;= 500}</conditionExpression>
    </sequenceFlow>
  </process>
</definitions>`

	report := analyzeDoc(t, doc)

	// 4 supported elements + one complex-condition penalty.
	assert.Equal(t, 6, report.ComplexityScore)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "f2")
	assert.Contains(t, report.Warnings[0], "complex condition")
}

func TestAnalyze_Collaboration(t *testing.T) {
	doc := `<definitions>
  <collaboration id="collab">
    <participant id="pool1" name="Customer" processRef="p1"/>
    <participant id="pool2" name="Supplier" processRef="p2"/>
    <messageFlow id="mf1" sourceRef="t1" targetRef="t2"/>
    <messageFlow id="mf2" sourceRef="t2" targetRef="t1"/>
    <messageFlow id="mf3" sourceRef="pool1" targetRef="pool2"/>
  </collaboration>
  <process id="p1"><task id="t1"/></process>
  <process id="p2"><task id="t2"/></process>
</definitions>`

	report := analyzeDoc(t, doc)

	// 2 tasks + 1 extra pool * 5 + 3 message flows * 3.
	assert.Equal(t, 16, report.ComplexityScore)
	assert.Equal(t, schema.ComplexityModerate, report.Complexity)
	require.Len(t, report.Warnings, 4)
	assert.Contains(t, report.Warnings[0], "2 pools")
	assert.Equal(t, 100.0, report.FeasibilityPercentage)
}

func TestAnalyze_ParseWarningsPropagate(t *testing.T) {
	doc := `<definitions>
  <process id="p1">
    <task id="t1"/>
    <sequenceFlow id="bad" sourceRef="t1" targetRef="ghost"/>
  </process>
</definitions>`

	report := analyzeDoc(t, doc)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "dangling")
}

// Two analyses of the same document must agree on everything except the
// discovery timestamp.
func TestAnalyze_Idempotent(t *testing.T) {
	first := analyzeDoc(t, linearDoc)
	second := analyzeDoc(t, linearDoc)

	first.DiscoveredAt = time.Time{}
	second.DiscoveredAt = time.Time{}
	assert.Equal(t, first, second)
}

func TestAnalyzeFile_MalformedDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.bpmn")
	require.NoError(t, os.WriteFile(path, []byte("<definitions><process id="), 0o644))

	report := newTestAnalyzer().AnalyzeFile(path)

	assert.Equal(t, path, report.DocumentPath)
	assert.Equal(t, schema.ComplexityError, report.Complexity)
	assert.Equal(t, schema.NotRecommended, report.Recommendation)
	assert.NotEmpty(t, report.Error)
}

func TestAnalyzeFile_MissingDocument(t *testing.T) {
	report := newTestAnalyzer().AnalyzeFile(filepath.Join(t.TempDir(), "nope.bpmn"))
	assert.Equal(t, schema.ComplexityError, report.Complexity)
	assert.NotEmpty(t, report.Error)
}

func TestAnalyzeFile_SetsDocumentPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order.bpmn")
	require.NoError(t, os.WriteFile(path, []byte(linearDoc), 0o644))

	report := newTestAnalyzer().AnalyzeFile(path)
	assert.Equal(t, path, report.DocumentPath)
	assert.Equal(t, 4, report.ElementCount)
}

func TestAnalyze_HighUnsupportedRecommendation(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<definitions><process id="p1">`)
	for i := 0; i < 6; i++ {
		b.WriteString(`<boundaryEvent id="b` + string(rune('a'+i)) + `"/>`)
	}
	b.WriteString(`</process></definitions>`)

	report := analyzeDoc(t, b.String())

	assert.Equal(t, 6, report.UnsupportedElements)
	found := false
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "splitting") {
			found = true
		}
	}
	assert.True(t, found)
}
