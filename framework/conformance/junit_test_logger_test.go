package conformance

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxsc/irp-harness/framework"
)

func TestJUnitOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.AddExact("999"))
	j := NewJUnitTestLogger(path, map[string]string{"interpreter": "lua autotest.lua"}, filters)

	capture := &framework.CapturingLogger{}
	capture.Println("expected pass, reached fail")

	var results Results
	results.RunID = "run-1"
	for _, r := range []TestResult{
		{Test: TestInfo{ID: "144", URI: "txml/test144.txml"}, Outcome: Passed},
		{Test: TestInfo{ID: "147", URI: "txml/test147.txml"}, Outcome: Failed, Output: capture.Output()},
		{Test: TestInfo{ID: "201", URI: "txml/test201.txml"}, Outcome: Overridden, Verdict: "pass"},
		{Test: TestInfo{ID: "230", URI: "txml/test230.txml", Manual: true}, Outcome: Traced},
	} {
		j.TestStarted(r.Test)
		j.TestFinished(r)
		results.Add(r)
	}
	require.NoError(t, j.EndLog(results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc jUnitXMLDocument
	require.NoError(t, xml.Unmarshal(data, &doc))
	require.Len(t, doc.Suites, 1)

	suite := doc.Suites[0]
	assert.Equal(t, 4, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 2, suite.Skipped)
	assert.Contains(t, suite.Properties, jUnitXMLProperty{Name: "tests.run.id", Value: "run-1"})
	assert.Contains(t, suite.Properties, jUnitXMLProperty{Name: "interpreter", Value: "lua autotest.lua"})
	assert.Contains(t, suite.Properties, jUnitXMLProperty{Name: "tests.filter.mustNotMatch", Value: `"^999$"`})

	require.Len(t, suite.TestCases, 4)
	assert.Equal(t, "144 (txml/test144.txml)", suite.TestCases[0].Name)
	assert.Nil(t, suite.TestCases[0].Failure)
	require.NotNil(t, suite.TestCases[1].Failure)
	assert.Contains(t, suite.TestCases[1].Failure.Contents, "expected pass, reached fail")
	require.NotNil(t, suite.TestCases[2].SkipMessage)
	assert.Equal(t, "overridden: pass", suite.TestCases[2].SkipMessage.Message)
	assert.Equal(t, "manual", suite.TestCases[3].Classname)
}

func TestJUnitUnfinishedTestIsFailure(t *testing.T) {
	j := NewJUnitTestLogger("unused", nil, RegexFilters{})
	j.TestStarted(TestInfo{ID: "144"})
	data, err := j.render(Results{})
	require.NoError(t, err)
	assert.Contains(t, string(data), `failures="1"`)
	assert.Contains(t, string(data), "test did not finish")
}
