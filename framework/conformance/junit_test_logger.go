package conformance

import (
	"encoding/xml"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type JUnitTestLogger struct {
	filePath   string
	properties map[string]string
	filters    RegexFilters
	testIDs    []string // this slice preserves the order that the tests were run in
	tests      map[string]jUnitTestStatus
	lock       sync.Mutex
}

type jUnitTestStatus struct {
	info      TestInfo
	result    TestResult
	finished  bool
	startTime time.Time
	duration  time.Duration
}

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Skipped    int                `xml:"skipped,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

// NewJUnitTestLogger creates a logger that writes a JUnit XML file at the end of the run.
// properties are copied into the suite's property list alongside the filter settings.
func NewJUnitTestLogger(
	filePath string,
	properties map[string]string,
	filters RegexFilters,
) *JUnitTestLogger {
	return &JUnitTestLogger{
		filePath:   filePath,
		properties: properties,
		filters:    filters,
		tests:      make(map[string]jUnitTestStatus),
	}
}

func (j *JUnitTestLogger) TestStarted(t TestInfo) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.testIDs = append(j.testIDs, t.ID)
	j.tests[t.ID] = jUnitTestStatus{
		info:      t,
		startTime: time.Now(),
	}
}

func (j *JUnitTestLogger) TestTracing(TestInfo) {}

func (j *JUnitTestLogger) TestFinished(r TestResult) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.tests[r.Test.ID]
	status.info = r.Test
	status.result = r
	status.finished = true
	status.duration = time.Since(status.startTime)
	j.tests[r.Test.ID] = status
}

func (j *JUnitTestLogger) EndLog(results Results) error {
	fmt.Printf("Writing JUnit data to %s\n", j.filePath)

	data, err := j.render(results)
	if err != nil {
		return err
	}
	return os.WriteFile(j.filePath, data, 0644) //nolint:gosec
}

func (j *JUnitTestLogger) render(results Results) ([]byte, error) {
	j.lock.Lock()
	defer j.lock.Unlock()

	properties := []jUnitXMLProperty{
		{Name: "tests.run.id", Value: results.RunID},
		{Name: "tests.filter.mustMatch", Value: j.filters.MustMatch.String()},
		{Name: "tests.filter.mustNotMatch", Value: j.filters.MustNotMatch.String()},
	}
	for _, name := range sortedKeys(j.properties) {
		properties = append(properties, jUnitXMLProperty{Name: name, Value: j.properties[name]})
	}

	suite := jUnitXMLTestSuite{
		Name:       "SCXML IRP conformance tests",
		Properties: properties,
	}
	suiteTotalDuration := time.Duration(0)
	for _, id := range j.testIDs {
		status := j.tests[id]
		suite.Tests++
		suiteTotalDuration += status.duration

		testCase := jUnitXMLTestCase{
			Classname: status.info.Mode(),
			Name:      fmt.Sprintf("%s (%s)", id, status.info.URI),
			Time:      jUnitDurationString(status.duration),
		}
		switch {
		case !status.finished:
			suite.Failures++
			testCase.Failure = &jUnitXMLFailure{Message: "test did not finish"}
		case status.result.Outcome == Failed:
			suite.Failures++
			testCase.Failure = &jUnitXMLFailure{
				Message:  "interpreter reported failure",
				Type:     status.result.Disposition(),
				Contents: status.result.Output.ToString(""),
			}
		case status.result.Outcome == Overridden:
			suite.Skipped++
			testCase.SkipMessage = &jUnitXMLSkipMessage{Message: "overridden: " + status.result.Verdict}
		case status.result.Outcome == Traced:
			suite.Skipped++
			testCase.SkipMessage = &jUnitXMLSkipMessage{Message: "manual test, traced for inspection"}
		}
		suite.TestCases = append(suite.TestCases, testCase)
	}
	suite.Time = jUnitDurationString(suiteTotalDuration)

	doc := jUnitXMLDocument{Suites: []jUnitXMLTestSuite{suite}}
	bytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(bytes, '\n'), nil
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func sortedKeys(m map[string]string) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
