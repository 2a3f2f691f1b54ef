// Package harness runs the external programs the conformance suite depends on: the SCXML
// interpreter under test and, for failed tests, the developer's editor.
//
// It contains no knowledge of the suite itself; the suite package decides what to run and
// how to record the outcome.
package harness
