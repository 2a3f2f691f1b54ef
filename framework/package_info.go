// Package framework contains the low-level infrastructure shared by the conformance harness:
// the Logger abstraction here, XML document helpers in document, external process control in
// harness, and result reporting in conformance.
//
// The general model is:
//
// 1. The suite runner prepares one concrete SCXML document at a time in a working directory.
//
// 2. An external interpreter is started against that document and reports its verdict only
// through its exit status. Anything it prints is captured for the human reading the results.
package framework
