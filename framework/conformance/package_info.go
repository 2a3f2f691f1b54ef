// Package conformance contains the result model, id filters and result loggers used by the
// IRP suite runner. Loggers receive one event when a test starts and one when it finishes,
// and write a summary or file at the end of the run.
package conformance
