// Package suite runs the IRP conformance suite: it selects tests from the manifest,
// prepares a concrete document for each one, applies overrides or runs the interpreter,
// and records the verdicts in the implementation report.
package suite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lxsc/irp-harness/framework"
	"github.com/lxsc/irp-harness/framework/conformance"
	"github.com/lxsc/irp-harness/framework/document"
	"github.com/lxsc/irp-harness/framework/harness"
	"github.com/lxsc/irp-harness/manifest"
	"github.com/lxsc/irp-harness/report"
	"github.com/lxsc/irp-harness/resource"
	"github.com/lxsc/irp-harness/transform"
)

// Runner holds everything one suite run needs. Resolver, Engine, Interpreter and Report
// are required; the rest have usable zero values.
type Runner struct {
	Resolver    resource.Resolver
	Engine      *transform.Engine
	Interpreter harness.Interpreter
	Editor      harness.Editor
	Overrides   manifest.Overrides
	Report      *report.Report
	// ReportPath is where the report is saved once all tests are processed. If empty the
	// report is only updated in memory.
	ReportPath string
	// WorkDir receives the prepared documents. Defaults to the current directory.
	WorkDir string
	// Cleanup lists glob patterns, relative to WorkDir, of stale files removed before the run.
	Cleanup    []string
	Filter     conformance.Filter
	TestLogger conformance.TestLogger
	Logger     framework.Logger
	RunID      string
}

// prepared is the set of files written for one test.
type prepared struct {
	document string
	deps     []string
}

func (r *Runner) logger() framework.Logger {
	if r.Logger == nil {
		return framework.NullLogger()
	}
	return r.Logger
}

func (r *Runner) testLogger() conformance.TestLogger {
	if r.TestLogger == nil {
		return conformance.NullTestLogger()
	}
	return r.TestLogger
}

func (r *Runner) workDir() string {
	if r.WorkDir == "" {
		return "."
	}
	return r.WorkDir
}

// LoadManifest fetches and parses the manifest through the resolver.
func LoadManifest(ctx context.Context, resolver resource.Resolver, uri string) (*manifest.Manifest, error) {
	data, err := resolver.Fetch(ctx, uri)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}
	return manifest.Parse(data)
}

// Run processes every selected test of m in order. Any returned error ends the run
// early; in that case the report file is left untouched.
func (r *Runner) Run(ctx context.Context, m *manifest.Manifest) (conformance.Results, error) {
	results := conformance.Results{RunID: r.RunID}

	if _, err := r.CleanStale(); err != nil {
		return results, err
	}

	selected := m.Select(r.Filter)
	ids := make([]string, 0, len(selected))
	for _, d := range selected {
		ids = append(ids, d.ID)
	}
	removed := r.Report.RemoveRecords(ids)
	r.logger().Printf("Run %s: %d tests selected, %d prior records removed", r.RunID, len(selected), removed)

	for i, d := range selected {
		info := conformance.TestInfo{
			ID:     d.ID,
			URI:    d.Start,
			Manual: d.Manual,
			Index:  i + 1,
			Total:  len(selected),
		}
		result, err := r.runTest(ctx, d, info)
		if err != nil {
			return results, err
		}
		results.Add(result)
	}

	if r.ReportPath != "" {
		if err := r.Report.Save(r.ReportPath); err != nil {
			return results, err
		}
		r.logger().Printf("Report written to %s", r.ReportPath)
	}
	return results, nil
}

func (r *Runner) stage(d manifest.Descriptor, s Stage) {
	r.logger().Printf("[%s] %s", d.ID, s)
}

func (r *Runner) runTest(ctx context.Context, d manifest.Descriptor, info conformance.TestInfo) (conformance.TestResult, error) {
	r.stage(d, Selected)
	r.testLogger().TestStarted(info)

	files, err := r.prepare(ctx, d)
	if err != nil {
		return conformance.TestResult{}, fmt.Errorf("test %s: %w", d.ID, err)
	}
	r.stage(d, Prepared)

	result := conformance.TestResult{Test: info}
	if ov, ok := r.Overrides.Lookup(d.ID); ok {
		r.stage(d, Skipped)
		r.Report.Append(ov.Record)
		r.stage(d, Reported)
		result.Outcome = conformance.Overridden
		result.Verdict = ov.Verdict
		r.remove(files.deps...)
		if d.Automatic() {
			r.remove(files.document)
		}
		r.stage(d, Cleaned)
		r.testLogger().TestFinished(result)
		return result, nil
	}

	if d.Manual {
		r.testLogger().TestTracing(info)
		run, err := r.Interpreter.Run(ctx, files.document, harness.ModeTrace)
		if err != nil {
			return result, fmt.Errorf("test %s: %w", d.ID, err)
		}
		r.stage(d, Traced)
		result.Outcome = conformance.Traced
		result.Duration = run.Duration
		result.Output = run.Output
		r.testLogger().TestFinished(result)
		return result, nil
	}

	run, err := r.Interpreter.Run(ctx, files.document, harness.ModeRun)
	if err != nil {
		return result, fmt.Errorf("test %s: %w", d.ID, err)
	}
	r.stage(d, Executed)
	result.Duration = run.Duration
	result.Output = run.Output
	if run.Passed() {
		result.Outcome = conformance.Passed
		r.Report.AppendVerdict(d.ID, report.VerdictPass)
		r.stage(d, Reported)
		r.remove(files.deps...)
		r.remove(files.document)
		r.stage(d, Cleaned)
	} else {
		result.Outcome = conformance.Failed
		r.Report.AppendVerdict(d.ID, report.VerdictFail)
		r.stage(d, Reported)
		if r.Editor != nil {
			if err := r.Editor.Open(ctx, files.document); err != nil {
				r.logger().Printf("Could not open editor for %s: %s", files.document, err)
			}
		}
	}
	r.testLogger().TestFinished(result)
	return result, nil
}

// prepare writes the test's dependencies verbatim and its transformed entry document
// into the working directory. On error, dependencies already written are removed.
func (r *Runner) prepare(ctx context.Context, d manifest.Descriptor) (files prepared, err error) {
	defer func() {
		if err != nil {
			r.remove(files.deps...)
		}
	}()
	for _, dep := range d.Deps {
		data, err := r.Resolver.Fetch(ctx, dep)
		if err != nil {
			return files, &FetchError{URI: dep, Err: err}
		}
		target := filepath.Join(r.workDir(), path.Base(dep))
		if err = os.WriteFile(target, data, 0o644); err != nil { //nolint:gosec
			return files, err
		}
		files.deps = append(files.deps, target)
	}

	data, err := r.Resolver.Fetch(ctx, d.Start)
	if err != nil {
		return files, &FetchError{URI: d.Start, Err: err}
	}
	doc, err := document.Parse(data)
	if err != nil {
		return files, fmt.Errorf("malformed template %s: %w", d.Start, err)
	}
	if _, err = r.Engine.Transform(doc); err != nil {
		return files, err
	}
	files.document = filepath.Join(r.workDir(), DocumentName(d.Start))
	if err = document.WriteFile(doc, files.document); err != nil {
		return files, err
	}
	return files, nil
}

// DocumentName is the file name of the concrete document prepared from a template URI.
func DocumentName(templateURI string) string {
	base := path.Base(templateURI)
	return strings.TrimSuffix(base, path.Ext(base)) + ".scxml"
}

func (r *Runner) remove(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			r.logger().Printf("Could not remove %s: %s", p, err)
		}
	}
}

// CleanStale deletes files left in the working directory by earlier runs and returns
// their paths.
func (r *Runner) CleanStale() ([]string, error) {
	var removed []string
	for _, pattern := range r.Cleanup {
		matches, err := doublestar.FilepathGlob(filepath.Join(r.workDir(), pattern))
		if err != nil {
			return removed, fmt.Errorf("invalid cleanup pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if err := os.Remove(m); err != nil {
				return removed, err
			}
			removed = append(removed, m)
		}
	}
	if len(removed) > 0 {
		r.logger().Printf("Removed %d stale files from %s", len(removed), r.workDir())
	}
	return removed, nil
}
