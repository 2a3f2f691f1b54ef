package main

import (
	"bufio"
	"context"
	_ "embed" // this is required in order for go:embed to work
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"

	"github.com/lxsc/irp-harness/config"
	"github.com/lxsc/irp-harness/framework"
	"github.com/lxsc/irp-harness/framework/conformance"
	"github.com/lxsc/irp-harness/framework/harness"
	"github.com/lxsc/irp-harness/manifest"
	"github.com/lxsc/irp-harness/report"
	"github.com/lxsc/irp-harness/resource"
	"github.com/lxsc/irp-harness/suite"
	"github.com/lxsc/irp-harness/transform"
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

var errTestsFailed = errors.New("some tests failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, params commandParams) (*conformance.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	cfg, err := loadConfig(params)
	if err != nil {
		return nil, err
	}

	mainDebugLogger := framework.NullLogger()
	if params.debug || params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	resolver, err := resource.NewCachingResolver(cfg.BaseURL, cfg.CacheDir,
		resource.WithLogger(framework.LoggerWithPrefix(mainDebugLogger, "[resource] ")))
	if err != nil {
		return nil, err
	}
	engine, err := transform.New()
	if err != nil {
		return nil, err
	}
	m, err := suite.LoadManifest(ctx, resolver, cfg.Manifest)
	if err != nil {
		return nil, err
	}
	overrides, err := manifest.LoadOverrides(cfg.Overrides)
	if err != nil {
		return nil, err
	}
	for _, id := range overrides.Orphans(m) {
		fmt.Fprintf(os.Stderr, "Warning: %s has an override for test %s, which is not in the manifest\n", cfg.Overrides, id)
	}
	rep, err := report.Load(cfg.Report, cfg.ReportRoot)
	if err != nil {
		return nil, err
	}
	quiet, err := cfg.QuietPatterns()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	mainDebugLogger.Printf("Run id %s", runID)

	var testLogger conformance.TestLogger
	consoleLogger := conformance.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	if params.jUnitFile == "" {
		testLogger = consoleLogger
	} else {
		testLogger = &conformance.MultiTestLogger{Loggers: []conformance.TestLogger{
			consoleLogger,
			conformance.NewJUnitTestLogger(params.jUnitFile, map[string]string{
				"tests.suite.baseURL":    cfg.BaseURL,
				"tests.interpreter.argv": strings.Join(cfg.Interpreter.Command, " "),
			}, params.filters),
		}}
	}

	conformance.PrintFilterDescription(params.filters)

	runner := &suite.Runner{
		Resolver: resolver,
		Engine:   engine,
		Interpreter: &harness.ProcessInterpreter{
			Command:     cfg.Interpreter.Command,
			TraceFlag:   cfg.Interpreter.TraceFlag,
			Timeout:     cfg.Interpreter.Timeout,
			TraceOutput: os.Stdout,
			Quiet:       quiet,
			Logger:      framework.LoggerWithPrefix(mainDebugLogger, "[interpreter] "),
		},
		Editor:     harness.ProcessEditor{Command: cfg.Editor},
		Overrides:  overrides,
		Report:     rep,
		ReportPath: cfg.Report,
		WorkDir:    cfg.WorkDir,
		Cleanup:    cfg.Cleanup,
		Filter:     params.filters.Match,
		TestLogger: testLogger,
		Logger:     mainDebugLogger,
		RunID:      runID,
	}
	results, err := runner.Run(ctx, m)
	if err != nil {
		return nil, err
	}

	logErr := testLogger.EndLog(results)
	conformance.PrintResults(results)
	if logErr != nil {
		return nil, fmt.Errorf("error writing log: %w", logErr)
	}

	if params.recordFailures != "" {
		if err := writeFailureList(params.recordFailures, results); err != nil {
			return nil, err
		}
	}

	return &results, nil
}

// writeFailureList writes the ids of failed tests one per line, in the format read by
// --skip-file.
func writeFailureList(path string, results conformance.Results) error {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("cannot create failure list: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, test := range results.Failures {
		fmt.Fprintln(w, test.Test.ID)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write failure list: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot write failure list: %w", err)
	}
	return nil
}

func loadConfig(params commandParams) (config.Config, error) {
	cfg, err := config.Load(params.configFile)
	if err != nil {
		return cfg, err
	}
	if params.workDir != "" {
		cfg.WorkDir = params.workDir
	}
	if params.cacheDir != "" {
		cfg.CacheDir = params.cacheDir
	}
	if params.reportFile != "" {
		cfg.Report = params.reportFile
	}
	if params.noEditor {
		cfg.Editor = nil
	}
	return cfg, cfg.Validate()
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %w", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Ignore blank lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := params.filters.MustNotMatch.AddExact(line); err != nil {
			return fmt.Errorf("cannot parse suppression: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %w", err)
	}
	return nil
}
