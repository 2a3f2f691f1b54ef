package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lxsc/irp-harness/config"
	"github.com/lxsc/irp-harness/framework/conformance"
)

type commandParams struct {
	configFile     string
	filters        conformance.RegexFilters
	skipFile       string
	debug          bool
	debugAll       bool
	jUnitFile      string
	recordFailures string
	noEditor       bool
	workDir        string
	cacheDir       string
	reportFile     string
}

func newRootCommand() *cobra.Command {
	params := &commandParams{}

	cmd := &cobra.Command{
		Use:           "irp-harness",
		Short:         "Run the SCXML IRP conformance suite against the lxsc interpreter",
		Long:          "Converts the IRP test templates into Lua-datamodel SCXML documents, runs them, and updates the implementation report.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("irp-harness v%s\n", strings.TrimSpace(versionString))
			results, err := run(cmd.Context(), *params)
			if err != nil {
				return err
			}
			if !results.OK() {
				return errTestsFailed
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&params.configFile, "config", "", "YAML configuration file (default "+config.DefaultFileName+" if present)")
	fs.Var(&params.filters.MustMatch, "run", "regex pattern(s) to select test ids to run")
	fs.Var(&params.filters.MustNotMatch, "skip", "regex pattern(s) to select test ids not to run")
	fs.StringVar(&params.skipFile, "skip-file", "", "file listing test ids not to run, one per line")
	fs.BoolVar(&params.debug, "debug", false, "enable debug logging, and show interpreter output for failed tests")
	fs.BoolVar(&params.debugAll, "debug-all", false, "like --debug, and show interpreter output for all tests")
	fs.StringVar(&params.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&params.recordFailures, "record-failures", "", "write the ids of failed tests to the specified path")
	fs.BoolVar(&params.noEditor, "no-editor", false, "do not open failed test documents in the editor")
	fs.StringVar(&params.workDir, "work-dir", "", "directory for prepared test documents")
	fs.StringVar(&params.cacheDir, "cache-dir", "", "directory for downloaded suite resources")
	fs.StringVar(&params.reportFile, "report", "", "implementation report file")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the harness version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(versionString))
		},
	})

	return cmd
}
