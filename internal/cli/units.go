package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spyglass-sec/spyglass/internal/config"
	"github.com/spyglass-sec/spyglass/internal/units"
)

// NewUnitsCommand creates the units command.
func NewUnitsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List the unit catalog with effective priorities",
		Long: `List every registered unit after applying the configured include,
exclude, and priority settings. Lower priority values run first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnits(rootOpts, cmd)
		},
	}
}

// unitInfo is one catalog entry in the units report.
type unitInfo struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// unitsReport is the units command's output payload.
type unitsReport []unitInfo

// String renders the report for text output.
func (r unitsReport) String() string {
	var b strings.Builder
	for i, u := range r {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-20s priority %d", u.Name, u.Priority)
	}
	return b.String()
}

func runUnits(opts *RootOptions, cmd *cobra.Command) error {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}

	catalog := units.Catalog(cfg.FlagPattern())
	catalog, err := catalog.Filter(cfg.Units.Include, cfg.Units.Exclude)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid unit filter", err)
	}
	catalog, err = catalog.ApplyOverrides(cfg.Units.Priorities)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid priority overrides", err)
	}

	var report unitsReport
	for _, u := range catalog.Units() {
		report = append(report, unitInfo{Name: u.Name(), Priority: u.Priority()})
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Priority != report[j].Priority {
			return report[i].Priority < report[j].Priority
		}
		return report[i].Name < report[j].Name
	})

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(report)
}
