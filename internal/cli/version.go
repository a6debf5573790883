package cli

import (
	"fmt"
	stdruntime "runtime"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set by build flags).
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags).
	GitCommit = "unknown"
)

// versionReport is the version command's output payload.
type versionReport struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// String renders the report for text output.
func (r versionReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "spyglass %s\n", r.Version)
	fmt.Fprintf(&b, "Git Commit: %s\n", r.GitCommit)
	fmt.Fprintf(&b, "Go Version: %s\n", r.GoVersion)
	fmt.Fprintf(&b, "OS/Arch: %s", r.Platform)
	return b.String()
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Success(versionReport{
				Version:   Version,
				GitCommit: GitCommit,
				GoVersion: stdruntime.Version(),
				Platform:  stdruntime.GOOS + "/" + stdruntime.GOARCH,
			})
		},
	}
}
