package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Release metadata. Overridden at build time via
// -ldflags "-X main.version=... -X main.revision=...".
// Plain `go install` builds fall back to the module build info.
var (
	version  = ""
	revision = ""
)

// getVersion resolves the release version, preferring ldflags over the
// module version recorded by the Go toolchain.
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getRevision resolves the VCS revision, shortened to 7 characters,
// with a "+dirty" suffix when the working tree had local changes.
func getRevision() string {
	if revision != "" {
		return revision
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	rev, dirty := "unknown", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if dirty {
		rev += "+dirty"
	}
	return rev
}

// getGoVersion reports the toolchain the binary was built with.
func getGoVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the serpdigest version, VCS revision, and Go toolchain used for the build.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "serpdigest %s (rev %s, %s)\n",
				getVersion(), getRevision(), getGoVersion())
		},
	}
}
