// Package cmd implements the perch command line: snapshot inspection, locator
// resolution, and the MCP server surface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agentic-research/perch/internal/derive"
	"github.com/agentic-research/perch/internal/element"
	"github.com/agentic-research/perch/internal/snapshot"
	"github.com/agentic-research/perch/internal/trace"
	"github.com/agentic-research/perch/internal/tracestore"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

var (
	traceVerbose bool
	traceDBPath  string
)

var rootCmd = &cobra.Command{
	Use:           "perch",
	Short:         "Perch: element matching and path navigation for UI accessibility trees",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&traceVerbose, "trace", false, "emit navigation trace events to stderr")
	rootCmd.PersistentFlags().StringVar(&traceDBPath, "trace-db", "", "record trace events into a SQLite database at this path")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// rootFS is the filesystem snapshots and locator files load from.
func rootFS() billy.Filesystem {
	return osfs.New("/")
}

// absPath resolves a user-supplied path against the rootFS chroot.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}

// loadSession opens a snapshot dump.
func loadSession(path string) (*snapshot.Session, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}
	return snapshot.Load(rootFS(), abs)
}

// buildSink assembles the diagnostics sink from the persistent flags. The
// returned closer flushes the SQLite recorder if one was requested.
func buildSink() (trace.Sink, func(), error) {
	var sinks trace.Multi
	if traceVerbose {
		sinks = append(sinks, trace.NewSlogSink(os.Stderr, slog.LevelDebug))
	}
	closer := func() {}
	if traceDBPath != "" {
		rec, err := tracestore.Open(traceDBPath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, rec)
		closer = func() { _ = rec.Close() }
	}
	if len(sinks) == 0 {
		return trace.NopSink{}, closer, nil
	}
	return sinks, closer, nil
}

// describe renders the caller-facing summary of a matched element.
func describe(el element.Element) map[string]any {
	pid, _ := el.PID()
	actions, _ := el.ActionNames()
	return map[string]any{
		"id":         el.ID(),
		"role":       element.Role(el),
		"subrole":    element.Subrole(el),
		"identifier": element.Identifier(el),
		"name":       derive.ComputedName(el),
		"path":       derive.PathString(el),
		"clickable":  derive.Clickable(el),
		"actions":    actions,
		"pid":        pid,
	}
}
