package cmd

import (
	"fmt"

	"github.com/agentic-research/perch/api"
	"github.com/agentic-research/perch/internal/locator"
	"github.com/agentic-research/perch/internal/navigate"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var (
	findSegments []string
	findLocator  string
	findMaxDepth int
)

func init() {
	findCmd.Flags().StringArrayVarP(&findSegments, "path", "p", nil,
		`path segment in the legacy "key=value,key2=value2" form (repeatable)`)
	findCmd.Flags().StringVarP(&findLocator, "locator", "l", "",
		"locator file (.hcl or .json) instead of --path segments")
	findCmd.Flags().IntVar(&findMaxDepth, "max-depth", api.DefaultMaxDepth,
		"shared descent bound for steps without their own")
	rootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:   "find [snapshot.json]",
	Short: "Resolve a locator against a snapshot and print the matched element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = sess.Close() }()

		var loc api.Locator
		switch {
		case findLocator != "":
			abs, err := absPath(findLocator)
			if err != nil {
				return err
			}
			loc, err = locator.LoadFile(rootFS(), abs)
			if err != nil {
				return err
			}
		case len(findSegments) > 0:
			loc, err = locator.ParseSegments(findSegments)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("either --path or --locator is required")
		}

		sink, closeSink, err := buildSink()
		if err != nil {
			return err
		}
		defer closeSink()

		nav := navigate.New(sink)
		found, err := nav.Navigate(sess.Root(), loc, findMaxDepth)
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("no matching element")
		}
		fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(describe(found), 2))
		return nil
	},
}
