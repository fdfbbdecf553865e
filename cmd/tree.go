package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentic-research/perch/internal/derive"
	"github.com/agentic-research/perch/internal/element"
	"github.com/spf13/cobra"
)

var (
	treeRole  string
	treeDepth int
)

func init() {
	treeCmd.Flags().StringVar(&treeRole, "role", "", "list only elements with this role (uses the session role index)")
	treeCmd.Flags().IntVar(&treeDepth, "depth", 0, "limit printed depth (0 = unlimited)")
	rootCmd.AddCommand(treeCmd)
}

var treeCmd = &cobra.Command{
	Use:   "tree [snapshot.json]",
	Short: "Print the element tree of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = sess.Close() }()

		out := cmd.OutOrStdout()
		if treeRole != "" {
			for _, el := range sess.FindByRole(treeRole) {
				fmt.Fprintln(out, derive.PathString(el))
			}
			return nil
		}
		fmt.Fprintf(out, "%s (pid %d)\n", sess.AppName(), sess.PID())
		return printTree(out, sess.Root(), 0)
	},
}

func printTree(out io.Writer, el element.Element, depth int) error {
	if treeDepth > 0 && depth > treeDepth {
		return nil
	}
	fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), elementLine(el))
	children, err := el.Children()
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := printTree(out, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func elementLine(el element.Element) string {
	line := element.Role(el)
	if line == "" {
		line = "?"
	}
	if name := derive.ComputedName(el); name != "" {
		line += fmt.Sprintf(" %q", name)
	}
	if id := element.Identifier(el); id != "" {
		line += " (" + id + ")"
	}
	if derive.Clickable(el) {
		line += " [clickable]"
	}
	return line
}
