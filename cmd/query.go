package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query [snapshot.json] [jsonpath]",
	Short: "Run a JSONPath expression over the raw snapshot",
	Long: `Run a JSONPath expression against the decoded snapshot dump, e.g.

  perch query dump.json '$.element.children[*].attributes.AXRole'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = sess.Close() }()

		expr, err := jp.ParseString(args[1])
		if err != nil {
			return fmt.Errorf("invalid jsonpath %q: %w", args[1], err)
		}
		results := expr.Get(sess.Raw())
		fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(results, 2))
		return nil
	},
}
