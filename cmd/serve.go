package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentic-research/perch/internal/derive"
	"github.com/agentic-research/perch/internal/element"
	"github.com/agentic-research/perch/internal/navigate"
	"github.com/agentic-research/perch/internal/snapshot"
	"github.com/agentic-research/perch/internal/trace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [snapshot.json]",
	Short: "Serve the snapshot over MCP stdio for agent tooling",
	Long: `Expose a loaded snapshot through the Model Context Protocol so agent
clients can locate elements by declarative criteria. Tools:

  find_element  resolve a legacy path-hint locator to one element
  list_tree     print the element tree
  element_info  dump every raw attribute of a located element`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = sess.Close() }()

		sink, closeSink, err := buildSink()
		if err != nil {
			return err
		}
		defer closeSink()

		return server.ServeStdio(newMCPServer(sess, sink))
	},
}

func newMCPServer(sess *snapshot.Session, sink trace.Sink) *server.MCPServer {
	s := server.NewMCPServer("perch", "0.1.0", server.WithToolCapabilities(false))
	nav := navigate.New(sink)

	findTool := mcp.NewTool("find_element",
		mcp.WithDescription(`Locate one element by a path hint. The path is a
sequence of "/"-separated segments, each "key=value,key2=value2"; a leading
"application" segment marks root context.`),
		mcp.WithString("path", mcp.Required(),
			mcp.Description(`Path hint, e.g. "application/role=AXWindow/role=AXButton,title=Save"`)),
		mcp.WithNumber("max_depth",
			mcp.Description("Shared descent bound for steps (default 1)")),
	)
	s.AddTool(findTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		found, err := nav.NavigateSegments(sess.Root(), splitPath(path), req.GetInt("max_depth", 1))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if found == nil {
			return mcp.NewToolResultText("no matching element"), nil
		}
		return mcp.NewToolResultText(oj.JSON(describe(found), 2)), nil
	})

	treeTool := mcp.NewTool("list_tree",
		mcp.WithDescription("Render the element tree, one element per line with role, name, and identifier."),
		mcp.WithNumber("depth", mcp.Description("Limit printed depth (0 = unlimited)")),
	)
	s.AddTool(treeTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (pid %d)\n", sess.AppName(), sess.PID())
		renderTree(&sb, sess.Root(), 0, req.GetInt("depth", 0))
		return mcp.NewToolResultText(sb.String()), nil
	})

	infoTool := mcp.NewTool("element_info",
		mcp.WithDescription("Dump every raw attribute of the element a path hint resolves to."),
		mcp.WithString("path", mcp.Required(),
			mcp.Description("Path hint in the find_element form")),
	)
	s.AddTool(infoTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		found, err := nav.NavigateSegments(sess.Root(), splitPath(path), 1)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if found == nil {
			return mcp.NewToolResultText("no matching element"), nil
		}
		info := describe(found)
		info["name_with_value"] = derive.ComputedNameWithValue(found)
		info["attributes"] = rawAttributes(found)
		return mcp.NewToolResultText(oj.JSON(info, 2)), nil
	})

	return s
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func renderTree(sb *strings.Builder, el element.Element, depth, maxDepth int) {
	if maxDepth > 0 && depth > maxDepth {
		return
	}
	fmt.Fprintf(sb, "%s%s\n", strings.Repeat("  ", depth), elementLine(el))
	children, err := el.Children()
	if err != nil {
		return
	}
	for _, child := range children {
		renderTree(sb, child, depth+1, maxDepth)
	}
}

// rawAttributes reads the well-known attribute set off an element. The
// open-ended accessor has no enumeration operation, so the dump covers the
// statically known names.
func rawAttributes(el element.Element) map[string]any {
	names := []string{
		element.AttrRole, element.AttrSubrole, element.AttrTitle,
		element.AttrDescription, element.AttrIdentifier, element.AttrValue,
		element.AttrEnabled, element.AttrFocused, element.AttrHidden,
		element.AttrBusy, element.AttrMain, element.AttrDOMClassList,
		element.AttrDOMIdentifier, element.AttrAllowedValues,
	}
	attrs := make(map[string]any, len(names))
	for _, name := range names {
		if v, err := el.Attribute(name); err == nil {
			attrs[name] = v.Text()
		}
	}
	return attrs
}
