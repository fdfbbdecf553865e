package tests

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/agentic-research/perch/api"
	"github.com/agentic-research/perch/internal/derive"
	"github.com/agentic-research/perch/internal/element"
	"github.com/agentic-research/perch/internal/locator"
	"github.com/agentic-research/perch/internal/navigate"
	"github.com/agentic-research/perch/internal/snapshot"
	"github.com/agentic-research/perch/internal/trace"
	"github.com/agentic-research/perch/internal/tracestore"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const editorDump = `{
  "app_name": "TextEdit",
  "pid": 7001,
  "element": {
    "attributes": {"AXRole": "AXApplication", "AXTitle": "TextEdit"},
    "children": [
      {
        "attributes": {"AXRole": "AXWindow", "AXTitle": "Untitled", "AXIdentifier": "main-window", "AXMain": true},
        "children": [
          {
            "attributes": {"AXRole": "AXToolbar", "AXDOMClassList": ["toolbar", "top"]},
            "children": [
              {
                "attributes": {"AXRole": "AXButton", "AXTitle": "Save", "AXIdentifier": "save-btn", "AXEnabled": true},
                "actions": ["AXPress"]
              },
              {
                "attributes": {"AXRole": "AXButton", "AXTitle": "Cancel", "AXIdentifier": "cancel-btn"},
                "actions": ["AXPress"]
              }
            ]
          },
          {
            "attributes": {"AXRole": "AXTextArea", "AXValue": "hello world", "AXFocused": true}
          }
        ]
      }
    ]
  }
}`

const saveLocatorHCL = `
step {
  criterion {
    attribute = "application"
    value     = ""
  }
}

step {
  criterion {
    attribute = "identifier"
    value     = "main-window"
  }
}

step {
  max_depth = 3

  criterion {
    attribute = "role"
    value     = "AXButton"
  }
  criterion {
    attribute = "title"
    value     = "Save"
  }
}
`

func loadEditor(t *testing.T) *snapshot.Session {
	t.Helper()
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "editor.json", []byte(editorDump), 0o644))
	sess, err := snapshot.Load(fsys, "editor.json")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestEndToEnd_HCLLocatorAgainstSnapshot(t *testing.T) {
	sess := loadEditor(t)

	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "save.hcl", []byte(saveLocatorHCL), 0o644))
	loc, err := locator.LoadFile(fsys, "save.hcl")
	require.NoError(t, err)

	nav := navigate.New(trace.NewSlogSink(nil, slog.LevelError))
	found, err := nav.Navigate(sess.Root(), loc, 1)
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, "save-btn", element.Identifier(found))
	assert.True(t, derive.Clickable(found))
	assert.Equal(t, "AXApplication[TextEdit]/AXWindow[Untitled]/AXToolbar/AXButton[Save]",
		derive.PathString(found))
}

func TestEndToEnd_LegacySegmentsWithSelfMatch(t *testing.T) {
	sess := loadEditor(t)
	nav := navigate.New(nil)

	// Step one descends into the window; step two self-matches it, since
	// no child carries the identifier.
	root, err := nav.NavigateSegments(sess.Root(),
		[]string{"application", "role=AXWindow", "identifier=main-window"}, 1)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "Untitled", element.Title(root))
}

func TestEndToEnd_TraceRecorderCapturesNavigation(t *testing.T) {
	sess := loadEditor(t)

	rec, err := tracestore.Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	defer func() { _ = rec.Close() }()

	nav := navigate.New(rec)
	found, err := nav.NavigateSegments(sess.Root(),
		[]string{"role=AXWindow", "role=AXTextArea"}, 1)
	require.NoError(t, err)
	require.NotNil(t, found)

	done, err := rec.Events("navigate.done")
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Contains(t, done[0].Attrs, `"matched":true`)

	steps, err := rec.Events("step.start")
	require.NoError(t, err)
	assert.Len(t, steps, 2)
}

func TestEndToEnd_DeepSearchFindsCancelFromRoot(t *testing.T) {
	sess := loadEditor(t)
	nav := navigate.New(nil)

	step := api.Step(
		api.Criterion{Attribute: "role", Expected: "AXButton"},
		api.Criterion{Attribute: "name", Expected: "Cancel"},
	)
	step.MaxDepth = 5

	found, err := nav.Navigate(sess.Root(), api.Locator{step}, 1)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "cancel-btn", element.Identifier(found))
}

func TestEndToEnd_NoMatchIsAbsenceNotError(t *testing.T) {
	sess := loadEditor(t)
	nav := navigate.New(nil)

	found, err := nav.NavigateSegments(sess.Root(), []string{"role=AXSlider"}, 1)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestEndToEnd_StaleElementDegrades(t *testing.T) {
	sess := loadEditor(t)
	nav := navigate.New(nil)

	windows := sess.FindByRole("AXWindow")
	require.Len(t, windows, 1)
	require.True(t, sess.Invalidate(windows[0]))

	// The window reads as unreadable; matching degrades to absence and the
	// navigation reports no match instead of failing hard.
	found, err := nav.NavigateSegments(sess.Root(), []string{"role=AXWindow"}, 1)
	require.NoError(t, err)
	assert.Nil(t, found)
}
