package locator

import (
	"testing"

	"github.com/agentic-research/perch/api"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegments(t *testing.T) {
	loc, err := ParseSegments([]string{"application", "role=AXWindow", "role=AXButton,title=Save"})
	require.NoError(t, err)
	require.Len(t, loc, 3)

	assert.Equal(t, api.ApplicationAttribute, loc[0].Criteria[0].Attribute)

	require.Len(t, loc[1].Criteria, 1)
	assert.Equal(t, "role", loc[1].Criteria[0].Attribute)
	assert.Equal(t, "AXWindow", loc[1].Criteria[0].Expected)

	require.Len(t, loc[2].Criteria, 2)
	assert.Equal(t, "title", loc[2].Criteria[1].Attribute)
	assert.Equal(t, "Save", loc[2].Criteria[1].Expected)
	assert.True(t, loc[2].MatchAll)
	assert.Equal(t, api.Exact, loc[2].MatchType)
	// Segment steps leave MaxDepth unset so the navigator's shared descent
	// bound applies.
	assert.Zero(t, loc[2].MaxDepth)
	assert.Zero(t, loc[0].MaxDepth)
}

func TestParseSegments_ValueMayContainEquals(t *testing.T) {
	loc, err := ParseSegments([]string{"identifier=a=b"})
	require.NoError(t, err)
	assert.Equal(t, "a=b", loc[0].Criteria[0].Expected)
}

func TestParseSegments_ApplicationOnlyFirst(t *testing.T) {
	// "application" is only recognized as the first segment; later on it
	// must parse as key=value like everything else.
	_, err := ParseSegments([]string{"role=AXWindow", "application"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseSegments_Malformed(t *testing.T) {
	for _, segs := range [][]string{
		{""},
		{"   "},
		{"no-equals"},
		{"=value"},
		{","},
	} {
		_, err := ParseSegments(segs)
		assert.ErrorIs(t, err, ErrMalformed, "segments %q", segs)
	}
}

func TestLoadFile_HCL(t *testing.T) {
	src := `
step {
  criterion {
    attribute = "role"
    value     = "AXWindow"
  }
}

step {
  match_type = "Contains"
  max_depth  = 4

  criterion {
    attribute = "name"
    value     = "Save"
  }
  criterion {
    attribute  = "identifier"
    value      = "save-btn"
    match_type = "Exact"
  }
}
`
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "loc.hcl", []byte(src), 0o644))

	loc, err := LoadFile(fsys, "loc.hcl")
	require.NoError(t, err)
	require.Len(t, loc, 2)

	assert.True(t, loc[0].MatchAll)
	assert.Equal(t, api.Exact, loc[0].MatchType)
	assert.Equal(t, api.DefaultMaxDepth, loc[0].MaxDepth)

	assert.Equal(t, api.Contains, loc[1].MatchType)
	assert.Equal(t, 4, loc[1].MaxDepth)
	require.Len(t, loc[1].Criteria, 2)
	require.NotNil(t, loc[1].Criteria[1].MatchType)
	assert.Equal(t, api.Exact, *loc[1].Criteria[1].MatchType)
}

func TestLoadFile_JSON(t *testing.T) {
	src := `[
  {"criteria": [{"attribute": "role", "expected": "AXButton"}]},
  {"criteria": [{"attribute": "title", "expected": "save", "match_type": "Prefix"}],
   "match_all": false, "max_depth": 3}
]`
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "loc.json", []byte(src), 0o644))

	loc, err := LoadFile(fsys, "loc.json")
	require.NoError(t, err)
	require.Len(t, loc, 2)

	// Omitted fields pick up the documented defaults.
	assert.True(t, loc[0].MatchAll)
	assert.Equal(t, api.DefaultMaxDepth, loc[0].MaxDepth)

	assert.False(t, loc[1].MatchAll)
	assert.Equal(t, 3, loc[1].MaxDepth)
	require.NotNil(t, loc[1].Criteria[0].MatchType)
	assert.Equal(t, api.Prefix, *loc[1].Criteria[0].MatchType)
}

func TestLoadFile_Malformed(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "bad.json", []byte("{not json"), 0o644))
	require.NoError(t, util.WriteFile(fsys, "loc.yaml", []byte("steps: []"), 0o644))

	_, err := LoadFile(fsys, "bad.json")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = LoadFile(fsys, "loc.yaml")
	assert.ErrorIs(t, err, ErrMalformed)
}
