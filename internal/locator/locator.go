// Package locator parses locators from their external representations: the
// legacy raw segment strings, JSON locator files, and HCL locator files. All
// forms converge on the api.Locator consumed by the navigator.
package locator

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentic-research/perch/api"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// ErrMalformed marks locator input that cannot be parsed into any criteria.
// It indicates a caller bug rather than a tree-shape mismatch and is the only
// condition navigation surfaces as an error.
var ErrMalformed = errors.New("malformed locator")

// ParseSegments converts the legacy raw-string form into a Locator: each
// segment is "key=value,key2=value2" with implicit Exact matching, and a
// first segment literally equal to "application" becomes the pseudo-step the
// navigator skips. Segment steps carry no per-step depth; they leave MaxDepth
// unset so that the navigator's shared descent bound applies to every step.
func ParseSegments(segments []string) (api.Locator, error) {
	loc := make(api.Locator, 0, len(segments))
	for i, seg := range segments {
		step, err := parseSegment(seg, i == 0)
		if err != nil {
			return nil, err
		}
		loc = append(loc, step)
	}
	return loc, nil
}

func parseSegment(seg string, first bool) (api.PathStep, error) {
	trimmed := strings.TrimSpace(seg)
	if first && strings.EqualFold(trimmed, api.ApplicationAttribute) {
		return segmentStep(api.Criterion{Attribute: api.ApplicationAttribute}), nil
	}
	if trimmed == "" {
		return api.PathStep{}, fmt.Errorf("%w: empty segment", ErrMalformed)
	}
	var criteria []api.Criterion
	for _, pair := range strings.Split(trimmed, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return api.PathStep{}, fmt.Errorf("%w: segment %q: expected key=value, got %q", ErrMalformed, seg, pair)
		}
		criteria = append(criteria, api.Criterion{Attribute: key, Expected: strings.TrimSpace(value)})
	}
	if len(criteria) == 0 {
		return api.PathStep{}, fmt.Errorf("%w: segment %q produced no criteria", ErrMalformed, seg)
	}
	return segmentStep(criteria...), nil
}

// segmentStep builds a step for the raw-segment form. MaxDepth stays zero so
// the navigator substitutes its shared bound, unlike api.Step which pins the
// per-step default.
func segmentStep(criteria ...api.Criterion) api.PathStep {
	return api.PathStep{Criteria: criteria, MatchAll: true, MatchType: api.Exact}
}

// hclCriterion and friends mirror the api types for hclsimple decoding.
type hclCriterion struct {
	Attribute string  `hcl:"attribute"`
	Value     string  `hcl:"value"`
	MatchType *string `hcl:"match_type,optional"`
}

type hclStep struct {
	MatchAll  *bool          `hcl:"match_all,optional"`
	MatchType *string        `hcl:"match_type,optional"`
	MaxDepth  *int           `hcl:"max_depth,optional"`
	Criteria  []hclCriterion `hcl:"criterion,block"`
}

type hclLocator struct {
	Steps []hclStep `hcl:"step,block"`
}

// LoadFile reads a locator definition from fsys. The extension selects the
// format: .hcl decodes step/criterion blocks, .json decodes an api.Locator
// array. Parse failures wrap ErrMalformed.
func LoadFile(fsys billy.Filesystem, path string) (api.Locator, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read locator file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return parseHCL(path, data)
	case ".json":
		var loc api.Locator
		if err := json.Unmarshal(data, &loc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		return loc, nil
	default:
		return nil, fmt.Errorf("%w: unsupported locator format %q", ErrMalformed, filepath.Ext(path))
	}
}

func parseHCL(path string, data []byte) (api.Locator, error) {
	var file hclLocator
	if err := hclsimple.Decode(path, data, nil, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	loc := make(api.Locator, 0, len(file.Steps))
	for _, s := range file.Steps {
		step := api.PathStep{MatchAll: true, MatchType: api.Exact, MaxDepth: api.DefaultMaxDepth}
		if s.MatchAll != nil {
			step.MatchAll = *s.MatchAll
		}
		if s.MatchType != nil {
			mt, err := api.ParseMatchType(*s.MatchType)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
			}
			step.MatchType = mt
		}
		if s.MaxDepth != nil {
			step.MaxDepth = *s.MaxDepth
		}
		for _, c := range s.Criteria {
			crit := api.Criterion{Attribute: c.Attribute, Expected: c.Value}
			if c.MatchType != nil {
				mt, err := api.ParseMatchType(*c.MatchType)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
				}
				crit.MatchType = &mt
			}
			step.Criteria = append(step.Criteria, crit)
		}
		loc = append(loc, step)
	}
	return loc, nil
}
