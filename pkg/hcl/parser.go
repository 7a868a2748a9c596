package hcl

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

// HCLHeader holds the top-level plan attributes. Everything else is decoded in a
// second pass once total_duration is known, so remaining() can resolve against it.
type HCLHeader struct {
	Title         *string  `hcl:"title,optional"`
	TotalDuration *float64 `hcl:"total_duration,optional"`
	Remain        hcl.Body `hcl:",remain"`
}

// HCLStreams is the body left after the header.
type HCLStreams struct {
	Streams []HCLStream `hcl:"stream,block"`
}

// HCLStream is one `stream "name" { ... }` block.
type HCLStream struct {
	Name         string        `hcl:"name,label"`
	ID           *string       `hcl:"id,optional"`
	Kind         *string       `hcl:"kind,optional"`
	CheckOverlap *bool         `hcl:"check_overlap,optional"`
	Unique       *bool         `hcl:"unique,optional"`
	Color        *string       `hcl:"color,optional"`
	Intervals    []HCLInterval `hcl:"interval,block"`
	Repeating    *HCLRepeating `hcl:"repeating,block"`
}

// HCLInterval is an `interval { ... }` block.
type HCLInterval struct {
	Start     float64  `hcl:"start"`
	CastDelay *float64 `hcl:"cast_delay,optional"`
	Duration  *float64 `hcl:"duration,optional"`
}

// HCLRepeating is a `repeating { ... }` block.
type HCLRepeating struct {
	Start     *float64 `hcl:"start,optional"`
	CastDelay *float64 `hcl:"cast_delay,optional"`
	Gap       *float64 `hcl:"gap,optional"`
	Duration  *float64 `hcl:"duration,optional"`
}

// ParseDocument parses an HCL plan.
func ParseDocument(src []byte) (*plan.Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, "plan.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decodeFile(file)
}

func decodeFile(file *hcl.File) (*plan.Document, error) {
	var header HCLHeader
	diags := gohcl.DecodeBody(file.Body, newEvalContext(plan.DefaultTotalDuration), &header)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	doc := &plan.Document{
		TotalDuration: plan.DefaultTotalDuration,
		Streams:       []plan.Stream{},
	}
	if header.Title != nil {
		doc.ChartTitle = *header.Title
	}
	if header.TotalDuration != nil {
		doc.TotalDuration = *header.TotalDuration
	}

	var body HCLStreams
	diags = gohcl.DecodeBody(header.Remain, newEvalContext(doc.TotalDuration), &body)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode streams: %s", diags.Error())
	}

	for _, hs := range body.Streams {
		doc.Streams = append(doc.Streams, convertStream(hs))
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func convertStream(hs HCLStream) plan.Stream {
	s := plan.Stream{
		ID:           plan.NewStreamID(),
		Name:         hs.Name,
		Kind:         plan.KindOneShot,
		CheckOverlap: true,
		Intervals:    make([]timeline.EffectInterval, 0, len(hs.Intervals)),
		Repeating: timeline.RepeatingEventSpec{
			Start:    timeline.MinElapsed,
			Gap:      plan.DefaultGap,
			Duration: plan.DefaultDuration,
		},
	}
	if hs.ID != nil {
		s.ID = *hs.ID
	}
	if hs.Kind != nil {
		s.Kind = plan.Kind(*hs.Kind)
	}
	if hs.CheckOverlap != nil {
		s.CheckOverlap = *hs.CheckOverlap
	}
	if hs.Unique != nil {
		s.Unique = *hs.Unique
	}
	if hs.Color != nil {
		s.Color = *hs.Color
	}

	for _, hi := range hs.Intervals {
		iv := timeline.EffectInterval{
			Start:    math.Max(timeline.MinElapsed, hi.Start),
			Duration: plan.DefaultDuration,
		}
		if hi.CastDelay != nil {
			iv.CastDelay = math.Max(0, *hi.CastDelay)
		}
		if hi.Duration != nil {
			iv.Duration = math.Max(0, *hi.Duration)
		}
		s.Intervals = append(s.Intervals, iv)
	}

	if r := hs.Repeating; r != nil {
		if r.Start != nil {
			s.Repeating.Start = *r.Start
		}
		if r.CastDelay != nil {
			s.Repeating.CastDelay = *r.CastDelay
		}
		if r.Gap != nil {
			s.Repeating.Gap = *r.Gap
		}
		if r.Duration != nil {
			s.Repeating.Duration = *r.Duration
		}
	}
	return s
}

// newEvalContext exposes clock("M:SS") and remaining(x) plus the variable total.
func newEvalContext(total float64) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"total": cty.NumberFloatVal(total),
		},
		Functions: map[string]function.Function{
			"clock": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "clock",
						Type: cty.String,
					},
				},
				Type: function.StaticReturnType(cty.Number),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					v, err := timeline.ParseClock(args[0].AsString())
					if err != nil {
						return cty.NilVal, err
					}
					return cty.NumberFloatVal(v), nil
				},
			}),
			"remaining": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "remaining",
						Type: cty.DynamicPseudoType,
					},
				},
				Type: function.StaticReturnType(cty.Number),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					r, err := secondsOf(args[0])
					if err != nil {
						return cty.NilVal, err
					}
					return cty.NumberFloatVal(timeline.FromRemaining(r, total)), nil
				},
			}),
		},
	}
}

func secondsOf(v cty.Value) (float64, error) {
	if v.IsNull() || !v.IsKnown() {
		return 0, fmt.Errorf("remaining() needs a value")
	}
	switch v.Type() {
	case cty.String:
		return timeline.ParseClock(v.AsString())
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	default:
		return 0, fmt.Errorf("remaining() takes a clock string or a number, got %s", v.Type().FriendlyName())
	}
}

// IsHCL attempts to detect if the given content is in HCL format
func IsHCL(content []byte) bool {
	_, diags := hclsyntax.ParseConfig(content, "", hcl.Pos{Line: 1, Column: 1})
	return !diags.HasErrors()
}
