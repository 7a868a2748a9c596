package hcl

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

// FormatDocument renders doc in the format ParseDocument reads.
// Starts are written as elapsed seconds so the round trip is exact.
func FormatDocument(doc plan.Document) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("title", cty.StringVal(doc.ChartTitle))
	root.SetAttributeValue("total_duration", cty.NumberFloatVal(doc.TotalDuration))

	for _, s := range doc.Streams {
		root.AppendNewline()
		block := root.AppendNewBlock("stream", []string{s.Name})
		body := block.Body()
		body.SetAttributeValue("id", cty.StringVal(s.ID))
		body.SetAttributeValue("kind", cty.StringVal(string(s.Kind)))
		body.SetAttributeValue("check_overlap", cty.BoolVal(s.CheckOverlap))
		if s.Unique {
			body.SetAttributeValue("unique", cty.True)
		}
		if s.Color != "" {
			body.SetAttributeValue("color", cty.StringVal(s.Color))
		}

		for _, iv := range s.Intervals {
			writeInterval(body.AppendNewBlock("interval", nil).Body(), iv)
		}

		rep := body.AppendNewBlock("repeating", nil).Body()
		rep.SetAttributeValue("start", cty.NumberFloatVal(s.Repeating.Start))
		if s.Repeating.CastDelay != 0 {
			rep.SetAttributeValue("cast_delay", cty.NumberFloatVal(s.Repeating.CastDelay))
		}
		rep.SetAttributeValue("gap", cty.NumberFloatVal(s.Repeating.Gap))
		rep.SetAttributeValue("duration", cty.NumberFloatVal(s.Repeating.Duration))
	}

	return f.Bytes()
}

func writeInterval(body *hclwrite.Body, iv timeline.EffectInterval) {
	body.SetAttributeValue("start", cty.NumberFloatVal(iv.Start))
	if iv.CastDelay != 0 {
		body.SetAttributeValue("cast_delay", cty.NumberFloatVal(iv.CastDelay))
	}
	body.SetAttributeValue("duration", cty.NumberFloatVal(iv.Duration))
}
