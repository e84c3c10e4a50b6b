package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclBody is the shared shape of the file root and pipeline blocks.
type hclBody struct {
	Items     []*hclItem     `hcl:"item,block"`
	Assets    []*hclAsset    `hcl:"asset,block"`
	Pipelines []*hclPipeline `hcl:"pipeline,block"`
}

type hclItem struct {
	Path string         `hcl:"path,label"`
	Text *string        `hcl:"text,optional"`
	Data hcl.Expression `hcl:"data,optional"`
}

type hclAsset struct {
	Input  string `hcl:"input"`
	Output string `hcl:"output"`
}

type hclPipeline struct {
	Input     string         `hcl:"input,label"`
	Output    *string        `hcl:"output,optional"`
	Items     []*hclItem     `hcl:"item,block"`
	Assets    []*hclAsset    `hcl:"asset,block"`
	Pipelines []*hclPipeline `hcl:"pipeline,block"`
}

func parseHCL(name string, data []byte) (*Pipeline, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", name, diags)
	}

	var body hclBody
	if diags := gohcl.DecodeBody(file.Body, nil, &body); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", name, diags)
	}
	return convertBody("", "", body.Items, body.Assets, body.Pipelines)
}

func convertBody(input, output string, items []*hclItem, assets []*hclAsset, pipelines []*hclPipeline) (*Pipeline, error) {
	p := &Pipeline{Input: input, Output: output}

	for _, it := range items {
		data, err := expressionData(it.Data)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", it.Path, err)
		}
		p.Items = append(p.Items, Item{Path: it.Path, Text: it.Text, Data: data})
	}
	for _, a := range assets {
		p.Assets = append(p.Assets, Asset{Input: a.Input, Output: a.Output})
	}
	for _, child := range pipelines {
		out := ""
		if child.Output != nil {
			out = *child.Output
		}
		c, err := convertBody(child.Input, out, child.Items, child.Assets, child.Pipelines)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", child.Input, err)
		}
		p.Pipelines = append(p.Pipelines, *c)
	}
	return p, nil
}

// expressionData evaluates an item's data attribute. Absent or null data
// yields nil.
func expressionData(expr hcl.Expression) (map[string]any, error) {
	if expr == nil {
		return nil, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("data: %w", diags)
	}
	if v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("data must be an object, got %s", v.Type().FriendlyName())
	}
	native, err := ctyToNative(v)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	m, _ := native.(map[string]any)
	return m, nil
}

// ctyToNative converts a cty.Value to plain Go values. Whole numbers become
// int so they compare like YAML-decoded data.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			var i int
			if err := gocty.FromCtyValue(v, &i); err == nil {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}
