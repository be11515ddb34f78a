// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse decodes a catalog from HCL. Each pattern is a labeled block:
//
//	pattern "canonicalize_path_lookup" {
//	  match    = "..."
//	  captures = ["dir", "file"]
//	  replace  = "..."
//	}
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Catalog, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "catalog.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclPattern struct {
		Name     string   `hcl:"name,label"`
		Match    string   `hcl:"match"`
		Captures []string `hcl:"captures,optional"`
		Replace  string   `hcl:"replace"`
	}
	type hclCatalog struct {
		Patterns []hclPattern `hcl:"pattern,block"`
	}

	// Decode HCL
	var hclCat hclCatalog
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCat)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cat := &Catalog{}
	for _, hp := range hclCat.Patterns {
		cat.Patterns = append(cat.Patterns, Pattern{
			Name:     hp.Name,
			Match:    hp.Match,
			Captures: hp.Captures,
			Replace:  hp.Replace,
		})
	}

	return cat, nil
}
