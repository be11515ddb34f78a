package catalog_test

import (
	"context"
	"fmt"

	"github.com/walteh/rewriterc/pkg/catalog"
)

func ExampleYAMLParser_Parse() {
	// A catalog is ordered data: two rules that migrate an old call idiom
	data := []byte(`
patterns:
  - name: inject_app_handle
    match: "pub async fn ${fn}(${params}, dir: State<'_, StoreDir>)"
    captures: [fn, params]
    replace: "pub async fn ${fn}(app: AppHandle, ${params})"
  - name: canonicalize_path_lookup
    match: "open_store(dir.as_path())"
    replace: "open_store(&resolve_dir(&app)?)"
`)

	cat, err := (&catalog.YAMLParser{}).Parse(context.Background(), data)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if err := cat.Validate(); err != nil {
		fmt.Printf("Invalid: %v\n", err)
		return
	}

	fmt.Printf("Patterns: %d\n", len(cat.Patterns))
	for _, p := range cat.Patterns {
		fmt.Printf("- %s\n", p.String())
	}

	// Output:
	// Patterns: 2
	// - inject_app_handle (2 captures)
	// - canonicalize_path_lookup (0 captures)
}

func ExampleCatalog_Validate() {
	// Referencing a capture the match never binds is a load-time error
	cat := &catalog.Catalog{
		Patterns: []catalog.Pattern{
			{
				Name:     "rename_handler",
				Match:    "fn ${fn}()",
				Captures: []string{"fn"},
				Replace:  "fn ${handler}()",
			},
		},
	}

	err := cat.Validate()
	fmt.Printf("Validation error: %v\n", err)

	// Output:
	// Validation error: catalog: pattern "rename_handler": replace: references undeclared capture "handler"
}
