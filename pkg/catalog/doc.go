/*
Package catalog manages pattern catalog parsing and validation for rewriterc.

	            +-------------+
	            |   Catalog   |
	            | (Patterns)  |
	            +------+------+
	                   |
	    +---------+----+----+---------+
	    |         |         |         |
	+---+---+ +---+---+ +---+---+ +---+---+
	| YAML  | |  HCL  | | TOML  | | JSON  |
	| Parser| | Parser| | Parser| | Parser|
	+-------+ +-------+ +-------+ +-------+

🎯 Purpose:
- Loads ordered pattern catalogs from configuration files
- Validates pattern structure before any source file is touched
- Keeps capture declarations and template references consistent
- Supports multiple catalog formats behind one interface

🔄 Flow:
1. Reads the catalog file
2. Picks a parser by extension (.rewriterc tries YAML, then HCL)
3. Decodes into the Pattern/Catalog model
4. Validates names, captures, references, and clause markers
5. Hands the validated catalog to the matcher for compilation

⚡ Key Responsibilities:
- Catalog parsing
- Structural validation (LoadError)
- Capture declaration checking
- Format abstraction

🤝 Interfaces:
- Parser: format-specific decoding
- Catalog: ordered, validated pattern list

📝 Design Philosophy:
Patterns are data, not code. Adding, reordering, or retiring a rewrite rule
is a catalog edit, never a rebuild. Everything that can be rejected before
opening a target file is rejected here: a catalog that loads is a catalog
whose patterns can all be compiled and instantiated.

Validation that needs compiled matchers (a replacement that re-matches an
earlier pattern, two patterns feeding each other) lives in pkg/match, which
is the other half of load-time checking.

🔍 Example:

	cat, err := catalog.Load(ctx, ".rewriterc.yaml")
	if err != nil {
		var lerr *catalog.LoadError
		if errors.As(err, &lerr) {
			// Pattern and field are named for actionable messages
			fmt.Printf("catalog error: %s\n", lerr)
		}
		return err
	}
*/
package catalog
