/*
Package match compiles tolerant text queries into matchers and finds their
occurrences in document snapshots.

	 match query                       source text
	     |                                 |
	+----+-----+                    +------+------+
	| Compile  |                    |  Document   |
	| (lower)  |                    | (snapshot)  |
	+----+-----+                    +------+------+
	     |                                 |
	     +----------> FindAll <------------+
	                     |
	              []Match (spans + captures)

🎯 Purpose:
- Lowers each catalog pattern into a regular expression once, at load
- Finds all non-overlapping occurrences, leftmost first, deterministically
- Binds captured sub-spans byte-for-byte to their snapshot
- Probes whole catalogs for replacements that would re-trigger matching

🔄 Flow:
1. CompileCatalog validates the catalog and compiles each pattern in order
2. Replacement templates are probed against every matcher (idempotency)
3. FindAll scans one snapshot and returns spans with named captures
4. Matches stay bound to that snapshot; a rewrite invalidates them

⚡ Key Responsibilities:
- Query lowering (whitespace folding, terminator runs, optional clause)
- Deterministic match selection
- Capture span bookkeeping
- Load-stage catalog probing

📝 Design Philosophy:
The query language is deliberately small: literal text, whitespace
tolerance, one optional clause, terminator tolerance, and single-line
captures. Every tolerance is something the legacy call sites actually
varied in; anything more general would make it impossible to reason about
what a catalog can and cannot rewrite. Matching never allocates new source
text: a Match is offsets into the snapshot, and captures slice out of it
verbatim.

🔍 Example:

	set, err := match.CompileCatalog(ctx, cat)
	if err != nil {
		return err // LoadError: nothing was read or written
	}
	doc := source.NewDocument(text)
	for _, m := range set.Matchers() {
		for _, hit := range m.FindAll(doc) {
			fmt.Printf("%s at %s\n", hit.PatternName(), hit.Position())
		}
	}
*/
package match
