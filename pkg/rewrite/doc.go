/*
Package rewrite substitutes matched source text and coordinates passes.

	+-----------+     +--------------+     +------------+
	| Document  +---->+  Coordinator +---->+  Document  |
	| (snapshot)|     |  (pass loop) |     | (rewritten)|
	+-----------+     +------+-------+     +------------+
	                         |
	              per pattern, in order
	                         |
	              +----------+----------+
	              | FindAll -> Substitute|
	              +---------------------+

🎯 Purpose:
- Expands replacement templates with captured text
- Splices substitutions into immutable document snapshots
- Drives single-pass and fixpoint runs over a pattern set
- Reports per-pattern substitution counts and skipped patterns

🔄 Flow:
1. Coordinator takes the document's current snapshot
2. Each pattern finds all of its sites against that snapshot
3. Substitutions splice left to right into a fresh snapshot
4. The next pattern sees the text as the previous one left it
5. Fixpoint mode repeats until a pass changes nothing, capped at MaxPasses

⚡ Key Responsibilities:
- Template expansion (TemplateBindingError)
- Non-overlapping splice against a fixed snapshot
- Pass accounting and convergence detection (NonConvergenceError)
- Run state tracking (idle, matching, substituting, converged)

📝 Design Philosophy:
A substitution never rescans the text it just produced. Within one pattern
application every match is located first, against one snapshot, then all
sites are spliced. Growth therefore needs a new pass to show up, and the
pass cap turns a runaway catalog into a reported error instead of a hang.

A template that references a capture its matcher never binds disables that
one pattern. The rest of the catalog is healthy and keeps running; the skip
is recorded on the Result so callers can surface it.

🔍 Example:

	coord, err := rewrite.New(rewrite.Options{Set: set, Mode: rewrite.ModeFixpoint})
	if err != nil {
		return err
	}
	res, err := coord.Run(ctx, doc)
	if err != nil {
		var nc *rewrite.NonConvergenceError
		if errors.As(err, &nc) {
			// nc.Partial holds everything the run did produce
		}
		return err
	}
	fmt.Println(res.Output.Text())
*/
package rewrite
