/*
Package migrate runs whole-file rewrite transactions against a pattern set.

	+-----------+     +-------------+     +------------+
	| Migrator  +---->+ Transaction +---->+  Outcome   |
	| (per run) |     | (per file)  |     | (per file) |
	+-----------+     +------+------+     +------------+
	                         |
	         read -> coordinate -> gate -> commit

🎯 Purpose:
- Reads each file once and rewrites it through the pass coordinator
- Gates every rewrite on unchanged delimiter balance
- Commits changed files atomically, with optional .bak backups
- Fans a file list out over a bounded worker pool
- Expands ** globs into the concrete file list

🔄 Flow:
1. Read the whole file through the FileManager
2. Run the coordinator (single-pass or fixpoint) on its snapshot
3. Reject the result if net (), {} or [] balance shifted
4. Back up, then write the new text atomically
5. Track one Outcome per file, never aborting the batch

⚡ Key Responsibilities:
- Per-file transaction isolation (a failed file touches nothing)
- Per-path serialization when the same file appears twice
- Dry-run checks that report without committing
- Outcome accounting for console and report layers

🤝 Interfaces:
- Migrator: Migrate, Check, and Batch entry points
- status.FileManager: All disk access
- status.StatusReporter: Outcome and progress tracking

📝 Design Philosophy:
A transaction either commits a fully rewritten file or leaves the original
byte-for-byte intact. Rejections and failures are data, not control flow:
they land in the Outcome so a batch always yields one verdict per input
file, and the caller decides what a dirty run means.

🔍 Example:

	m, err := migrate.New(migrate.Options{
		Set:      set,
		Files:    mgr,
		Reporter: mgr,
		Mode:     rewrite.ModeFixpoint,
	})
	if err != nil {
		return err
	}
	outcomes, err := m.Batch(ctx, files, 4)
*/
package migrate
