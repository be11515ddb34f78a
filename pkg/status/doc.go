/*
Package status manages file storage and outcome tracking for rewriterc.

	            +-------------+
	            |   Status    |
	            |  (Storage)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+-----+
	|   Files   |           | Outcomes |
	| (Storage) |           | (Audit)  |
	+-----------+           +----------+

🎯 Purpose:
- Manages file system operations for migration transactions
- Writes rewritten files atomically (temp file + rename)
- Keeps pre-rewrite backups and restores them on demand
- Tracks per-file outcomes (rewritten, unchanged, rejected, failed)
- Reports run progress

🔄 Flow:
1. Receives rewritten content from the migrator
2. Backs up the original when asked to
3. Writes the new content atomically
4. Records the file's outcome with substitution counts
5. Hands the sorted outcome list to report generation

⚡ Key Responsibilities:
- File system operations
- Outcome tracking
- Progress reporting
- Error handling for I/O

🤝 Interfaces:
- FileManager: Handles file operations
- StatusReporter: Tracks outcomes and progress
- FileFormatter: Formats status messages

📝 Design Philosophy:
A migration is only as trustworthy as its writes. Every content write goes
through the temp+rename path so a crash mid-write can never leave a half
rewritten source file. Outcome tracking is separate from the write path:
files the run rejected or never touched are tracked too, because the
report needs the full picture, not just the happy path.

Console presentation does not live here. Formatting beyond the log line is
pkg/log's job; this package only knows how to describe one outcome in one
plain message.

🔍 Example:

	logger := zerolog.Ctx(ctx)
	mgr := status.New(".", logger)

	// File operations
	content, err := mgr.ReadFile(ctx, "src/commands.rs")
	err = mgr.WriteFileAtomic(ctx, "src/commands.rs", rewritten)

	// Outcome tracking
	mgr.TrackFile(ctx, "src/commands.rs", status.FileInfo{
		Path:          "src/commands.rs",
		Outcome:       status.OutcomeRewritten,
		Substitutions: 3,
	})
*/
package status
