/*
Package operation runs a migration against one document at a time.

	+-----------+     +----------+     +----------+     +-----------+
	|   Store   | --> |  Backup  | --> | Pipeline | --> | Checklist |
	|  (read)   |     |  Guard   |     |  (rules) |     |           |
	+-----------+     +----------+     +----------+     +-----+-----+
	                                                          |
	                                    +-----------+   +-----+-----+
	                                    | RunReport | <-|   Store   |
	                                    +-----------+   |  (write)  |
	                                                    +-----------+

🔄 States:

	start -> backed_up -> transformed -> verified -> persisted -> completed
	                                                           \-> completed_with_warnings
	start -> missing_source

A missing source is the only fatal state reached before anything is written.
A failing check never stops the write; it only changes the final state.

⚡ Modes:
- Migrate: backup, transform, verify, persist
- Plan: transform and verify, return a diff, write nothing
- Verify: checklist only, many documents at once, read only
*/
package operation
