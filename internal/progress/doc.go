// Package progress reports chunk download progress to a terminal.
//
// A Reporter is created once and reused across jobs: Begin resets the
// counters and starts a fresh bar for one job, workers report chunk
// completion as they go, and Finish closes the bar out. All reporting
// methods are safe for concurrent use by download workers.
package progress
