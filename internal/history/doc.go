// Package history persists a ledger of pipeline runs in SQLite.
//
// Each invocation of the pipeline records a pending row before any work
// starts and finishes it with the outcome: counts from the merge, the paths
// of the written artifacts, or the error that aborted the run. The schema is
// built from embedded numbered SQL files and its version is stamped into the
// database header, so a database from a newer build is refused.
package history
