// Package runstore persists pipeline run history in SQLite: one row per run
// with a status lifecycle, stage timestamps, and artifact paths.
package runstore
