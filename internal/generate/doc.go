// Package generate orchestrates best-of-N take rendering for a shot plan and
// records every outcome in a generation manifest.
package generate
