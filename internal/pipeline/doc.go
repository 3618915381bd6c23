// Package pipeline runs the full analyze, plan, generate, assemble sequence
// for one audio track, recording stage outcomes in a report and the run store.
package pipeline
