// Package main hosts the Cadence CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the pipeline stages individually
// (analyze, plan, generate, assemble), the end-to-end run command, run history
// inspection, dependency status, and configuration scaffolding. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
