// Package main hosts the Tubio CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the addon service in the foreground,
// scaffolds and inspects configuration, and maintains the session store.
// It centralizes configuration resolution so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
