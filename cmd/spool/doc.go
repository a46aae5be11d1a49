// Package main hosts the spool CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into encode
// runs, directory watches, specification inspection, history queries, and
// configuration scaffolding. It centralizes configuration resolution and
// logger construction so subcommands can focus on user experience instead
// of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
