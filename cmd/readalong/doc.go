// Package main hosts the readalong CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces transcript ingest, the two alignment
// strategies, audio resegmentation, book export, library listings, tool and
// directory health checks, and configuration scaffolding. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
