// Package main hosts the codeanon CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into anonymization
// runs, manifest queries, and configuration scaffolding. It centralizes
// configuration resolution, destination locking, and structured logging setup
// so the pipeline packages can focus on traversal semantics.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
