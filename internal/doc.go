// Package internal contains the core implementation packages for resrepo.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - pathpattern: Repository path canonicalization and glob matching
//   - resource: Nodes, locations and the path-keyed tree
//   - locator: Physical source lookup over an afero filesystem
//   - repository: Mounts, links, tags, history and read-only mode
//   - changestream: Versioned snapshots of every recorded path
//   - dump: The YAML dump file and restoring a repository from it
//   - services: The repository as used by the CLI, plus watcher events
//   - watcher: File system monitoring with debouncing
//   - config: Configuration loading and validation
//   - logging: Structured logging over log/slog
//   - errors: The shared error type, kinds and suggestions
//   - version: Build information
//   - testutils: Fixtures for tests
//
// # Data Flow
//
//   - config describes mounts, links and tag rules
//   - services builds a repository from them, or restores one from a dump
//   - repository grafts locator entries into the resource tree and records
//     each change in the change stream
//   - watcher reports physical changes that services applies back to the
//     repository
//
// # Testing Strategy
//
// Each package is tested against an in-memory afero filesystem where it can
// be, with testify. Property tests use gopter and run with the property build
// tag.
package internal
