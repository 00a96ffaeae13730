// Package cmd provides the command-line interface for resrepo.
//
// This package implements all CLI commands using the Cobra framework on top
// of the repository service in internal/services.
//
// # Available Commands
//
//   - get: Show one resource with its layers and, optionally, metadata
//   - find: Select resources by glob pattern
//   - ls: List the merged children of a directory
//   - tags: List tags or the members of one tag
//   - tag / untag: Change tag membership
//   - history: Show or restore recorded versions of a path
//   - dump: Rebuild from configuration and write the dump file
//   - watch: Keep the repository and dump in step with the sources
//   - version: Show build information
//
// # Command Examples
//
//	// Rebuild and persist
//	resrepo dump
//
//	// Every stylesheet, as JSON
//	resrepo find '/*.css' -o json
//
//	// Tag without touching the dump
//	resrepo tag '/css/*' stylesheet --no-dump
//
// # Repository Lifecycle
//
// Read commands load the dump file when it exists and build from the
// configured mounts otherwise. Mutating commands write the dump back
// unless --no-dump is given. dump and watch always build from
// configuration.
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (RESREPO_*)
//  3. Configuration file (.resrepo.yml)
//  4. Default values (lowest priority)
//
// # Error Handling
//
// Repository errors are returned unchanged so their kind (not found,
// invalid path, read-only, ...) shows in the message. Logs go to stderr;
// command output goes to stdout so it can be piped.
package cmd
