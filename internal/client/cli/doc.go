// Package cli provides the interactive SKUD admin console.
//
// It wires configuration, the local session database, the REST client and
// the entity stores, then runs a REPL that renders store state and turns
// commands into store intents. The current page is a router location
// (path + query) persisted between runs, so a restart lands on the same
// page with the same event filter.
//
// Key features:
//   - Login / Logout with return to the interrupted page
//   - Users: list, create, edit, remove
//   - Persons: list, create and edit with face photo upload, retry of failed photos
//   - Events: paged log with time, passage and person name filters
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
